package config

import (
	"errors"
	"fmt"
)

// ErrConfig is returned by New when the resulting pipeline has no
// function-level and no basic-block-level steps configured.
var ErrConfig = errors.New("config: no matching steps configured")

// Option customizes a PipelineConfig before validation. Later options
// override earlier ones when they touch the same field.
type Option func(*PipelineConfig)

// PipelineConfig is the ordered pipeline descriptor the driver consumes:
// which function-level and basic-block-level steps to run, in what
// order, and at what per-step confidence. Unknown step names supplied
// via WithFunctionSteps/WithBasicBlockSteps are kept verbatim here —
// the driver's registry lookup is what rejects (by skipping) a name it
// doesn't recognize, per spec.md §6 ("Unknown step names are ignored").
type PipelineConfig struct {
	functionSteps   []string
	basicBlockSteps []string
	confidence      map[string]float64
	parallelBB      bool
}

// New applies opts in order to a zero-value PipelineConfig, then
// validates it. Returns ErrConfig if both step lists end up empty.
func New(opts ...Option) (*PipelineConfig, error) {
	cfg := &PipelineConfig{confidence: make(map[string]float64)}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.functionSteps) == 0 && len(cfg.basicBlockSteps) == 0 {
		return nil, fmt.Errorf("config: New: %w", ErrConfig)
	}

	return cfg, nil
}

// WithFunctionSteps sets the ordered list of function-level matcher
// step names. Repeated calls replace the prior list.
func WithFunctionSteps(names ...string) Option {
	return func(c *PipelineConfig) { c.functionSteps = append([]string(nil), names...) }
}

// WithBasicBlockSteps sets the ordered list of basic-block-level
// matcher step names. Repeated calls replace the prior list.
func WithBasicBlockSteps(names ...string) Option {
	return func(c *PipelineConfig) { c.basicBlockSteps = append([]string(nil), names...) }
}

// WithStepConfidence sets the confidence of a named step. A value <= 0
// means "not configured" (spec.md §6): StepConfidence then reports
// (0, false) for that name.
func WithStepConfidence(name string, confidence float64) Option {
	return func(c *PipelineConfig) {
		if confidence > 0 {
			c.confidence[name] = confidence
		} else {
			delete(c.confidence, name)
		}
	}
}

// WithParallelBB enables the driver's opt-in per-function-fixed-point
// parallel basic-block matching path (driver.RunParallelBB). The
// sequential path remains the default and is what every testable
// property is specified against.
func WithParallelBB() Option {
	return func(c *PipelineConfig) { c.parallelBB = true }
}

// FunctionSteps returns the configured function-level step names, in
// order.
func (c *PipelineConfig) FunctionSteps() []string { return append([]string(nil), c.functionSteps...) }

// BasicBlockSteps returns the configured basic-block-level step names,
// in order.
func (c *PipelineConfig) BasicBlockSteps() []string {
	return append([]string(nil), c.basicBlockSteps...)
}

// StepConfidence returns the configured confidence for name, and false
// if it was never configured (i.e., was <= 0 or never set).
func (c *PipelineConfig) StepConfidence(name string) (float64, bool) {
	v, ok := c.confidence[name]

	return v, ok
}

// ParallelBB reports whether the parallel BB-matching path was
// requested.
func (c *PipelineConfig) ParallelBB() bool { return c.parallelBB }
