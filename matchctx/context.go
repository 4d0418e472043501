package matchctx

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/flowmatch/bindiff/bindifflog"
	"github.com/flowmatch/bindiff/config"
	"github.com/flowmatch/bindiff/feature"
	"github.com/flowmatch/bindiff/fixedpoint"
	"github.com/flowmatch/bindiff/graph"
)

// Context is the single mutable value a matching run operates over.
// The graph model it references is read-only from the context's point
// of view; the context itself is not safe for concurrent mutation from
// more than one matcher at a time, matching spec.md §5's
// single-threaded-driver contract (the one exception, per-function
// parallel BB matching, writes to disjoint feature-cache slots and
// disjoint fixed-point subtrees; the one shared write, creating a flow
// cache on first use, is guarded by flowCacheMu).
type Context struct {
	Primary   *graph.CallGraph
	Secondary *graph.CallGraph

	Store  *fixedpoint.Store
	Config *config.PipelineConfig

	RunID  uuid.UUID
	Logger *slog.Logger

	cancel <-chan struct{}

	// flowCacheMu guards primaryFlowCache/secondaryFlowCache: driver.RunParallelBB
	// fans basic-block matching out across one goroutine per function fixed
	// point, and every matcher it invokes calls FlowCache for its own function's
	// entry. The per-entry *feature.Cache values are only ever touched by the
	// single goroutine owning that entry, but the lazy-create-on-first-use write
	// into the shared map is not — Go map writes race even at disjoint keys.
	flowCacheMu        sync.Mutex
	primaryFlowCache   map[uint64]*feature.Cache
	secondaryFlowCache map[uint64]*feature.Cache
	primaryCallCache   *feature.Cache
	secondaryCallCache *feature.Cache
}

// Option customizes a Context at construction.
type Option func(*Context)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.Logger = l }
}

// WithCancel attaches a cooperative cancellation channel; closing it
// causes ShouldCancel to report true from then on.
func WithCancel(cancel <-chan struct{}) Option {
	return func(c *Context) { c.cancel = cancel }
}

// WithConfidenceConfig attaches the pipeline configuration steps
// consult for per-step confidence values and step ordering.
func WithConfidenceConfig(cfg *config.PipelineConfig) Option {
	return func(c *Context) { c.Config = cfg }
}

// New builds a Context over primary and secondary, applying opts in
// order, mirroring lowgraph.NewGraph's functional-options constructor.
func New(primary, secondary *graph.CallGraph, opts ...Option) *Context {
	runID := uuid.New()
	c := &Context{
		Primary:            primary,
		Secondary:          secondary,
		Store:              fixedpoint.NewStore(),
		RunID:              runID,
		Logger:             slog.Default(),
		primaryFlowCache:   make(map[uint64]*feature.Cache),
		secondaryFlowCache: make(map[uint64]*feature.Cache),
		primaryCallCache:   feature.NewCache(),
		secondaryCallCache: feature.NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Applied after opts so a caller-supplied WithLogger still gets the
	// run's correlation id attached, the same as the untouched default.
	c.Logger = bindifflog.WithRun(c.Logger, runID)

	return c
}

// ShouldCancel reports whether the run's cancellation channel has
// fired. Matchers consult this at step boundaries, never mid-step.
func (c *Context) ShouldCancel() bool {
	if c.cancel == nil {
		return false
	}
	select {
	case <-c.cancel:
		return true
	default:
		return false
	}
}

// FlowCache returns the feature cache for the primary or secondary
// function at entry, creating it on first use. side selects which
// call graph's function the cache belongs to.
func (c *Context) FlowCache(side Side, entry uint64) *feature.Cache {
	m := c.primaryFlowCache
	if side == Secondary {
		m = c.secondaryFlowCache
	}

	c.flowCacheMu.Lock()
	defer c.flowCacheMu.Unlock()

	if cache, ok := m[entry]; ok {
		return cache
	}
	cache := feature.NewCache()
	m[entry] = cache

	return cache
}

// CallCache returns the feature cache for the primary or secondary
// call graph as a whole.
func (c *Context) CallCache(side Side) *feature.Cache {
	if side == Secondary {
		return c.secondaryCallCache
	}

	return c.primaryCallCache
}

// Side selects the primary or secondary input of a matching run.
type Side uint8

const (
	Primary Side = iota
	Secondary
)
