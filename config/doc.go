// Package config builds the pipeline descriptor the driver consumes:
// an ordered list of function-level step names, an ordered list of
// basic-block-level step names, and a per-step confidence table.
// Construction follows the teacher's functional-options-plus-validate
// shape (builder.BuilderOption, matrix.Option): options are applied in
// order, then New validates the result and returns ErrConfig for an
// empty pipeline.
package config
