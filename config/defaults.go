package config

// DefaultFunctionSteps is the canonical ordering of the fourteen
// built-in function-level strategies from spec.md §4.5, in the exact
// order the registry's names are documented there (the driver runs
// whatever order a PipelineConfig gives it — see spec.md §5's "steps
// run in the exact order the configuration enumerates them" — so this
// slice exists purely as the "sane default" a CLI or embedder starts
// from, not as a property the driver itself enforces).
func DefaultFunctionSteps() []string {
	return []string{
		"edges_flow_mdindex",
		"edges_callgraph_mdindex",
		"edges_proximity_mdindex",
		"callgraph_mdindex",
		"flowgraph_mdindex",
		"callgraph_mdindex_relaxed",
		"name_hash",
		"loop_count",
		"call_sequence",
		"prime_signature",
		"byte_hash",
		"string_refs",
		"instruction_count",
		"address_sequence",
	}
}

// DefaultBasicBlockSteps is the canonical ordering of the built-in
// basic-block-level strategies from spec.md §4.6.
func DefaultBasicBlockSteps() []string {
	return []string{
		"edges_mdindex",
		"edges_prime_product",
		"edges_dominated",
		"bb_mdindex",
		"bb_byte_hash",
		"bb_prime",
		"call_refs",
		"bb_string_refs",
		"bb_mdindex_relaxed",
		"loop_entry_nodes",
		"self_loop_nodes",
		"entry_exit_nodes",
		"bb_instruction_count",
		"jump_sequence",
	}
}

// NewDefault builds a PipelineConfig running every built-in strategy in
// its canonical order with no per-step confidence overrides (every
// step's confidence is unconfigured, which confidence recomputation
// counts as 0).
func NewDefault(opts ...Option) (*PipelineConfig, error) {
	all := append([]Option{
		WithFunctionSteps(DefaultFunctionSteps()...),
		WithBasicBlockSteps(DefaultBasicBlockSteps()...),
	}, opts...)

	return New(all...)
}
