package graph

// StringRefs returns the distinct relocatable symbol strings referenced
// by bb's instructions, resolved through arena. An operand expression
// counts as a string reference when it is a symbol node flagged
// IsReloc — the same signal the loader uses to mark an operand as
// pointing at relocated (as opposed to purely numeric) data. A nil
// arena yields no references rather than panicking, since not every
// caller loads one (spec.md §4.5/§4.6 "String references").
func StringRefs(arena *Arena, fn *Function, bb *BasicBlock) []string {
	if arena == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, in := range bb.Instructions(fn) {
		for _, opID := range in.Operands {
			op, ok := arena.Operand(opID)
			if !ok {
				continue
			}
			for _, exprID := range op.Exprs {
				expr, ok := arena.Expr(exprID)
				if !ok || expr.Kind != ExprSymbol || !expr.IsReloc {
					continue
				}
				if expr.Symbol == "" || seen[expr.Symbol] {
					continue
				}
				seen[expr.Symbol] = true
				out = append(out, expr.Symbol)
			}
		}
	}

	return out
}

// FunctionStringRefs returns the distinct relocatable symbol strings
// referenced anywhere in fn, across every basic block of fg.
func FunctionStringRefs(arena *Arena, fg *FlowGraph) []string {
	seen := make(map[string]bool)
	var out []string
	for _, bb := range fg.Blocks() {
		for _, s := range StringRefs(arena, fg.Function(), bb) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}

	return out
}
