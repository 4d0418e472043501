package graph

import "strings"

// FunctionType classifies a function vertex in the call graph.
type FunctionType uint8

const (
	FuncStandard FunctionType = iota
	FuncLibrary
	FuncImported
	FuncThunk
	FuncInvalid
	FuncNone
)

// Function owns its basic blocks (via Flow) and flags that feed matcher
// eligibility (spec.md §3 Function, supplemented from original_source/'s
// FunctionType-gated matcher behavior — see SPEC_FULL.md §11).
type Function struct {
	Entry        uint64
	Name         string // mangled name
	Demangled    string // optional demangled name, "" if unavailable
	Module       string // interned module name
	LibraryIndex int    // -1 if not from a known library
	Type         FunctionType

	Instructions []Instruction // sorted by address, owned by this function
	Flow         *FlowGraph
}

// DisplayName returns the demangled name if present, else the mangled
// name.
func (fn *Function) DisplayName() string {
	if fn.Demangled != "" {
		return fn.Demangled
	}

	return fn.Name
}

// HasRealName reports whether fn carries a name a disassembler did not
// auto-generate. Auto-generated names follow a "sub_<hex>" or raw
// "0x<hex>" convention (original_source/basic_block.h); the name-hash
// matcher (funcmatch) only considers functions for which this is true.
func (fn *Function) HasRealName() bool {
	name := fn.DisplayName()
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "sub_") {
		return false
	}
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		return false
	}

	return true
}

// InstructionByAddress returns the instruction at addr, or false if
// none exists (O(log n) binary search since Instructions is sorted).
func (fn *Function) InstructionByAddress(addr uint64) (Instruction, bool) {
	lo, hi := 0, len(fn.Instructions)
	for lo < hi {
		mid := (lo + hi) / 2
		if fn.Instructions[mid].Address < addr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(fn.Instructions) && fn.Instructions[lo].Address == addr {
		return fn.Instructions[lo], true
	}

	return Instruction{}, false
}
