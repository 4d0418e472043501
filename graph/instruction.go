package graph

// InstrFlag is a bitmask of per-instruction flags.
type InstrFlag uint8

const (
	// FlagInvalid marks an instruction the disassembler could not decode.
	FlagInvalid InstrFlag = 1 << iota
	// FlagFlow marks an instruction that falls through to the next one
	// (used by basic-block boundary detection and by the exchange
	// format's address-elision rule).
	FlagFlow
)

// Has reports whether f is set in flags.
func (flags InstrFlag) Has(f InstrFlag) bool { return flags&f != 0 }

// Instruction is immutable after construction. Two instructions with the
// same Address are the same instruction; a function's instruction byte
// ranges are allowed to overlap a different instruction only when that
// overlap is explicit (the loader is responsible for that invariant —
// this type just stores what it is given).
type Instruction struct {
	// Address is this instruction's address within the owning function's
	// program.
	Address uint64

	// Bytes holds the raw encoded instruction.
	Bytes []byte

	// Mnemonic is an arena-interned mnemonic index (see Arena.InternMnemonic).
	Mnemonic int

	// Operands are arena-interned operand references, in operand order.
	Operands []OperandID

	// Flags is the FlagInvalid/FlagFlow bitmask.
	Flags InstrFlag

	// CallTargets holds the addresses of functions this instruction
	// calls, if any (empty for non-call instructions).
	CallTargets []uint64
}

// Size returns the instruction's length in bytes.
func (in Instruction) Size() uint64 { return uint64(len(in.Bytes)) }

// ExprKind enumerates the expression node variants of spec.md §3.
type ExprKind uint8

const (
	ExprSymbol ExprKind = iota
	ExprImmediateInt
	ExprImmediateFloat
	ExprOperator
	ExprRegister
	ExprSizePrefix
	ExprDereference
)

// Expression is one node in the typed expression forest of an operand.
// Expressions are interned by (kind, position, immediate, symbol, parent)
// in an Arena, so structurally identical expressions across many
// instructions share one ExprID.
type Expression struct {
	ID       ExprID
	Kind     ExprKind
	Position int     // this node's position among its parent's children
	ImmInt   int64   // valid when Kind == ExprImmediateInt
	ImmFloat float64 // valid when Kind == ExprImmediateFloat
	Symbol   string  // valid when Kind == ExprSymbol or ExprRegister
	Parent   ExprID  // 0 means "no parent" (this node is a root)
	IsReloc  bool    // true if this expression is subject to relocation
}

// Operand is an ordered list of expression references. Within an
// operand, a child expression's Position precedes or equals its
// parent's when parents are shared (spec.md §3 Expression/Operand
// invariant); the arena does not itself enforce this — callers that
// build operands from a well-formed disassembly will satisfy it
// automatically because children are always emitted before the parent
// that references them.
type Operand struct {
	Exprs []ExprID
}
