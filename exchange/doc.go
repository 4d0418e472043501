// Package exchange reads and writes the disassembly exchange format
// spec.md §6 describes: a table-of-indices JSON document carrying
// everything component A (graph) needs to rebuild one side's call
// graph and its functions' flow graphs, plus the default-value-elision
// and address-elision rules required for the round-trip properties
// P7/P8 (spec.md §8).
//
// No serialization library in the retrieved example pack matches this
// ad hoc indexed format (no protobuf/flatbuffers schema appears
// anywhere in it), so the on-disk container is plain encoding/json;
// the elision rules themselves are implemented as an explicit
// marshal/unmarshal pass over the wire structs in this package rather
// than delegated to struct tags alone, since two of the three named
// defaults (instruction address, expression kind) need context the
// tag-driven encoder can't see on its own.
package exchange
