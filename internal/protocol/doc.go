// Package protocol owns the Alpha SMP wire contract.
//
// Ownership boundary:
// - opcode table (names and kinds, diagnostics only)
// - length rules that find the end of the next message in a partial buffer
// - field layouts that decode a confirmed message into a Record
// - the dispatch Table pairing both per opcode
//
// Stream framing lives in protocol/frame; bounds-checked reads in protocol/wire.
package protocol
