// Package capture feeds recorded or live byte streams through the framer.
//
// A Stream owns the bytes of one direction that the framer has not consumed
// yet and redelivers them with each new read. A Session pairs the two
// directions of one connection. They share no framing state and are pumped
// concurrently.
package capture
