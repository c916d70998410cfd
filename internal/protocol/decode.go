package protocol

import (
	"fmt"

	"github.com/danmuck/mcwire/internal/protocol/wire"
)

// Decode extracts the fields of a confirmed-complete message. msg must hold
// exactly one message, opcode byte at offset 0.
func (t *Table) Decode(msg *wire.Buffer) (Record, error) {
	raw, err := msg.Uint8(0)
	if err != nil {
		return Record{}, err
	}
	op := Opcode(raw)
	entry, ok := t.Lookup(op)
	if !ok {
		return Record{}, ErrUnknownOpcode
	}
	if entry.Layout == nil {
		return Record{}, nil
	}
	rec, err := decodeLayout(entry.Layout, msg)
	if err != nil {
		return Record{}, fmt.Errorf("protocol: decode %s: %w", op.Hex(), err)
	}
	return rec, nil
}

// decodeLayout walks l over a buffer that holds exactly one message.
func decodeLayout(l Layout, msg *wire.Buffer) (Record, error) {
	rec := Record{}
	d := &decodeContext{buf: msg, off: 1, rec: &rec}
	for _, step := range l {
		v, err := step.codec.read(d)
		if err != nil {
			return Record{}, fmt.Errorf("field %q at offset %d: %w", step.Name, d.off, err)
		}
		rec.Add(step.Name, v)
	}
	if d.off != msg.Available() {
		return Record{}, fmt.Errorf("%w: decoded %d of %d bytes", ErrLayoutMismatch, d.off, msg.Available())
	}
	return rec, nil
}

