package protocol

import (
	"errors"
	"fmt"
)

// Encode synthesizes the wire bytes of op from rec.
func (t *Table) Encode(op Opcode, rec Record) ([]byte, error) {
	entry, ok := t.Lookup(op)
	if !ok {
		return nil, ErrUnknownOpcode
	}
	if entry.Layout == nil {
		return nil, ErrNoLayout
	}
	out, err := encodeLayout(entry.Layout, op, rec)
	if err != nil {
		var missing MissingFieldError
		if errors.As(err, &missing) && missing.Opcode != op {
			missing.Opcode = op
			return nil, missing
		}
		return nil, fmt.Errorf("protocol: encode %s: %w", op.Hex(), err)
	}
	return out, nil
}

func encodeLayout(l Layout, op Opcode, rec Record) ([]byte, error) {
	e := &encodeContext{out: []byte{byte(op)}, rec: rec}
	for _, step := range l {
		v, ok := rec.Get(step.Name)
		if !ok {
			return nil, MissingFieldError{Opcode: op, Name: step.Name}
		}
		if v.Type != step.codec.fieldType() {
			return nil, fmt.Errorf("%w: field %q is %s, layout wants %s", ErrFieldTypeMismatch, step.Name, v.Type, step.codec.fieldType())
		}
		if err := step.codec.write(e, v); err != nil {
			return nil, fmt.Errorf("field %q: %w", step.Name, err)
		}
	}
	return e.out, nil
}

