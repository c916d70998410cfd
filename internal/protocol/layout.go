package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/mcwire/internal/protocol/wire"
)

// Step is one named field of a Layout.
type Step struct {
	Name  string
	codec codec
}

// Layout is the ordered field list of one opcode. Fields are read back to back
// starting right after the opcode byte, so a variable-width field shifts every
// offset after it.
type Layout []Step

type codec interface {
	fieldType() FieldType
	read(d *decodeContext) (Value, error)
	write(e *encodeContext, v Value) error
}

// decodeContext carries the cursor and the record being built through one
// decode call; counts and sizes are looked up in fields decoded earlier.
type decodeContext struct {
	buf *wire.Buffer
	off int
	rec *Record
}

type encodeContext struct {
	out []byte
	rec Record
}

func layout(parts ...[]Step) Layout {
	var out Layout
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func ScalarField(name string, t FieldType) Step {
	return Step{Name: name, codec: scalarCodec{t: t}}
}

// StringField is a 2-byte length prefix followed by that many raw bytes.
func StringField(name string) Step {
	return Step{Name: name, codec: stringCodec{}}
}

// EnumField is a signed byte resolved against names by index.
func EnumField(name string, names []string) Step {
	return Step{Name: name, codec: enumCodec{names: names}}
}

// BlobField is raw bytes whose size is the value of the earlier field sizeFrom.
func BlobField(name, sizeFrom string) Step {
	return Step{Name: name, codec: blobCodec{sizeFrom: sizeFrom}}
}

// ListField is count scalars of type elem, count taken from the earlier field sizeFrom.
func ListField(name, sizeFrom string, elem FieldType) Step {
	return Step{Name: name, codec: listCodec{sizeFrom: sizeFrom, elem: scalarCodec{t: elem}}}
}

// SlotsField is the inventory slot array; count taken from the earlier field sizeFrom.
func SlotsField(name, sizeFrom string) Step {
	return Step{Name: name, codec: slotsCodec{sizeFrom: sizeFrom}}
}

func i8(name string) Step  { return ScalarField(name, FieldInt8) }
func i16(name string) Step { return ScalarField(name, FieldInt16) }
func i32(name string) Step { return ScalarField(name, FieldInt32) }
func i64(name string) Step { return ScalarField(name, FieldInt64) }
func u16(name string) Step { return ScalarField(name, FieldUint16) }
func u32(name string) Step { return ScalarField(name, FieldUint32) }
func f32(name string) Step { return ScalarField(name, FieldFloat32) }
func f64(name string) Step { return ScalarField(name, FieldFloat64) }
func flag(name string) Step {
	return ScalarField(name, FieldBool)
}

// FaceNames labels the block face byte of dig and place messages.
var FaceNames = []string{"-Y", "+Y", "-Z", "+Z", "-X", "+X"}

// Reusable sub-layouts.

func xyzsDoubles() []Step {
	return []Step{f64("x"), f64("y"), f64("stance"), f64("z")}
}

func intXYZ() []Step {
	return []Step{i32("x"), i32("y"), i32("z")}
}

func blockPos() []Step {
	return []Step{i32("x"), i8("y"), i32("z")}
}

func byteDeltas() []Step {
	return []Step{i8("dx"), i8("dy"), i8("dz")}
}

func lookBytes() []Step {
	return []Step{i8("rotation"), i8("pitch")}
}

func lookFloats() []Step {
	return []Step{f32("rotation"), f32("pitch")}
}

func fields(steps ...Step) []Step { return steps }

func (d *decodeContext) size(name string) (int, error) {
	v, ok := d.rec.Get(name)
	if !ok {
		return 0, MissingFieldError{Name: name}
	}
	return sizeOf(v)
}

func (e *encodeContext) size(name string) (int, error) {
	v, ok := e.rec.Get(name)
	if !ok {
		return 0, MissingFieldError{Name: name}
	}
	return sizeOf(v)
}

func sizeOf(v Value) (int, error) {
	switch {
	case v.Type.unsigned():
		if v.Uint > math.MaxInt32 {
			return 0, ErrLengthOverflow
		}
		return int(v.Uint), nil
	case v.Type.signed():
		if v.Int < 0 || v.Int > math.MaxInt32 {
			return 0, fmt.Errorf("%w: size %d", ErrInvalidValue, v.Int)
		}
		return int(v.Int), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a size", ErrFieldTypeMismatch, v.Type)
	}
}

type scalarCodec struct {
	t FieldType
}

func (c scalarCodec) fieldType() FieldType { return c.t }

func (c scalarCodec) read(d *decodeContext) (Value, error) {
	v, err := readScalar(d.buf, d.off, c.t)
	if err != nil {
		return Value{}, err
	}
	d.off += c.t.width()
	return v, nil
}

func readScalar(buf *wire.Buffer, off int, t FieldType) (Value, error) {
	switch t {
	case FieldInt8:
		n, err := buf.Int8(off)
		return Int8Value(n), err
	case FieldInt16:
		n, err := buf.Int16(off)
		return Int16Value(n), err
	case FieldInt32:
		n, err := buf.Int32(off)
		return Int32Value(n), err
	case FieldInt64:
		n, err := buf.Int64(off)
		return Int64Value(n), err
	case FieldUint8:
		n, err := buf.Uint8(off)
		return Uint8Value(n), err
	case FieldUint16:
		n, err := buf.Uint16(off)
		return Uint16Value(n), err
	case FieldUint32:
		n, err := buf.Uint32(off)
		return Uint32Value(n), err
	case FieldUint64:
		n, err := buf.Uint64(off)
		return Uint64Value(n), err
	case FieldFloat32:
		f, err := buf.Float32(off)
		return Float32Value(f), err
	case FieldFloat64:
		f, err := buf.Float64(off)
		return Float64Value(f), err
	case FieldBool:
		b, err := buf.Uint8(off)
		return BoolValue(b != 0), err
	default:
		return Value{}, fmt.Errorf("%w: %s is not a scalar", ErrFieldTypeMismatch, t)
	}
}

func (c scalarCodec) write(e *encodeContext, v Value) error {
	out, err := appendScalar(e.out, c.t, v)
	if err != nil {
		return err
	}
	e.out = out
	return nil
}

func appendScalar(out []byte, t FieldType, v Value) ([]byte, error) {
	bits := t.width() * 8
	switch {
	case t.signed():
		if bits < 64 && (v.Int < -(1<<(bits-1)) || v.Int >= 1<<(bits-1)) {
			return nil, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, v.Int, t)
		}
		return appendUint(out, uint64(v.Int), t.width()), nil
	case t.unsigned():
		if bits < 64 && v.Uint >= 1<<bits {
			return nil, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, v.Uint, t)
		}
		return appendUint(out, v.Uint, t.width()), nil
	}
	switch t {
	case FieldFloat32:
		return binary.BigEndian.AppendUint32(out, math.Float32bits(float32(v.Float))), nil
	case FieldFloat64:
		return binary.BigEndian.AppendUint64(out, math.Float64bits(v.Float)), nil
	case FieldBool:
		if v.Bool {
			return append(out, 1), nil
		}
		return append(out, 0), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a scalar", ErrFieldTypeMismatch, t)
	}
}

func appendUint(out []byte, n uint64, width int) []byte {
	switch width {
	case 1:
		return append(out, byte(n))
	case 2:
		return binary.BigEndian.AppendUint16(out, uint16(n))
	case 4:
		return binary.BigEndian.AppendUint32(out, uint32(n))
	default:
		return binary.BigEndian.AppendUint64(out, n)
	}
}

type stringCodec struct{}

func (stringCodec) fieldType() FieldType { return FieldString }

func (stringCodec) read(d *decodeContext) (Value, error) {
	n, err := d.buf.Uint16(d.off)
	if err != nil {
		return Value{}, err
	}
	s, err := d.buf.String(d.off+2, int(n))
	if err != nil {
		return Value{}, err
	}
	d.off += 2 + int(n)
	return StringValue(s), nil
}

func (stringCodec) write(e *encodeContext, v Value) error {
	if len(v.String) > math.MaxUint16 {
		return fmt.Errorf("%w: string of %d bytes", ErrInvalidValue, len(v.String))
	}
	e.out = binary.BigEndian.AppendUint16(e.out, uint16(len(v.String)))
	e.out = append(e.out, v.String...)
	return nil
}

type enumCodec struct {
	names []string
}

func (enumCodec) fieldType() FieldType { return FieldEnum }

func (c enumCodec) read(d *decodeContext) (Value, error) {
	raw, err := d.buf.Int8(d.off)
	if err != nil {
		return Value{}, err
	}
	d.off++
	return EnumValue(raw, c.name(raw)), nil
}

func (c enumCodec) name(raw int8) string {
	if raw >= 0 && int(raw) < len(c.names) {
		return c.names[raw]
	}
	return fmt.Sprintf("Unknown(%d)", raw)
}

func (enumCodec) write(e *encodeContext, v Value) error {
	if v.Int < math.MinInt8 || v.Int > math.MaxInt8 {
		return fmt.Errorf("%w: enum %d", ErrInvalidValue, v.Int)
	}
	e.out = append(e.out, byte(int8(v.Int)))
	return nil
}

type blobCodec struct {
	sizeFrom string
}

func (blobCodec) fieldType() FieldType { return FieldBytes }

func (c blobCodec) read(d *decodeContext) (Value, error) {
	n, err := d.size(c.sizeFrom)
	if err != nil {
		return Value{}, err
	}
	raw, err := d.buf.Bytes(d.off, n)
	if err != nil {
		return Value{}, err
	}
	d.off += n
	return Value{Type: FieldBytes, Bytes: raw}, nil
}

func (c blobCodec) write(e *encodeContext, v Value) error {
	n, err := e.size(c.sizeFrom)
	if err != nil {
		return err
	}
	if n != len(v.Bytes) {
		return fmt.Errorf("%w: %s=%d but blob holds %d bytes", ErrInvalidValue, c.sizeFrom, n, len(v.Bytes))
	}
	e.out = append(e.out, v.Bytes...)
	return nil
}

type listCodec struct {
	sizeFrom string
	elem     scalarCodec
}

func (listCodec) fieldType() FieldType { return FieldList }

func (c listCodec) read(d *decodeContext) (Value, error) {
	n, err := d.size(c.sizeFrom)
	if err != nil {
		return Value{}, err
	}
	var items []Value
	for i := 0; i < n; i++ {
		v, err := c.elem.read(d)
		if err != nil {
			return Value{}, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, v)
	}
	return ListValue(items...), nil
}

func (c listCodec) write(e *encodeContext, v Value) error {
	n, err := e.size(c.sizeFrom)
	if err != nil {
		return err
	}
	if n != len(v.Items) {
		return fmt.Errorf("%w: %s=%d but list holds %d items", ErrInvalidValue, c.sizeFrom, n, len(v.Items))
	}
	for i, item := range v.Items {
		if item.Type != c.elem.t {
			return fmt.Errorf("%w: item %d is %s, want %s", ErrFieldTypeMismatch, i, item.Type, c.elem.t)
		}
		if err := c.elem.write(e, item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// slotsCodec decodes inventory slots. An item id of -1 is an empty slot and
// carries no count or uses bytes.
type slotsCodec struct {
	sizeFrom string
}

func (slotsCodec) fieldType() FieldType { return FieldList }

func (c slotsCodec) read(d *decodeContext) (Value, error) {
	n, err := d.size(c.sizeFrom)
	if err != nil {
		return Value{}, err
	}
	var slots []Value
	for i := 0; i < n; i++ {
		id, err := d.buf.Int16(d.off)
		if err != nil {
			return Value{}, fmt.Errorf("slot %d: %w", i, err)
		}
		d.off += 2
		slot := Record{}
		slot.Add("itemId", Int16Value(id))
		if uint16(id) != emptySlot {
			count, err := d.buf.Int8(d.off)
			if err != nil {
				return Value{}, fmt.Errorf("slot %d: %w", i, err)
			}
			uses, err := d.buf.Int16(d.off + 1)
			if err != nil {
				return Value{}, fmt.Errorf("slot %d: %w", i, err)
			}
			d.off += 3
			slot.Add("count", Int8Value(count))
			slot.Add("uses", Int16Value(uses))
		}
		slots = append(slots, GroupValue(slot))
	}
	return ListValue(slots...), nil
}

func (c slotsCodec) write(e *encodeContext, v Value) error {
	n, err := e.size(c.sizeFrom)
	if err != nil {
		return err
	}
	if n != len(v.Items) {
		return fmt.Errorf("%w: %s=%d but %d slots given", ErrInvalidValue, c.sizeFrom, n, len(v.Items))
	}
	for i, item := range v.Items {
		if item.Type != FieldGroup {
			return fmt.Errorf("%w: slot %d is %s", ErrFieldTypeMismatch, i, item.Type)
		}
		id, ok := item.Group.Get("itemId")
		if !ok {
			return MissingFieldError{Name: fmt.Sprintf("slots[%d].itemId", i)}
		}
		out, err := appendScalar(e.out, FieldInt16, id)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if id.Int != -1 {
			count, okCount := item.Group.Get("count")
			uses, okUses := item.Group.Get("uses")
			if !okCount || !okUses {
				return MissingFieldError{Name: fmt.Sprintf("slots[%d].count/uses", i)}
			}
			if out, err = appendScalar(out, FieldInt8, count); err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
			if out, err = appendScalar(out, FieldInt16, uses); err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
		}
		e.out = out
	}
	return nil
}
