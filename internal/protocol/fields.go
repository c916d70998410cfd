package protocol

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// FieldType identifies the wire type of a decoded value.
type FieldType uint8

const (
	FieldInt8 FieldType = iota + 1
	FieldInt16
	FieldInt32
	FieldInt64
	FieldUint8
	FieldUint16
	FieldUint32
	FieldUint64
	FieldFloat32
	FieldFloat64
	FieldBool
	FieldString
	FieldBytes
	FieldEnum
	FieldList
	FieldGroup
)

var fieldTypeNames = map[FieldType]string{
	FieldInt8:    "i8",
	FieldInt16:   "i16",
	FieldInt32:   "i32",
	FieldInt64:   "i64",
	FieldUint8:   "u8",
	FieldUint16:  "u16",
	FieldUint32:  "u32",
	FieldUint64:  "u64",
	FieldFloat32: "f32",
	FieldFloat64: "f64",
	FieldBool:    "bool",
	FieldString:  "string",
	FieldBytes:   "bytes",
	FieldEnum:    "enum",
	FieldList:    "list",
	FieldGroup:   "group",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

func (t FieldType) signed() bool {
	return t >= FieldInt8 && t <= FieldInt64
}

func (t FieldType) unsigned() bool {
	return t >= FieldUint8 && t <= FieldUint64
}

// Value is a decoded field value. Only the member matching Type is set;
// enums carry the raw byte in Int and the resolved name in String.
type Value struct {
	Type   FieldType
	Int    int64
	Uint   uint64
	Float  float64
	Bool   bool
	String string
	Bytes  []byte
	Items  []Value
	Group  Record
}

func Int8Value(v int8) Value       { return Value{Type: FieldInt8, Int: int64(v)} }
func Int16Value(v int16) Value     { return Value{Type: FieldInt16, Int: int64(v)} }
func Int32Value(v int32) Value     { return Value{Type: FieldInt32, Int: int64(v)} }
func Int64Value(v int64) Value     { return Value{Type: FieldInt64, Int: v} }
func Uint8Value(v uint8) Value     { return Value{Type: FieldUint8, Uint: uint64(v)} }
func Uint16Value(v uint16) Value   { return Value{Type: FieldUint16, Uint: uint64(v)} }
func Uint32Value(v uint32) Value   { return Value{Type: FieldUint32, Uint: uint64(v)} }
func Uint64Value(v uint64) Value   { return Value{Type: FieldUint64, Uint: v} }
func Float32Value(v float32) Value { return Value{Type: FieldFloat32, Float: float64(v)} }
func Float64Value(v float64) Value { return Value{Type: FieldFloat64, Float: v} }
func BoolValue(v bool) Value       { return Value{Type: FieldBool, Bool: v} }
func StringValue(v string) Value   { return Value{Type: FieldString, String: v} }

func BytesValue(v []byte) Value {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Value{Type: FieldBytes, Bytes: buf}
}

// EnumValue builds an enumeration value; name may be empty for unnamed raws.
func EnumValue(raw int8, name string) Value {
	return Value{Type: FieldEnum, Int: int64(raw), String: name}
}

func ListValue(items ...Value) Value {
	return Value{Type: FieldList, Items: items}
}

func GroupValue(rec Record) Value {
	return Value{Type: FieldGroup, Group: rec}
}

// Format renders v for the labeling channel.
func (v Value) Format() string {
	switch {
	case v.Type.signed():
		return strconv.FormatInt(v.Int, 10)
	case v.Type.unsigned():
		return strconv.FormatUint(v.Uint, 10)
	}
	switch v.Type {
	case FieldFloat32:
		return strconv.FormatFloat(v.Float, 'g', -1, 32)
	case FieldFloat64:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case FieldBool:
		return strconv.FormatBool(v.Bool)
	case FieldString:
		return strconv.Quote(v.String)
	case FieldBytes:
		if len(v.Bytes) > 16 {
			return fmt.Sprintf("%s... (%d bytes)", hex.EncodeToString(v.Bytes[:16]), len(v.Bytes))
		}
		return hex.EncodeToString(v.Bytes)
	case FieldEnum:
		if v.String == "" {
			return strconv.FormatInt(v.Int, 10)
		}
		return fmt.Sprintf("%s (%d)", v.String, v.Int)
	case FieldList:
		return fmt.Sprintf("[%d items]", len(v.Items))
	case FieldGroup:
		parts := make([]string, 0, len(v.Group.Fields))
		for _, f := range v.Group.Fields {
			parts = append(parts, f.Name+"="+f.Value.Format())
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		return "?"
	}
}

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is the ordered set of fields decoded from one message.
type Record struct {
	Fields []Field
}

// NewRecord builds a record from fields in order.
func NewRecord(fields ...Field) Record {
	return Record{Fields: fields}
}

func (r *Record) Add(name string, v Value) {
	r.Fields = append(r.Fields, Field{Name: name, Value: v})
}

// Get returns the first field named name.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value of name, appending it when absent.
func (r *Record) Set(name string, v Value) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = v
			return
		}
	}
	r.Add(name, v)
}

func (r Record) Len() int { return len(r.Fields) }

// ParseValue parses raw into a scalar value of type t.
func ParseValue(t FieldType, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case t.signed():
		bits := t.width() * 8
		n, err := strconv.ParseInt(raw, 0, bits)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, t, raw, err)
		}
		return Value{Type: t, Int: n}, nil
	case t.unsigned():
		bits := t.width() * 8
		n, err := strconv.ParseUint(raw, 0, bits)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, t, raw, err)
		}
		return Value{Type: t, Uint: n}, nil
	}
	switch t {
	case FieldFloat32, FieldFloat64:
		bits := 64
		if t == FieldFloat32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(raw, bits)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, t, raw, err)
		}
		return Value{Type: t, Float: f}, nil
	case FieldBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, t, raw, err)
		}
		return BoolValue(b), nil
	case FieldString:
		return StringValue(raw), nil
	case FieldBytes:
		b, err := hex.DecodeString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, t, raw, err)
		}
		return BytesValue(b), nil
	case FieldEnum:
		n, err := strconv.ParseInt(raw, 0, 8)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, t, raw, err)
		}
		return EnumValue(int8(n), ""), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot parse %s from text", ErrInvalidValue, t)
	}
}

func (t FieldType) width() int {
	switch t {
	case FieldInt8, FieldUint8, FieldBool, FieldEnum:
		return 1
	case FieldInt16, FieldUint16:
		return 2
	case FieldInt32, FieldUint32, FieldFloat32:
		return 4
	case FieldInt64, FieldUint64, FieldFloat64:
		return 8
	default:
		return 0
	}
}
