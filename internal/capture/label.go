package capture

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/frame"
)

// TypeName is the display name of op, "Unknown Type:0xNN" when unnamed.
func TypeName(op protocol.Opcode) string {
	if info, ok := protocol.Info(op); ok {
		return info.Name
	}
	return fmt.Sprintf("Unknown Type:0x%02x", uint8(op))
}

// Summary is the one line label of msg.
func Summary(msg frame.Message, dir Direction, srcPort, dstPort int) string {
	return fmt.Sprintf("[%s] %d > %d Info Type:[%s]", dir, srcPort, dstPort, TypeName(msg.Opcode))
}

// Tree renders msg and its fields as an indented tree.
func Tree(msg frame.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Minecraft Alpha SMP, %s, %d bytes at %d\n", TypeName(msg.Opcode), msg.Length, msg.Offset)
	fmt.Fprintf(&b, "  Type: %s\n", msg.Opcode.Hex())
	fmt.Fprintf(&b, "  Data: %s\n", shortHex(msg.Raw))
	if msg.DecodeErr != nil {
		fmt.Fprintf(&b, "  [undecoded: %v]\n", msg.DecodeErr)
		return b.String()
	}
	writeRecord(&b, msg.Fields, 1)
	return b.String()
}

func writeRecord(b *strings.Builder, rec protocol.Record, depth int) {
	for _, f := range rec.Fields {
		writeValue(b, f.Name, f.Value, depth)
	}
}

func writeValue(b *strings.Builder, name string, v protocol.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Type {
	case protocol.FieldList:
		fmt.Fprintf(b, "%s%s: %d items\n", indent, name, len(v.Items))
		for i, item := range v.Items {
			writeValue(b, fmt.Sprintf("[%d]", i), item, depth+1)
		}
	case protocol.FieldGroup:
		fmt.Fprintf(b, "%s%s:\n", indent, name)
		writeRecord(b, v.Group, depth+1)
	default:
		fmt.Fprintf(b, "%s%s: %s\n", indent, name, v.Format())
	}
}

func shortHex(raw []byte) string {
	if len(raw) > 32 {
		return hex.EncodeToString(raw[:32]) + "..."
	}
	return hex.EncodeToString(raw)
}

// Plain converts rec into maps, slices and scalars for JSON output.
func Plain(rec protocol.Record) map[string]any {
	out := make(map[string]any, len(rec.Fields))
	for _, f := range rec.Fields {
		out[f.Name] = plainValue(f.Value)
	}
	return out
}

func plainValue(v protocol.Value) any {
	switch v.Type {
	case protocol.FieldInt8, protocol.FieldInt16, protocol.FieldInt32, protocol.FieldInt64:
		return v.Int
	case protocol.FieldUint8, protocol.FieldUint16, protocol.FieldUint32, protocol.FieldUint64:
		return v.Uint
	case protocol.FieldFloat32, protocol.FieldFloat64:
		return v.Float
	case protocol.FieldBool:
		return v.Bool
	case protocol.FieldString:
		return v.String
	case protocol.FieldBytes:
		return hex.EncodeToString(v.Bytes)
	case protocol.FieldEnum:
		return map[string]any{"raw": v.Int, "name": v.String}
	case protocol.FieldList:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, plainValue(item))
		}
		return items
	case protocol.FieldGroup:
		return Plain(v.Group)
	default:
		return nil
	}
}
