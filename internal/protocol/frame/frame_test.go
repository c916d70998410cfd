package frame

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/wire"
	"github.com/danmuck/mcwire/internal/testutil/testlog"
)

func exampleStream(t *testing.T, table *protocol.Table) []byte {
	t.Helper()
	var out []byte
	for _, op := range table.Opcodes() {
		rec, ok := protocol.Example(op, table.Revision())
		if !ok {
			t.Fatalf("no example for %s", op)
		}
		raw, err := table.Encode(op, rec)
		if err != nil {
			t.Fatalf("encode %s: %v", op, err)
		}
		out = append(out, raw...)
	}
	return out
}

func TestFrameKeepAliveBatch(t *testing.T) {
	testlog.Start(t)
	res := NewFramer().Frame(wire.NewBuffer([]byte{0x00, 0x00, 0x00}))
	if res.Err != nil || res.Segment != nil {
		t.Fatalf("unexpected stop: err=%v segment=%+v", res.Err, res.Segment)
	}
	if len(res.Messages) != 3 || res.Consumed != 3 {
		t.Fatalf("expected 3 messages and cursor 3, got %d and %d", len(res.Messages), res.Consumed)
	}
	for i, msg := range res.Messages {
		if msg.Opcode != protocol.OpKeepAlive || msg.Offset != i || msg.Length != 1 {
			t.Fatalf("message %d: unexpected %+v", i, msg)
		}
	}
}

func TestFrameEveryOpcodeInOneBuffer(t *testing.T) {
	testlog.Start(t)
	for _, rev := range []protocol.Revision{protocol.RevisionMapSeed, protocol.RevisionNoSeed} {
		f := NewFramer(WithRevision(rev))
		data := exampleStream(t, f.Table())
		res := f.Frame(wire.NewBuffer(data))
		if res.Err != nil || res.Segment != nil {
			t.Fatalf("%s: unexpected stop: err=%v segment=%+v", rev, res.Err, res.Segment)
		}
		if res.Consumed != len(data) {
			t.Fatalf("%s: consumed %d of %d", rev, res.Consumed, len(data))
		}
		ops := f.Table().Opcodes()
		if len(res.Messages) != len(ops) {
			t.Fatalf("%s: expected %d messages, got %d", rev, len(ops), len(res.Messages))
		}
		for i, msg := range res.Messages {
			if msg.Opcode != ops[i] {
				t.Fatalf("%s: message %d is %s, want %s", rev, i, msg.Opcode, ops[i])
			}
			if msg.DecodeErr != nil {
				t.Fatalf("%s: %s decode: %v", rev, msg.Opcode, msg.DecodeErr)
			}
		}
	}
}

// Delivering the stream in two pieces at any boundary yields the same
// messages as one delivery.
func TestFrameSplitDeliveryEquivalence(t *testing.T) {
	testlog.Start(t)
	f := NewFramer()
	data := exampleStream(t, f.Table())
	whole := f.Frame(wire.NewBuffer(data)).Messages

	for split := 0; split <= len(data); split++ {
		first := f.Frame(wire.NewBuffer(data[:split]))
		if first.Err != nil {
			t.Fatalf("split=%d: first delivery: %v", split, first.Err)
		}
		if first.Consumed < split && first.Segment == nil {
			t.Fatalf("split=%d: stopped at %d without a segmentation request", split, first.Consumed)
		}
		tail := append([]byte(nil), data[first.Consumed:]...)
		second := f.Frame(wire.NewBuffer(tail))
		if second.Err != nil || second.Consumed != len(tail) {
			t.Fatalf("split=%d: second delivery consumed %d of %d err=%v", split, second.Consumed, len(tail), second.Err)
		}

		got := append(first.Messages, second.Messages...)
		if len(got) != len(whole) {
			t.Fatalf("split=%d: expected %d messages, got %d", split, len(whole), len(got))
		}
		for i := range whole {
			if got[i].Opcode != whole[i].Opcode || got[i].Length != whole[i].Length {
				t.Fatalf("split=%d: message %d differs", split, i)
			}
			if !bytes.Equal(got[i].Raw, whole[i].Raw) || !reflect.DeepEqual(got[i].Fields, whole[i].Fields) {
				t.Fatalf("split=%d: message %d content differs", split, i)
			}
		}
	}
}

func TestFrameSegmentationDeficit(t *testing.T) {
	testlog.Start(t)
	data := make([]byte, 10)
	data[0] = byte(protocol.OpPlayerPosition)
	res := NewFramer().Frame(wire.NewBuffer(append([]byte{0x00}, data...)))
	if len(res.Messages) != 1 {
		t.Fatalf("expected keep-alive before the partial message, got %d", len(res.Messages))
	}
	if res.Segment == nil || res.Segment.Offset != 1 || res.Segment.Needed != 24 {
		t.Fatalf("expected segment {1 24}, got %+v", res.Segment)
	}
	if res.Consumed != 1 {
		t.Fatalf("expected cursor 1, got %d", res.Consumed)
	}

	// A chat prefix split in half cannot say how much is missing.
	res = NewFramer().Frame(wire.NewBuffer([]byte{byte(protocol.OpChat), 0x00}))
	if res.Segment == nil || res.Segment.Needed != NeedUnknown {
		t.Fatalf("expected unknown deficit, got %+v", res.Segment)
	}
}

func TestFrameReportedBeyondAvailable(t *testing.T) {
	testlog.Start(t)
	res := NewFramer().Frame(wire.NewReportedBuffer([]byte{0x00}, 4))
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	if res.Segment == nil || res.Segment.Offset != 1 || res.Segment.Needed != NeedUnknown {
		t.Fatalf("expected segment at 1 with unknown deficit, got %+v", res.Segment)
	}
}

func TestFrameStopsAtReportedLength(t *testing.T) {
	testlog.Start(t)
	res := NewFramer().Frame(wire.NewReportedBuffer([]byte{0x00, byte(protocol.OpFlying), 0x01}, 2))
	if len(res.Messages) != 1 || res.Messages[0].Opcode != protocol.OpKeepAlive {
		t.Fatalf("expected only the keep-alive inside the reported length, got %+v", res.Messages)
	}
	if res.Consumed != 1 {
		t.Fatalf("expected cursor 1, got %d", res.Consumed)
	}
	if res.Segment == nil || res.Segment.Offset != 1 || res.Segment.Needed != 1 {
		t.Fatalf("expected segment {1 1}, got %+v", res.Segment)
	}

	res = NewFramer().Frame(wire.NewReportedBuffer([]byte{0x00, 0x00, 0x00}, 2))
	if len(res.Messages) != 2 || res.Consumed != 2 || res.Segment != nil || res.Err != nil {
		t.Fatalf("expected cursor to end on the reported length, got %d messages cursor %d", len(res.Messages), res.Consumed)
	}
}

func TestFrameEmptyLoginStrings(t *testing.T) {
	testlog.Start(t)
	login := []byte{byte(protocol.OpLogin), 0, 0, 0, 7, 0, 0, 0, 0}
	res := NewFramer(WithRevision(protocol.RevisionNoSeed)).Frame(wire.NewBuffer(login))
	if len(res.Messages) != 1 || res.Messages[0].Length != 9 {
		t.Fatalf("expected one 9 byte login, got %+v", res.Messages)
	}
	name, _ := res.Messages[0].Fields.Get("serverName")
	if name.String != "" {
		t.Fatalf("expected empty server name, got %q", name.String)
	}

	res = NewFramer().Frame(wire.NewBuffer(login))
	if res.Segment == nil || res.Segment.Needed != 9 {
		t.Fatalf("expected the seed suffix to be missing, got %+v", res.Segment)
	}
}

func TestFrameUnknownOpcodeAfterMessages(t *testing.T) {
	testlog.Start(t)
	res := NewFramer().Frame(wire.NewBuffer([]byte{0x00, 0x00, 0x99, 0x00}))
	if len(res.Messages) != 2 {
		t.Fatalf("expected the earlier messages to survive, got %d", len(res.Messages))
	}
	var decodeErr *DecodeError
	if !errors.As(res.Err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", res.Err)
	}
	if decodeErr.Offset != 2 || decodeErr.Opcode != 0x99 {
		t.Fatalf("unexpected decode error %+v", decodeErr)
	}
	if !errors.Is(res.Err, protocol.ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", res.Err)
	}
	if res.Consumed != 2 || res.Segment != nil {
		t.Fatalf("expected cursor 2 and no segment, got %d %+v", res.Consumed, res.Segment)
	}
}

func TestFrameOverflowStops(t *testing.T) {
	testlog.Start(t)
	f := NewFramer(WithLimits(protocol.Limits{MaxMessageBytes: 8}))
	if f.Table().Limits().MaxMessageBytes != 8 {
		t.Fatalf("expected limits to reach the table, got %+v", f.Table().Limits())
	}
	res := f.Frame(wire.NewBuffer([]byte{byte(protocol.OpChat), 0x01, 0x00}))
	if !errors.Is(res.Err, protocol.ErrLengthOverflow) {
		t.Fatalf("expected ErrLengthOverflow, got %v", res.Err)
	}
}

func TestFrameUndecodableMessageContinues(t *testing.T) {
	testlog.Start(t)
	table := protocol.NewTable(protocol.RevisionMapSeed, protocol.DefaultLimits())
	// The string prefix claims more than the fixed span holds.
	if err := table.Register(0x99, protocol.Entry{
		Length: protocol.FixedLength(3),
		Layout: protocol.Layout{protocol.StringField("text")},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	res := NewFramer(WithTable(table)).Frame(wire.NewBuffer([]byte{0x99, 0x00, 0x05, 0x00}))
	if res.Err != nil || res.Consumed != 4 {
		t.Fatalf("expected framing to continue, err=%v consumed=%d", res.Err, res.Consumed)
	}
	if len(res.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(res.Messages))
	}
	bad := res.Messages[0]
	if !errors.Is(bad.DecodeErr, wire.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", bad.DecodeErr)
	}
	if bad.Fields.Len() != 0 || !bytes.Equal(bad.Raw, []byte{0x99, 0x00, 0x05}) {
		t.Fatalf("expected raw undecoded message, got %+v", bad)
	}
	if res.Messages[1].Opcode != protocol.OpKeepAlive {
		t.Fatalf("expected keep-alive after the bad message, got %s", res.Messages[1].Opcode)
	}
}

func TestFrameRawIsCopied(t *testing.T) {
	testlog.Start(t)
	data := []byte{byte(protocol.OpFlying), 0x01}
	res := NewFramer().Frame(wire.NewBuffer(data))
	data[1] = 0x00
	if res.Messages[0].Raw[1] != 0x01 {
		t.Fatalf("expected message bytes to be independent of the delivered buffer")
	}
}
