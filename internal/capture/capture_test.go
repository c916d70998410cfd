package capture

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/wire"
	"github.com/danmuck/mcwire/internal/testutil/testlog"
)

func encodeExamples(t *testing.T, rev protocol.Revision, ops ...protocol.Opcode) []byte {
	t.Helper()
	table := protocol.NewTable(rev, protocol.DefaultLimits())
	if len(ops) == 0 {
		ops = table.Opcodes()
	}
	var out []byte
	for _, op := range ops {
		rec, ok := protocol.Example(op, rev)
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

type collector struct {
	mu   sync.Mutex
	msgs map[Direction][]frame.Message
}

func newCollector() *collector {
	return &collector{msgs: make(map[Direction][]frame.Message)}
}

func (c *collector) handle(dir Direction, msg frame.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs[dir] = append(c.msgs[dir], msg)
}

func TestStreamRetainsAcrossOneByteReads(t *testing.T) {
	testlog.Start(t)
	data := encodeExamples(t, protocol.RevisionMapSeed)
	whole := frame.NewFramer().Frame(wire.NewBuffer(data)).Messages

	s := NewStream(Upstream, nil)
	c := newCollector()
	if err := s.Pump(context.Background(), iotest.OneByteReader(bytes.NewReader(data)), c.handle); err != nil {
		t.Fatalf("pump: %v", err)
	}

	got := c.msgs[Upstream]
	if len(got) != len(whole) {
		t.Fatalf("expected %d messages, got %d", len(whole), len(got))
	}
	for i := range whole {
		if got[i].Opcode != whole[i].Opcode || got[i].Offset != whole[i].Offset {
			t.Fatalf("message %d: got %s@%d want %s@%d", i, got[i].Opcode, got[i].Offset, whole[i].Opcode, whole[i].Offset)
		}
		if !bytes.Equal(got[i].Raw, whole[i].Raw) {
			t.Fatalf("message %d: raw bytes differ", i)
		}
	}

	stats := s.Stats()
	if stats.Messages != len(whole) || stats.Pending != 0 || stats.Consumed != int64(len(data)) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Stalls == 0 {
		t.Fatalf("expected stalls when reading one byte at a time")
	}
}

func TestStreamMarksDirectionUnparseable(t *testing.T) {
	testlog.Start(t)
	s := NewStream(Downstream, nil)
	c := newCollector()

	err := s.Feed([]byte{0x00, 0x99, 0x01, 0x02}, c.handle)
	var decodeErr *frame.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Offset != 1 {
		t.Fatalf("expected failure at offset 1, got %d", decodeErr.Offset)
	}
	if len(c.msgs[Downstream]) != 1 {
		t.Fatalf("expected the keep-alive before the failure, got %d", len(c.msgs[Downstream]))
	}

	if err := s.Feed([]byte{0x00, 0x00}, c.handle); !errors.Is(err, ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
	if len(c.msgs[Downstream]) != 1 {
		t.Fatalf("expected no messages after failure")
	}

	stats := s.Stats()
	if !stats.Failed || stats.Discarded != 5 {
		t.Fatalf("expected failed with 5 discarded bytes, got %+v", stats)
	}
	if s.Failure() == nil {
		t.Fatalf("expected failure to be recorded")
	}
}

func TestStreamOffsetsAreStreamRelative(t *testing.T) {
	testlog.Start(t)
	s := NewStream(Upstream, nil)
	c := newCollector()
	chat := encodeExamples(t, protocol.RevisionMapSeed, protocol.OpChat)

	if err := s.Feed(append([]byte{0x00}, chat[:4]...), c.handle); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if err := s.Feed(chat[4:], c.handle); err != nil {
		t.Fatalf("feed: %v", err)
	}
	msgs := c.msgs[Upstream]
	if len(msgs) != 2 || msgs[1].Offset != 1 || msgs[1].Opcode != protocol.OpChat {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestSessionRunsBothDirections(t *testing.T) {
	testlog.Start(t)
	up := encodeExamples(t, protocol.RevisionMapSeed, protocol.OpLogin, protocol.OpChat, protocol.OpPlayerPosition)
	down := encodeExamples(t, protocol.RevisionMapSeed, protocol.OpLogin, protocol.OpMapChunk, protocol.OpKeepAlive)

	s := NewSession()
	if s.ID == "" {
		t.Fatalf("expected session id")
	}
	c := newCollector()
	err := s.Run(context.Background(),
		iotest.HalfReader(bytes.NewReader(up)),
		iotest.OneByteReader(bytes.NewReader(down)),
		c.handle)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(c.msgs[Upstream]) != 3 || len(c.msgs[Downstream]) != 3 {
		t.Fatalf("expected 3 messages each way, got %d/%d", len(c.msgs[Upstream]), len(c.msgs[Downstream]))
	}
	if c.msgs[Downstream][1].Opcode != protocol.OpMapChunk {
		t.Fatalf("unexpected downstream order: %s", c.msgs[Downstream][1].Opcode)
	}
	if s.Stream(Downstream) != s.Down || s.Stream(Upstream).Direction() != Upstream {
		t.Fatalf("unexpected stream lookup")
	}
	status := s.Status()
	if status["session"] != s.ID {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSessionSkipsMissingDirection(t *testing.T) {
	testlog.Start(t)
	s := NewSession(frame.WithRevision(protocol.RevisionNoSeed))
	c := newCollector()
	login := encodeExamples(t, protocol.RevisionNoSeed, protocol.OpLogin)
	if err := s.Run(context.Background(), bytes.NewReader(login), nil, c.handle); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(c.msgs[Upstream]) != 1 || len(c.msgs[Downstream]) != 0 {
		t.Fatalf("unexpected counts %d/%d", len(c.msgs[Upstream]), len(c.msgs[Downstream]))
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewStream(Upstream, nil).Pump(ctx, bytes.NewReader([]byte{0x00}), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSummaryAndTree(t *testing.T) {
	testlog.Start(t)
	data := encodeExamples(t, protocol.RevisionMapSeed, protocol.OpChat, protocol.OpPlayerInventory)
	msgs := frame.NewFramer().Frame(wire.NewBuffer(data)).Messages

	if got := Summary(msgs[0], Upstream, 51234, 25565); got != "[upstream] 51234 > 25565 Info Type:[Chat]" {
		t.Fatalf("unexpected summary %q", got)
	}
	unknown := frame.Message{Opcode: 0x99}
	if got := Summary(unknown, Downstream, 25565, 51234); got != "[downstream] 25565 > 51234 Info Type:[Unknown Type:0x99]" {
		t.Fatalf("unexpected summary %q", got)
	}

	tree := Tree(msgs[1])
	for _, want := range []string{"Player Inventory", "Type: 0x05", "slots: 3 items", "[1]:", "itemId: -1"} {
		if !strings.Contains(tree, want) {
			t.Fatalf("tree missing %q:\n%s", want, tree)
		}
	}
	if !strings.Contains(Tree(msgs[0]), `message: "<Notch> hello"`) {
		t.Fatalf("chat tree missing message:\n%s", Tree(msgs[0]))
	}
}

func TestPlainRecord(t *testing.T) {
	testlog.Start(t)
	rec, _ := protocol.Example(protocol.OpBlockDig, protocol.RevisionMapSeed)
	plain := Plain(rec)
	if plain["x"] != int64(-12) {
		t.Fatalf("unexpected x: %#v", plain["x"])
	}
	face, ok := plain["direction"].(map[string]any)
	if !ok || face["name"] != "+Y" {
		t.Fatalf("unexpected direction: %#v", plain["direction"])
	}
}
