package protocol

import (
	"fmt"
	"sort"

	"github.com/danmuck/mcwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

// Entry pairs the length rule of an opcode with its field layout. A nil
// Layout still frames; its messages decode to an empty record.
type Entry struct {
	Length LengthRule
	Layout Layout
}

// Table is the opcode dispatch table for one protocol revision. Register all
// entries before sharing a Table between framers; lookups are read-only.
type Table struct {
	revision Revision
	limits   Limits
	entries  map[Opcode]Entry
}

// NewTable returns the table of every known opcode for rev.
func NewTable(rev Revision, limits Limits) *Table {
	t := &Table{
		revision: rev,
		limits:   limits,
		entries:  make(map[Opcode]Entry, len(opcodeNames)),
	}
	for op, entry := range baseEntries() {
		t.entries[op] = entry
	}
	t.entries[OpLogin] = loginEntry(rev)
	return t
}

func baseEntries() map[Opcode]Entry {
	return map[Opcode]Entry{
		OpKeepAlive: {Length: FixedLength(1), Layout: Layout{}},
		OpHandshake: {Length: Prefixed(1, 3), Layout: layout(fields(StringField("serverId")))},
		OpChat:      {Length: Prefixed(1, 3), Layout: layout(fields(StringField("message")))},
		OpUpdateTime: {
			Length: FixedLength(9),
			Layout: layout(fields(i64("time"))),
		},
		OpPlayerInventory: {
			Length: SlotArrayLength{CountAt: 5, SlotWidth: 5},
			Layout: layout(fields(i32("type"), u16("count"), SlotsField("slots", "count"))),
		},
		OpFlying: {Length: FixedLength(2), Layout: layout(fields(flag("onGround")))},
		OpPlayerPosition: {
			Length: FixedLength(34),
			Layout: layout(xyzsDoubles(), fields(flag("onGround"))),
		},
		OpPlayerLook: {
			Length: FixedLength(10),
			Layout: layout(lookFloats(), fields(flag("onGround"))),
		},
		OpPlayerMoveLook: {
			Length: FixedLength(42),
			Layout: layout(xyzsDoubles(), lookFloats(), fields(flag("onGround"))),
		},
		OpBlockDig: {
			Length: FixedLength(12),
			Layout: layout(fields(i8("status")), blockPos(), fields(EnumField("direction", FaceNames))),
		},
		OpPlace: {
			Length: FixedLength(13),
			Layout: layout(fields(i16("itemId")), blockPos(), fields(EnumField("direction", FaceNames))),
		},
		OpItemSwitch: {
			Length: FixedLength(7),
			Layout: layout(fields(i32("entityId"), i16("itemId"))),
		},
		OpAddToInventory: {
			Length: FixedLength(6),
			Layout: layout(fields(i16("itemId"), i8("count"), i16("uses"))),
		},
		OpArmAnimation: {
			Length: FixedLength(6),
			Layout: layout(fields(i32("entityId"), i8("animate"))),
		},
		OpNamedEntitySpawn: {
			Length: Prefixed(5, 23),
			Layout: layout(fields(i32("entityId"), StringField("name")), intXYZ(), lookBytes(), fields(i16("heldItem"))),
		},
		OpItemSpawn: {
			Length: FixedLength(23),
			Layout: layout(fields(i32("entityId"), i16("itemId"), i8("count")), intXYZ(), lookBytes(), fields(i8("roll"))),
		},
		OpCollectItem: {
			Length: FixedLength(9),
			Layout: layout(fields(i32("collectedId"), i32("collectorId"))),
		},
		OpObjectSpawn: {
			Length: FixedLength(18),
			Layout: layout(fields(i32("entityId"), i8("type")), intXYZ()),
		},
		OpMobSpawn: {
			Length: FixedLength(20),
			Layout: layout(fields(i32("entityId"), i8("type")), intXYZ(), lookBytes()),
		},
		OpDestroyEntity: {Length: FixedLength(5), Layout: layout(fields(i32("entityId")))},
		OpEntity:        {Length: FixedLength(5), Layout: layout(fields(i32("entityId")))},
		OpEntityMove: {
			Length: FixedLength(8),
			Layout: layout(fields(i32("entityId")), byteDeltas()),
		},
		OpEntityLook: {
			Length: FixedLength(7),
			Layout: layout(fields(i32("entityId")), lookBytes()),
		},
		OpEntityMoveLook: {
			Length: FixedLength(10),
			Layout: layout(fields(i32("entityId")), byteDeltas(), lookBytes()),
		},
		OpEntityTeleport: {
			Length: FixedLength(19),
			Layout: layout(fields(i32("entityId")), intXYZ(), lookBytes()),
		},
		OpPreChunk: {
			Length: FixedLength(10),
			Layout: layout(fields(i32("x"), i32("z"), flag("mode"))),
		},
		OpMapChunk: {
			Length: Trailing(14, 4, 18),
			Layout: layout(
				fields(i32("x"), i16("y"), i32("z"), i8("sizeX"), i8("sizeY"), i8("sizeZ")),
				fields(u32("compressedSize"), BlobField("data", "compressedSize")),
			),
		},
		OpMultiBlockChange: {
			Length: Scaled(9, 11, 4),
			Layout: layout(fields(
				i32("chunkX"), i32("chunkZ"), u16("size"),
				ListField("coords", "size", FieldInt16),
				ListField("types", "size", FieldInt8),
				ListField("metadata", "size", FieldInt8),
			)),
		},
		OpBlockChange: {
			Length: FixedLength(12),
			Layout: layout(blockPos(), fields(i8("type"), i8("metadata"))),
		},
		OpComplexEntity: {
			Length: Trailing(11, 2, 13),
			Layout: layout(
				fields(i32("x"), i16("y"), i32("z")),
				fields(u16("payloadSize"), BlobField("payload", "payloadSize")),
			),
		},
		OpKick: {Length: Prefixed(1, 3), Layout: layout(fields(StringField("reason")))},
	}
}

func loginEntry(rev Revision) Entry {
	l := layout(fields(i32("entityId"), StringField("serverName"), StringField("motd")))
	if rev == RevisionMapSeed {
		l = layout(l, fields(i64("mapSeed"), i8("dimension")))
	}
	return Entry{Length: LoginLength{Suffix: rev.loginSuffix()}, Layout: l}
}

func (t *Table) Revision() Revision { return t.revision }

func (t *Table) Limits() Limits { return t.limits }

// Register adds or replaces the entry for op.
func (t *Table) Register(op Opcode, entry Entry) error {
	if entry.Length == nil {
		return fmt.Errorf("protocol: opcode %s registered without a length rule", op.Hex())
	}
	t.entries[op] = entry
	return nil
}

func (t *Table) Lookup(op Opcode) (Entry, bool) {
	e, ok := t.entries[op]
	return e, ok
}

// Opcodes lists registered opcodes in ascending order.
func (t *Table) Opcodes() []Opcode {
	out := make([]Opcode, 0, len(t.entries))
	for op := range t.entries {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve returns the total length of the message starting at offset.
//
// ErrInsufficientData means the length cannot be computed from the bytes
// present yet. ErrUnknownOpcode and ErrLengthOverflow are permanent: no
// further data makes the boundary trustworthy.
func (t *Table) Resolve(op Opcode, buf *wire.Buffer, offset int) (int, error) {
	entry, ok := t.Lookup(op)
	if !ok {
		return 0, ErrUnknownOpcode
	}
	n, err := entry.Length.Length(buf, offset, buf.AvailableFrom(offset))
	if err != nil {
		return 0, err
	}
	length, err := checkLength(n, t.limits)
	if err != nil {
		log.Debug().Str("opcode", op.Hex()).Uint64("length", n).Uint64("max", t.limits.MaxMessageBytes).Msg("protocol.Resolve rejected length")
		return 0, err
	}
	return length, nil
}
