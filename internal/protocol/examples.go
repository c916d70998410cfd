package protocol

func kv(name string, v Value) Field { return Field{Name: name, Value: v} }

// Example returns a representative record for op under rev. The values are
// realistic enough to seed synthesized traffic; callers override fields with
// Record.Set before encoding.
func Example(op Opcode, rev Revision) (Record, bool) {
	if op == OpLogin {
		rec := NewRecord(
			kv("entityId", Int32Value(2)),
			kv("serverName", StringValue("Notch")),
			kv("motd", StringValue("Password")),
		)
		if rev == RevisionMapSeed {
			rec.Add("mapSeed", Int64Value(-4172144997902289642))
			rec.Add("dimension", Int8Value(0))
		}
		return rec, true
	}
	rec, ok := examples[op]
	if !ok {
		return Record{}, false
	}
	out := Record{}
	out.Fields = append(out.Fields, rec.Fields...)
	return out, true
}

var examples = map[Opcode]Record{
	OpKeepAlive:  {},
	OpHandshake:  NewRecord(kv("serverId", StringValue("-"))),
	OpChat:       NewRecord(kv("message", StringValue("<Notch> hello"))),
	OpUpdateTime: NewRecord(kv("time", Int64Value(6000))),
	OpPlayerInventory: NewRecord(
		kv("type", Int32Value(-1)),
		kv("count", Uint16Value(3)),
		kv("slots", ListValue(
			GroupValue(NewRecord(kv("itemId", Int16Value(276)), kv("count", Int8Value(1)), kv("uses", Int16Value(0)))),
			GroupValue(NewRecord(kv("itemId", Int16Value(-1)))),
			GroupValue(NewRecord(kv("itemId", Int16Value(4)), kv("count", Int8Value(64)), kv("uses", Int16Value(0)))),
		)),
	),
	OpFlying: NewRecord(kv("onGround", BoolValue(true))),
	OpPlayerPosition: NewRecord(
		kv("x", Float64Value(102.5)), kv("y", Float64Value(67)),
		kv("stance", Float64Value(68.62)), kv("z", Float64Value(-33.25)),
		kv("onGround", BoolValue(true)),
	),
	OpPlayerLook: NewRecord(
		kv("rotation", Float32Value(90.5)), kv("pitch", Float32Value(-12.25)),
		kv("onGround", BoolValue(false)),
	),
	OpPlayerMoveLook: NewRecord(
		kv("x", Float64Value(102.5)), kv("y", Float64Value(67)),
		kv("stance", Float64Value(68.62)), kv("z", Float64Value(-33.25)),
		kv("rotation", Float32Value(180)), kv("pitch", Float32Value(45.5)),
		kv("onGround", BoolValue(true)),
	),
	OpBlockDig: NewRecord(
		kv("status", Int8Value(1)), kv("x", Int32Value(-12)), kv("y", Int8Value(64)),
		kv("z", Int32Value(300)), kv("direction", EnumValue(1, "+Y")),
	),
	OpPlace: NewRecord(
		kv("itemId", Int16Value(4)), kv("x", Int32Value(-12)), kv("y", Int8Value(65)),
		kv("z", Int32Value(300)), kv("direction", EnumValue(4, "-X")),
	),
	OpItemSwitch:     NewRecord(kv("entityId", Int32Value(0)), kv("itemId", Int16Value(276))),
	OpAddToInventory: NewRecord(kv("itemId", Int16Value(17)), kv("count", Int8Value(3)), kv("uses", Int16Value(0))),
	OpArmAnimation:   NewRecord(kv("entityId", Int32Value(12)), kv("animate", Int8Value(1))),
	OpNamedEntitySpawn: NewRecord(
		kv("entityId", Int32Value(12)), kv("name", StringValue("Notch")),
		kv("x", Int32Value(3280)), kv("y", Int32Value(2144)), kv("z", Int32Value(-1064)),
		kv("rotation", Int8Value(64)), kv("pitch", Int8Value(-8)), kv("heldItem", Int16Value(0)),
	),
	OpItemSpawn: NewRecord(
		kv("entityId", Int32Value(40)), kv("itemId", Int16Value(3)), kv("count", Int8Value(1)),
		kv("x", Int32Value(3296)), kv("y", Int32Value(2048)), kv("z", Int32Value(-1024)),
		kv("rotation", Int8Value(0)), kv("pitch", Int8Value(0)), kv("roll", Int8Value(0)),
	),
	OpCollectItem: NewRecord(kv("collectedId", Int32Value(40)), kv("collectorId", Int32Value(12))),
	OpObjectSpawn: NewRecord(
		kv("entityId", Int32Value(41)), kv("type", Int8Value(1)),
		kv("x", Int32Value(3200)), kv("y", Int32Value(2048)), kv("z", Int32Value(-960)),
	),
	OpMobSpawn: NewRecord(
		kv("entityId", Int32Value(42)), kv("type", Int8Value(50)),
		kv("x", Int32Value(3200)), kv("y", Int32Value(2048)), kv("z", Int32Value(-960)),
		kv("rotation", Int8Value(-128)), kv("pitch", Int8Value(0)),
	),
	OpDestroyEntity: NewRecord(kv("entityId", Int32Value(42))),
	OpEntity:        NewRecord(kv("entityId", Int32Value(42))),
	OpEntityMove: NewRecord(
		kv("entityId", Int32Value(42)), kv("dx", Int8Value(4)), kv("dy", Int8Value(0)), kv("dz", Int8Value(-3)),
	),
	OpEntityLook: NewRecord(kv("entityId", Int32Value(42)), kv("rotation", Int8Value(32)), kv("pitch", Int8Value(-16))),
	OpEntityMoveLook: NewRecord(
		kv("entityId", Int32Value(42)), kv("dx", Int8Value(1)), kv("dy", Int8Value(-1)), kv("dz", Int8Value(0)),
		kv("rotation", Int8Value(32)), kv("pitch", Int8Value(-16)),
	),
	OpEntityTeleport: NewRecord(
		kv("entityId", Int32Value(42)),
		kv("x", Int32Value(3200)), kv("y", Int32Value(2080)), kv("z", Int32Value(-960)),
		kv("rotation", Int8Value(0)), kv("pitch", Int8Value(0)),
	),
	OpPreChunk: NewRecord(kv("x", Int32Value(-2)), kv("z", Int32Value(5)), kv("mode", BoolValue(true))),
	OpMapChunk: NewRecord(
		kv("x", Int32Value(-32)), kv("y", Int16Value(0)), kv("z", Int32Value(80)),
		kv("sizeX", Int8Value(15)), kv("sizeY", Int8Value(127)), kv("sizeZ", Int8Value(15)),
		kv("compressedSize", Uint32Value(6)),
		kv("data", BytesValue([]byte{0x78, 0x9c, 0x03, 0x00, 0x00, 0x00})),
	),
	OpMultiBlockChange: NewRecord(
		kv("chunkX", Int32Value(-2)), kv("chunkZ", Int32Value(5)), kv("size", Uint16Value(2)),
		kv("coords", ListValue(Int16Value(0x1040), Int16Value(0x2041))),
		kv("types", ListValue(Int8Value(1), Int8Value(0))),
		kv("metadata", ListValue(Int8Value(0), Int8Value(0))),
	),
	OpBlockChange: NewRecord(
		kv("x", Int32Value(-12)), kv("y", Int8Value(64)), kv("z", Int32Value(300)),
		kv("type", Int8Value(0)), kv("metadata", Int8Value(0)),
	),
	OpComplexEntity: NewRecord(
		kv("x", Int32Value(-12)), kv("y", Int16Value(64)), kv("z", Int32Value(300)),
		kv("payloadSize", Uint16Value(4)),
		kv("payload", BytesValue([]byte{0x1f, 0x8b, 0x08, 0x00})),
	),
	OpKick: NewRecord(kv("reason", StringValue("Took too long to log in"))),
}
