package protocol

import "fmt"

// Opcode is the one byte message discriminator that starts every message.
type Opcode uint8

const (
	OpKeepAlive        Opcode = 0x00
	OpLogin            Opcode = 0x01
	OpHandshake        Opcode = 0x02
	OpChat             Opcode = 0x03
	OpUpdateTime       Opcode = 0x04
	OpPlayerInventory  Opcode = 0x05
	OpFlying           Opcode = 0x0A
	OpPlayerPosition   Opcode = 0x0B
	OpPlayerLook       Opcode = 0x0C
	OpPlayerMoveLook   Opcode = 0x0D
	OpBlockDig         Opcode = 0x0E
	OpPlace            Opcode = 0x0F
	OpItemSwitch       Opcode = 0x10
	OpAddToInventory   Opcode = 0x11
	OpArmAnimation     Opcode = 0x12
	OpNamedEntitySpawn Opcode = 0x14
	OpItemSpawn        Opcode = 0x15
	OpCollectItem      Opcode = 0x16
	OpObjectSpawn      Opcode = 0x17
	OpMobSpawn         Opcode = 0x18
	OpDestroyEntity    Opcode = 0x1D
	OpEntity           Opcode = 0x1E
	OpEntityMove       Opcode = 0x1F
	OpEntityLook       Opcode = 0x20
	OpEntityMoveLook   Opcode = 0x21
	OpEntityTeleport   Opcode = 0x22
	OpPreChunk         Opcode = 0x32
	OpMapChunk         Opcode = 0x33
	OpMultiBlockChange Opcode = 0x34
	OpBlockChange      Opcode = 0x35
	OpComplexEntity    Opcode = 0x3B
	OpKick             Opcode = 0xFF
)

// Kind groups opcodes for diagnostics.
type Kind string

const (
	KindControl   Kind = "control"
	KindSession   Kind = "session"
	KindChat      Kind = "chat"
	KindWorld     Kind = "world"
	KindPlayer    Kind = "player"
	KindInventory Kind = "inventory"
	KindEntity    Kind = "entity"
	KindUnknown   Kind = "unknown"
)

// OpcodeInfo is the display metadata of one opcode.
type OpcodeInfo struct {
	Name string
	Kind Kind
}

// opcodeNames is used for labeling only; framing never consults it.
var opcodeNames = map[Opcode]OpcodeInfo{
	OpKeepAlive:        {"Keep Alive", KindControl},
	OpLogin:            {"Login", KindSession},
	OpHandshake:        {"Handshake", KindSession},
	OpChat:             {"Chat", KindChat},
	OpUpdateTime:       {"Update Time", KindWorld},
	OpPlayerInventory:  {"Player Inventory", KindInventory},
	OpFlying:           {"Flying", KindPlayer},
	OpPlayerPosition:   {"Player Position", KindPlayer},
	OpPlayerLook:       {"Player Look", KindPlayer},
	OpPlayerMoveLook:   {"Player Move + Look", KindPlayer},
	OpBlockDig:         {"Block Dig", KindPlayer},
	OpPlace:            {"Place", KindPlayer},
	OpItemSwitch:       {"Block/Item Switch", KindInventory},
	OpAddToInventory:   {"Add to Inventory", KindInventory},
	OpArmAnimation:     {"Arm Animation", KindEntity},
	OpNamedEntitySpawn: {"Named Entity Spawn", KindEntity},
	OpItemSpawn:        {"Item Spawn", KindEntity},
	OpCollectItem:      {"Collect Item", KindEntity},
	OpObjectSpawn:      {"Object/Vehicle Spawn", KindEntity},
	OpMobSpawn:         {"Mob Spawn", KindEntity},
	OpDestroyEntity:    {"Destroy Entity", KindEntity},
	OpEntity:           {"Entity", KindEntity},
	OpEntityMove:       {"Relative Entity Move", KindEntity},
	OpEntityLook:       {"Entity Look", KindEntity},
	OpEntityMoveLook:   {"Relative Entity Move + Look", KindEntity},
	OpEntityTeleport:   {"Entity Teleport", KindEntity},
	OpPreChunk:         {"Pre-Chunk", KindWorld},
	OpMapChunk:         {"Map Chunk", KindWorld},
	OpMultiBlockChange: {"Multi Block Change", KindWorld},
	OpBlockChange:      {"Block Change", KindWorld},
	OpComplexEntity:    {"Complex Entity", KindWorld},
	OpKick:             {"Kick", KindControl},
}

// Info returns the display metadata for op.
func Info(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeNames[op]
	return info, ok
}

// KindOf returns the kind of op, KindUnknown when it is not in the table.
func KindOf(op Opcode) Kind {
	if info, ok := opcodeNames[op]; ok {
		return info.Kind
	}
	return KindUnknown
}

func (op Opcode) String() string {
	if info, ok := opcodeNames[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint8(op))
}

// Hex renders op as 0xNN.
func (op Opcode) Hex() string {
	return fmt.Sprintf("0x%02X", uint8(op))
}
