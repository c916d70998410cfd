package protocol

import (
	"errors"
	"math"

	"github.com/danmuck/mcwire/internal/protocol/wire"
)

// LengthRule computes the total length of the message whose opcode byte sits at
// offset. available counts the bytes present from offset onward. A rule returns
// ErrInsufficientData when the bytes it needs to decide have not arrived yet.
type LengthRule interface {
	Length(buf *wire.Buffer, offset, available int) (uint64, error)
}

// Limits bounds resolved message lengths.
type Limits struct {
	MaxMessageBytes uint64
}

func DefaultLimits() Limits {
	return Limits{MaxMessageBytes: 16 * 1024 * 1024}
}

// probe reads length fields relative to a message start, refusing to look past
// the bytes the caller said are available.
type probe struct {
	buf       *wire.Buffer
	offset    int
	available int
}

func (p probe) need(n int) error {
	if n > p.available {
		return ErrInsufficientData
	}
	return nil
}

func (p probe) uint16(at int) (uint64, error) {
	if err := p.need(at + 2); err != nil {
		return 0, err
	}
	v, err := p.buf.Uint16(p.offset + at)
	if err != nil {
		return 0, insufficient(err)
	}
	return uint64(v), nil
}

func (p probe) uint32(at int) (uint64, error) {
	if err := p.need(at + 4); err != nil {
		return 0, err
	}
	v, err := p.buf.Uint32(p.offset + at)
	if err != nil {
		return 0, insufficient(err)
	}
	return uint64(v), nil
}

func (p probe) count(at, width int) (uint64, error) {
	if width == 4 {
		return p.uint32(at)
	}
	return p.uint16(at)
}

func insufficient(err error) error {
	if errors.Is(err, wire.ErrOutOfBounds) {
		return ErrInsufficientData
	}
	return err
}

// FixedLength is a rule for messages whose length never varies.
type FixedLength int

func (n FixedLength) Length(*wire.Buffer, int, int) (uint64, error) {
	return uint64(n), nil
}

// SizedLength reads an unsigned count of Width bytes at At and resolves to
// Header + Scale*count. It covers single length-prefixed payloads, trailing
// size fields and scaled element counts.
type SizedLength struct {
	At     int
	Width  int
	Header int
	Scale  int
}

// Prefixed is a 2-byte length-prefixed payload whose count sits at at and whose
// non-payload bytes (opcode and prefix included) total header.
func Prefixed(at, header int) SizedLength {
	return SizedLength{At: at, Width: 2, Header: header, Scale: 1}
}

// Trailing is a fixed header of header bytes whose last field, width bytes at
// at, gives the size of the blob that follows.
func Trailing(at, width, header int) SizedLength {
	return SizedLength{At: at, Width: width, Header: header, Scale: 1}
}

// Scaled is a header followed by count elements of scale bytes each.
func Scaled(at, header, scale int) SizedLength {
	return SizedLength{At: at, Width: 2, Header: header, Scale: scale}
}

func (r SizedLength) Length(buf *wire.Buffer, offset, available int) (uint64, error) {
	p := probe{buf: buf, offset: offset, available: available}
	n, err := p.count(r.At, r.Width)
	if err != nil {
		return 0, err
	}
	return uint64(r.Header) + uint64(r.Scale)*n, nil
}

// LoginLength resolves the login message: i32, two length-prefixed strings
// whose second prefix position depends on the first string, then Suffix bytes.
type LoginLength struct {
	Suffix int
}

func (r LoginLength) Length(buf *wire.Buffer, offset, available int) (uint64, error) {
	p := probe{buf: buf, offset: offset, available: available}
	lenA, err := p.uint16(5)
	if err != nil {
		return 0, err
	}
	lenB, err := p.uint16(7 + int(lenA))
	if err != nil {
		return 0, err
	}
	return 5 + (2 + lenA) + (2 + lenB) + uint64(r.Suffix), nil
}

// SlotArrayLength resolves the inventory message: a header ending in a 2-byte
// slot count at CountAt, then slots that are either a 2-byte empty sentinel or
// a populated record of SlotWidth bytes. The kind of each slot is only known
// once its first two bytes are read, so the scan walks slot by slot.
type SlotArrayLength struct {
	CountAt   int
	SlotWidth int
}

const (
	emptySlot      uint16 = 0xFFFF
	emptySlotWidth        = 2
)

func (r SlotArrayLength) Length(buf *wire.Buffer, offset, available int) (uint64, error) {
	p := probe{buf: buf, offset: offset, available: available}
	count, err := p.uint16(r.CountAt)
	if err != nil {
		return 0, err
	}
	pos := r.CountAt + 2
	for i := uint64(0); i < count; i++ {
		id, err := p.uint16(pos)
		if err != nil {
			return 0, err
		}
		if uint16(id) == emptySlot {
			pos += emptySlotWidth
			continue
		}
		if err := p.need(pos + r.SlotWidth); err != nil {
			return 0, err
		}
		pos += r.SlotWidth
	}
	return uint64(pos), nil
}

// checkLength validates a resolved length against limits and int range.
func checkLength(n uint64, limits Limits) (int, error) {
	if n == 0 {
		return 0, ErrLengthOverflow
	}
	if limits.MaxMessageBytes > 0 && n > limits.MaxMessageBytes {
		return 0, ErrLengthOverflow
	}
	if n > uint64(math.MaxInt) {
		return 0, ErrLengthOverflow
	}
	return int(n), nil
}
