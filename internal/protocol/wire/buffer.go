package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrOutOfBounds = errors.New("wire: read out of bounds")

// OutOfBoundsError reports a read that crossed the available length.
type OutOfBoundsError struct {
	Offset    int
	Width     int
	Available int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("wire: read [%d,%d) exceeds available length %d", e.Offset, e.Offset+e.Width, e.Available)
}

func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Buffer is one delivery unit of a single stream direction.
//
// Reported is the length the transport claims for the unit; only Available bytes
// are physically present. Reads are checked against Available.
type Buffer struct {
	data     []byte
	reported int
}

// NewBuffer returns a buffer whose reported length equals its available length.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data, reported: len(data)}
}

// NewReportedBuffer returns a buffer claiming reported bytes while holding data.
func NewReportedBuffer(data []byte, reported int) *Buffer {
	if reported < 0 {
		reported = 0
	}
	return &Buffer{data: data, reported: reported}
}

func (b *Buffer) Available() int { return len(b.data) }

func (b *Buffer) Reported() int { return b.reported }

// Bounded returns a view holding no more than the reported length. Bytes
// held past it belong to a later delivery unit.
func (b *Buffer) Bounded() *Buffer {
	if len(b.data) <= b.reported {
		return b
	}
	return &Buffer{data: b.data[:b.reported], reported: b.reported}
}

// AvailableFrom returns the number of present bytes at and after offset.
func (b *Buffer) AvailableFrom(offset int) int {
	if offset < 0 || offset >= len(b.data) {
		return 0
	}
	return len(b.data) - offset
}

// Slice returns a buffer over [offset, offset+n). The result shares memory.
func (b *Buffer) Slice(offset, n int) (*Buffer, error) {
	raw, err := b.span(offset, n)
	if err != nil {
		return nil, err
	}
	return NewBuffer(raw), nil
}

func (b *Buffer) span(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset > len(b.data) || n > len(b.data)-offset {
		return nil, &OutOfBoundsError{Offset: offset, Width: n, Available: len(b.data)}
	}
	return b.data[offset : offset+n], nil
}

func (b *Buffer) Uint8(offset int) (uint8, error) {
	raw, err := b.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

func (b *Buffer) Int8(offset int) (int8, error) {
	v, err := b.Uint8(offset)
	return int8(v), err
}

func (b *Buffer) Uint16(offset int) (uint16, error) {
	raw, err := b.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(raw), nil
}

func (b *Buffer) Int16(offset int) (int16, error) {
	v, err := b.Uint16(offset)
	return int16(v), err
}

func (b *Buffer) Uint32(offset int) (uint32, error) {
	raw, err := b.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(raw), nil
}

func (b *Buffer) Int32(offset int) (int32, error) {
	v, err := b.Uint32(offset)
	return int32(v), err
}

func (b *Buffer) Uint64(offset int) (uint64, error) {
	raw, err := b.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (b *Buffer) Int64(offset int) (int64, error) {
	v, err := b.Uint64(offset)
	return int64(v), err
}

func (b *Buffer) Float32(offset int) (float32, error) {
	v, err := b.Uint32(offset)
	return math.Float32frombits(v), err
}

func (b *Buffer) Float64(offset int) (float64, error) {
	v, err := b.Uint64(offset)
	return math.Float64frombits(v), err
}

// String reads n raw bytes as a string.
func (b *Buffer) String(offset, n int) (string, error) {
	raw, err := b.span(offset, n)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Bytes copies n raw bytes out of the buffer.
func (b *Buffer) Bytes(offset, n int) ([]byte, error) {
	raw, err := b.span(offset, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, raw)
	return out, nil
}
