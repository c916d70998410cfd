package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData  = errors.New("protocol: insufficient data")
	ErrUnknownOpcode     = errors.New("protocol: unknown opcode")
	ErrLengthOverflow    = errors.New("protocol: message length overflow")
	ErrLayoutMismatch    = errors.New("protocol: layout does not cover message")
	ErrNoLayout          = errors.New("protocol: opcode has no field layout")
	ErrFieldTypeMismatch = errors.New("protocol: field type mismatch")
	ErrInvalidValue      = errors.New("protocol: invalid field value")
)

// MissingFieldError indicates a record lacks a field its layout requires.
type MissingFieldError struct {
	Opcode Opcode
	Name   string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("protocol: opcode %s missing field %q", e.Opcode, e.Name)
}
