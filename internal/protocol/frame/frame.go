package frame

import (
	"errors"
	"fmt"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/wire"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NeedUnknown marks a SegmentationRequest whose deficit cannot be computed
// yet; the caller should redeliver once at least one more byte has arrived.
const NeedUnknown = -1

// Message is one complete protocol message found in a delivered buffer.
type Message struct {
	Opcode protocol.Opcode
	// Offset is the position of the opcode byte within the delivered buffer.
	Offset int
	Length int
	Fields protocol.Record
	Raw    []byte
	// DecodeErr is set when the span framed but its fields did not decode.
	// Fields is empty in that case and Raw still holds the whole message.
	DecodeErr error
}

// SegmentationRequest asks the caller to redeliver from Offset once more
// bytes are present.
type SegmentationRequest struct {
	Offset int
	Needed int
}

// DecodeError stops framing for the rest of a buffer. Bytes after Offset can
// not be split into messages.
type DecodeError struct {
	Offset int
	Opcode protocol.Opcode
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("frame: opcode %s at offset %d: %v", e.Opcode.Hex(), e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Result is the outcome of one Frame call. Consumed is the cursor at which
// the loop stopped: every byte before it belongs to a returned message.
type Result struct {
	Messages []Message
	Segment  *SegmentationRequest
	Err      error
	Consumed int
}

// Framer splits delivered buffers into messages for one stream direction.
type Framer struct {
	table  *protocol.Table
	logger zerolog.Logger
}

type Option func(*options)

type options struct {
	revision protocol.Revision
	limits   protocol.Limits
	table    *protocol.Table
	logger   *zerolog.Logger
}

func WithRevision(rev protocol.Revision) Option {
	return func(o *options) { o.revision = rev }
}

func WithLimits(limits protocol.Limits) Option {
	return func(o *options) { o.limits = limits }
}

// WithTable shares a prepared table; it overrides WithRevision and WithLimits.
func WithTable(table *protocol.Table) Option {
	return func(o *options) { o.table = table }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

func NewFramer(opts ...Option) *Framer {
	o := options{revision: protocol.RevisionMapSeed, limits: protocol.DefaultLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	table := o.table
	if table == nil {
		table = protocol.NewTable(o.revision, o.limits)
	}
	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}
	return &Framer{
		table:  table,
		logger: logger.With().Str("component", "frame").Logger(),
	}
}

func (f *Framer) Table() *protocol.Table { return f.table }

// Frame walks buf from offset 0 and returns every complete message in it.
// It never reads past the available or reported length of buf and keeps no
// state between calls; bytes from Result.Consumed onward must be redelivered.
func (f *Framer) Frame(buf *wire.Buffer) Result {
	var res Result
	buf = buf.Bounded()
	cursor := 0
	for cursor < buf.Reported() {
		raw, err := buf.Uint8(cursor)
		if err != nil {
			res.Segment = &SegmentationRequest{Offset: cursor, Needed: NeedUnknown}
			break
		}
		op := protocol.Opcode(raw)
		available := buf.AvailableFrom(cursor)

		length, err := f.table.Resolve(op, buf, cursor)
		if errors.Is(err, protocol.ErrInsufficientData) {
			f.logger.Debug().Str("opcode", op.Hex()).Int("offset", cursor).Int("available", available).Msg("length unresolved")
			res.Segment = &SegmentationRequest{Offset: cursor, Needed: NeedUnknown}
			break
		}
		if err != nil {
			f.logger.Warn().Err(err).Str("opcode", op.Hex()).Int("offset", cursor).
				Uint64("max_message_bytes", f.table.Limits().MaxMessageBytes).Msg("framing stopped")
			res.Err = &DecodeError{Offset: cursor, Opcode: op, Err: err}
			break
		}
		if length > available {
			f.logger.Debug().Str("opcode", op.Hex()).Int("offset", cursor).Int("length", length).Int("available", available).Msg("message incomplete")
			res.Segment = &SegmentationRequest{Offset: cursor, Needed: length - available}
			break
		}

		res.Messages = append(res.Messages, f.decode(op, buf, cursor, length))
		cursor += length
	}
	res.Consumed = cursor
	return res
}

func (f *Framer) decode(op protocol.Opcode, buf *wire.Buffer, offset, length int) Message {
	msg := Message{Opcode: op, Offset: offset, Length: length}
	raw, err := buf.Bytes(offset, length)
	if err != nil {
		// Resolve confirmed the span; reaching this is a resolver bug.
		msg.DecodeErr = err
		return msg
	}
	msg.Raw = raw
	rec, err := f.table.Decode(wire.NewBuffer(raw))
	if err != nil {
		f.logger.Warn().Err(err).Str("opcode", op.Hex()).Int("offset", offset).Int("length", length).Msg("message emitted undecoded")
		msg.DecodeErr = err
		return msg
	}
	msg.Fields = rec
	return msg
}
