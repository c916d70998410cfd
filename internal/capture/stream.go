package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/danmuck/mcwire/internal/observability"
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/danmuck/mcwire/internal/protocol/wire"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultReadSize = 32 * 1024

// ErrUnparseable is returned by Feed once a direction has failed framing.
var ErrUnparseable = errors.New("capture: direction is unparseable")

// Handler receives every framed message. Offsets are positions in the
// direction stream, not in the delivered chunk. A Session calls its handler
// from both directions concurrently.
type Handler func(dir Direction, msg frame.Message)

// Stats counts what a Stream has seen so far.
type Stats struct {
	Messages  int   `json:"messages"`
	Undecoded int   `json:"undecoded"`
	Stalls    int   `json:"stalls"`
	Consumed  int64 `json:"consumed"`
	Pending   int   `json:"pending"`
	Discarded int64 `json:"discarded"`
	Failed    bool  `json:"failed"`
}

// Stream retains the unconsumed bytes of one direction between deliveries.
type Stream struct {
	dir      Direction
	framer   *frame.Framer
	logger   zerolog.Logger
	readSize int

	mu      sync.Mutex
	pending []byte
	base    int64
	failure error
	stats   Stats
}

func NewStream(dir Direction, framer *frame.Framer) *Stream {
	if framer == nil {
		framer = frame.NewFramer()
	}
	return &Stream{
		dir:      dir,
		framer:   framer,
		logger:   log.Logger.With().Str("direction", dir.String()).Logger(),
		readSize: defaultReadSize,
	}
}

func (s *Stream) Direction() Direction { return s.dir }

// SetReadSize sets the chunk size Pump reads with. Call it before Pump.
func (s *Stream) SetReadSize(n int) {
	if n > 0 {
		s.readSize = n
	}
}

// Feed appends data to the retained bytes and frames as far as possible.
// It returns the framing failure on the call that hits it and ErrUnparseable
// on later calls, whose bytes are counted as discarded.
func (s *Stream) Feed(data []byte, handle Handler) error {
	s.mu.Lock()
	if s.failure != nil {
		s.stats.Discarded += int64(len(data))
		s.mu.Unlock()
		observability.RecordDiscarded(s.dir.String(), len(data))
		return ErrUnparseable
	}
	s.pending = append(s.pending, data...)
	res := s.framer.Frame(wire.NewBuffer(s.pending))
	base := s.base
	s.account(res)
	s.mu.Unlock()

	for _, msg := range res.Messages {
		msg.Offset += int(base)
		if handle != nil {
			handle(s.dir, msg)
		}
	}
	return res.Err
}

// account updates retention and counters from one framing pass. Callers hold mu.
func (s *Stream) account(res frame.Result) {
	dir := s.dir.String()
	for _, msg := range res.Messages {
		s.stats.Messages++
		if msg.DecodeErr != nil {
			s.stats.Undecoded++
		}
		observability.RecordMessage(dir, msg.Opcode.Hex(), msg.Length, msg.DecodeErr == nil)
	}
	s.stats.Consumed += int64(res.Consumed)
	s.base += int64(res.Consumed)
	s.pending = append(s.pending[:0], s.pending[res.Consumed:]...)

	if res.Segment != nil {
		s.stats.Stalls++
		observability.RecordStall(dir)
	}
	if res.Err != nil {
		var decodeErr *frame.DecodeError
		opcode := "unknown"
		if errors.As(res.Err, &decodeErr) {
			opcode = decodeErr.Opcode.Hex()
		}
		s.failure = res.Err
		s.stats.Failed = true
		s.stats.Discarded += int64(len(s.pending))
		observability.RecordFailure(dir, opcode)
		observability.RecordDiscarded(dir, len(s.pending))
		s.logger.Warn().Err(res.Err).Int64("stream_offset", s.base).Int("discarded", len(s.pending)).Msg("direction marked unparseable")
		s.pending = nil
	}
	s.stats.Pending = len(s.pending)
}

// Pump feeds r into the stream until EOF or ctx is done. A framing failure
// does not stop the pump; the rest of r is drained and discarded.
func (s *Stream) Pump(ctx context.Context, r io.Reader, handle Handler) error {
	buf := make([]byte, s.readSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if ferr := s.Feed(buf[:n], handle); ferr != nil && !errors.Is(ferr, ErrUnparseable) {
				s.logger.Debug().Err(ferr).Msg("draining after framing failure")
			}
		}
		if errors.Is(err, io.EOF) {
			s.finish()
			return nil
		}
		if err != nil {
			return fmt.Errorf("capture: read %s: %w", s.dir, err)
		}
	}
}

func (s *Stream) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > 0 {
		s.logger.Info().Int("pending", len(s.pending)).Int64("stream_offset", s.base).Msg("stream ended inside a message")
	}
}

// Failure returns the error that made the direction unparseable, if any.
func (s *Stream) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *Stream) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
