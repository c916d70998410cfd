package capture

import (
	"context"
	"io"

	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Session is the pair of directions of one connection.
type Session struct {
	ID   string
	Up   *Stream
	Down *Stream
}

// NewSession builds both directions with their own framer from opts.
func NewSession(opts ...frame.Option) *Session {
	id := uuid.New().String()
	s := &Session{
		ID:   id,
		Up:   NewStream(Upstream, frame.NewFramer(opts...)),
		Down: NewStream(Downstream, frame.NewFramer(opts...)),
	}
	s.Up.logger = s.Up.logger.With().Str("session", id).Logger()
	s.Down.logger = s.Down.logger.With().Str("session", id).Logger()
	return s
}

func (s *Session) Stream(dir Direction) *Stream {
	if dir == Downstream {
		return s.Down
	}
	return s.Up
}

// Run pumps up and down concurrently until both reach EOF. A nil reader
// skips that direction. handle must be safe for concurrent use.
func (s *Session) Run(ctx context.Context, up, down io.Reader, handle Handler) error {
	log.Info().Str("session", s.ID).Msg("session started")
	g, ctx := errgroup.WithContext(ctx)
	if up != nil {
		g.Go(func() error { return s.Up.Pump(ctx, up, handle) })
	}
	if down != nil {
		g.Go(func() error { return s.Down.Pump(ctx, down, handle) })
	}
	err := g.Wait()
	log.Info().Str("session", s.ID).Interface("upstream", s.Up.Stats()).Interface("downstream", s.Down.Stats()).Msg("session finished")
	return err
}

// Status reports per-direction counters for the health endpoint.
func (s *Session) Status() map[string]any {
	return map[string]any{
		"session":    s.ID,
		"upstream":   s.Up.Stats(),
		"downstream": s.Down.Stats(),
	}
}
