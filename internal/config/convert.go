package config

import (
	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/frame"
)

func (c DissectorConfig) ProtocolRevision() protocol.Revision {
	rev, err := protocol.ParseRevision(c.Revision)
	if err != nil {
		return protocol.RevisionMapSeed
	}
	return rev
}

func (c DissectorConfig) Limits() protocol.Limits {
	return protocol.Limits{MaxMessageBytes: c.MaxMessageBytes}
}

// FramerOptions converts the config into framer options.
func (c DissectorConfig) FramerOptions() []frame.Option {
	return []frame.Option{
		frame.WithRevision(c.ProtocolRevision()),
		frame.WithLimits(c.Limits()),
	}
}
