package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPorts are the server ports the protocol was commonly seen on.
var DefaultPorts = []int{25565, 2222, 3001}

// DissectorConfig selects how a stream is framed and decoded.
type DissectorConfig struct {
	Revision        string `toml:"revision"`
	Ports           []int  `toml:"ports"`
	MaxMessageBytes uint64 `toml:"max_message_bytes"`
}

func DefaultDissectorConfig() DissectorConfig {
	ports := make([]int, len(DefaultPorts))
	copy(ports, DefaultPorts)
	return DissectorConfig{
		Revision:        protocol.RevisionMapSeed.String(),
		Ports:           ports,
		MaxMessageBytes: protocol.DefaultLimits().MaxMessageBytes,
	}
}

type dissectorFile struct {
	Revision        *string `toml:"revision"`
	Ports           []int   `toml:"ports"`
	MaxMessageBytes *uint64 `toml:"max_message_bytes"`
}

// LoadDissectorConfig reads path over the defaults. Keys missing from the file
// keep their default value.
func LoadDissectorConfig(path string) (DissectorConfig, error) {
	cfg := DefaultDissectorConfig()
	var raw dissectorFile
	if err := loadToml(path, &raw); err != nil {
		return DissectorConfig{}, err
	}
	if raw.Revision != nil {
		cfg.Revision = strings.TrimSpace(*raw.Revision)
	}
	if raw.Ports != nil {
		cfg.Ports = raw.Ports
	}
	if raw.MaxMessageBytes != nil {
		cfg.MaxMessageBytes = *raw.MaxMessageBytes
	}
	if err := ValidateDissectorConfig(cfg); err != nil {
		return DissectorConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

var ErrInvalidConfig = errors.New("config: invalid dissector config")

func ValidateDissectorConfig(cfg DissectorConfig) error {
	if _, err := protocol.ParseRevision(cfg.Revision); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.MaxMessageBytes == 0 {
		return fmt.Errorf("%w: max_message_bytes must be positive", ErrInvalidConfig)
	}
	for i, port := range cfg.Ports {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%w: ports[%d]=%d out of range", ErrInvalidConfig, i, port)
		}
	}
	return nil
}

// ServerPort returns the first configured server port, or 0 when none is set.
func (c DissectorConfig) ServerPort() int {
	if len(c.Ports) == 0 {
		return 0
	}
	return c.Ports[0]
}

// IsServerPort reports whether port is one of the configured server ports.
func (c DissectorConfig) IsServerPort(port int) bool {
	for _, p := range c.Ports {
		if p == port {
			return true
		}
	}
	return false
}
