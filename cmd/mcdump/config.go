package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// runConfig holds the options of one decode run. A zero ServerPort takes the
// first port of the dissector config.
type runConfig struct {
	Format      string
	Dissector   string
	MetricsAddr string
	ReadSize    int
	ClientPort  int
	ServerPort  int
}

type fileConfig struct {
	Format      string `toml:"format"`
	Dissector   string `toml:"dissector"`
	MetricsAddr string `toml:"metrics_addr"`
	ReadSize    int    `toml:"read_size"`
	ClientPort  int    `toml:"client_port"`
	ServerPort  int    `toml:"server_port"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Format:     formatText,
		ReadSize:   32 * 1024,
		ClientPort: 0,
		ServerPort: 0,
	}
}

func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runConfig{}, fmt.Errorf("load mcdump config: %w", err)
	}

	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("dissector") {
		cfg.Dissector = strings.TrimSpace(raw.Dissector)
		if cfg.Dissector != "" && !filepath.IsAbs(cfg.Dissector) {
			cfg.Dissector = filepath.Join(filepath.Dir(path), cfg.Dissector)
		}
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("read_size") {
		cfg.ReadSize = raw.ReadSize
	}
	if meta.IsDefined("client_port") {
		cfg.ClientPort = raw.ClientPort
	}
	if meta.IsDefined("server_port") {
		cfg.ServerPort = raw.ServerPort
	}

	if err := cfg.validate(); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func (c runConfig) validate() error {
	switch c.Format {
	case formatText, formatJSON:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if c.ReadSize <= 0 {
		return fmt.Errorf("read_size must be positive, got %d", c.ReadSize)
	}
	if c.ClientPort < 0 || c.ClientPort > 65535 || c.ServerPort < 0 || c.ServerPort > 65535 {
		return fmt.Errorf("ports out of range: client=%d server=%d", c.ClientPort, c.ServerPort)
	}
	return nil
}
