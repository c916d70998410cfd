package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/danmuck/mcwire/internal/capture"
	"github.com/danmuck/mcwire/internal/config"
	"github.com/danmuck/mcwire/internal/observability"
	"github.com/danmuck/mcwire/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

func runDecode(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	upPath := fs.String("up", "", "recorded client to server bytes")
	downPath := fs.String("down", "", "recorded server to client bytes")
	configPath := fs.String("config", "", "mcdump config file")
	dissectorPath := fs.String("dissector", "", "dissector config file")
	format := fs.String("format", formatText, "output format: text|json")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics and /health on this address")
	clientPort := fs.Int("client-port", 0, "client port shown in summaries")
	serverPort := fs.Int("server-port", 0, "server port shown in summaries, defaults to the dissector's first port")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}

	cfg := defaultRunConfig()
	if *configPath != "" {
		loaded, err := loadRunConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dissector":
			cfg.Dissector = *dissectorPath
		case "format":
			cfg.Format = *format
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "client-port":
			cfg.ClientPort = *clientPort
		case "server-port":
			cfg.ServerPort = *serverPort
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}
	if *upPath == "" && *downPath == "" {
		return fmt.Errorf("decode needs -up, -down or both\n%s", usage)
	}

	dissector := config.DefaultDissectorConfig()
	if cfg.Dissector != "" {
		loaded, err := config.LoadDissectorConfig(cfg.Dissector)
		if err != nil {
			return err
		}
		dissector = loaded
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = dissector.ServerPort()
	} else if !dissector.IsServerPort(cfg.ServerPort) {
		log.Warn().Int("server_port", cfg.ServerPort).Ints("ports", dissector.Ports).Msg("server port is not a configured dissector port")
	}

	up, closeUp, err := openInput(*upPath)
	if err != nil {
		return err
	}
	defer closeUp()
	down, closeDown, err := openInput(*downPath)
	if err != nil {
		return err
	}
	defer closeDown()

	session := capture.NewSession(dissector.FramerOptions()...)
	for _, dir := range directions {
		session.Stream(dir).SetReadSize(cfg.ReadSize)
	}
	log.Info().Str("session", session.ID).Str("revision", dissector.Revision).Str("format", cfg.Format).Msg("decode started")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	metricsDone := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		router := observability.NewRouter("mcdump", session.Status)
		go func() { metricsDone <- observability.Serve(runCtx, cfg.MetricsAddr, router) }()
	} else {
		metricsDone <- nil
	}

	p := &printer{out: stdout, cfg: cfg, session: session.ID}
	runErr := session.Run(runCtx, up, down, p.handle)
	cancel()
	if err := <-metricsDone; err != nil {
		log.Warn().Err(err).Msg("metrics endpoint stopped")
	}
	if runErr != nil {
		return runErr
	}
	if p.err != nil {
		return p.err
	}
	for _, dir := range directions {
		s := session.Stream(dir)
		if err := s.Failure(); err != nil {
			log.Warn().Err(err).Str("direction", dir.String()).Interface("stats", s.Stats()).Msg("direction not fully decoded")
		}
	}
	return nil
}

var directions = []capture.Direction{capture.Upstream, capture.Downstream}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// printer serializes output from both directions.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	cfg     runConfig
	session string
	err     error
}

type jsonMessage struct {
	Session   string         `json:"session"`
	Direction string         `json:"direction"`
	Offset    int            `json:"offset"`
	Opcode    string         `json:"opcode"`
	Name      string         `json:"name"`
	Length    int            `json:"length"`
	Fields    map[string]any `json:"fields,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (p *printer) handle(dir capture.Direction, msg frame.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	if p.cfg.Format == formatJSON {
		out := jsonMessage{
			Session:   p.session,
			Direction: dir.String(),
			Offset:    msg.Offset,
			Opcode:    msg.Opcode.Hex(),
			Name:      capture.TypeName(msg.Opcode),
			Length:    msg.Length,
		}
		if msg.DecodeErr != nil {
			out.Error = msg.DecodeErr.Error()
		} else {
			out.Fields = capture.Plain(msg.Fields)
		}
		line, err := json.Marshal(out)
		if err != nil {
			p.err = err
			return
		}
		_, p.err = fmt.Fprintln(p.out, string(line))
		return
	}

	src, dst := p.cfg.ClientPort, p.cfg.ServerPort
	if dir == capture.Downstream {
		src, dst = dst, src
	}
	_, p.err = fmt.Fprintf(p.out, "%s\n%s", capture.Summary(msg, dir, src, dst), capture.Tree(msg))
}
