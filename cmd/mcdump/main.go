package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/mcwire/internal/observability"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const usage = `usage:
  mcdump decode [-up file] [-down file] [-config file] [-dissector file] [-format text|json] [-metrics-addr addr]
  mcdump synth -op 0x03 [-revision map-seed|no-seed] [-field name=value ...]`

var errUsage = errors.New(usage)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "mcdump: load .env: %v\n", err)
	}
	observability.InitLogger("mcdump")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("mcdump failed")
		fmt.Fprintf(os.Stderr, "mcdump: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "decode":
		return runDecode(ctx, args[1:], stdout)
	case "synth":
		return runSynth(args[1:], stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}
