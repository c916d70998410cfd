package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danmuck/mcwire/internal/config"
	"github.com/danmuck/mcwire/internal/protocol"
)

// fieldFlags collects repeated -field name=value arguments.
type fieldFlags []string

func (f *fieldFlags) String() string { return strings.Join(*f, ",") }

func (f *fieldFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func runSynth(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opRaw := fs.String("op", "", "opcode, e.g. 0x03")
	revRaw := fs.String("revision", protocol.RevisionMapSeed.String(), "map-seed|no-seed")
	var overrides fieldFlags
	fs.Var(&overrides, "field", "name=value override, repeatable")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if *opRaw == "" {
		return fmt.Errorf("synth needs -op\n%s", usage)
	}

	n, err := strconv.ParseUint(strings.TrimSpace(*opRaw), 0, 8)
	if err != nil {
		return fmt.Errorf("parse -op %q: %w", *opRaw, err)
	}
	op := protocol.Opcode(n)
	rev, err := protocol.ParseRevision(*revRaw)
	if err != nil {
		return err
	}

	out, err := synthesize(op, rev, overrides)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hex.EncodeToString(out))
	return err
}

// synthesize encodes the example record of op after applying overrides.
// String prefixes follow the new value; blob and list sizes must be
// overridden together with their contents.
func synthesize(op protocol.Opcode, rev protocol.Revision, overrides []string) ([]byte, error) {
	rec, ok := protocol.Example(op, rev)
	if !ok {
		return nil, fmt.Errorf("no template for opcode %s", op.Hex())
	}
	for _, kv := range overrides {
		name, raw, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("field override %q is not name=value", kv)
		}
		name = strings.TrimSpace(name)
		current, ok := rec.Get(name)
		if !ok {
			return nil, fmt.Errorf("opcode %s has no field %q", op.Hex(), name)
		}
		v, err := protocol.ParseValue(current.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		rec.Set(name, v)
	}
	defaults := config.DefaultDissectorConfig()
	table := protocol.NewTable(rev, defaults.Limits())
	return table.Encode(op, rec)
}
