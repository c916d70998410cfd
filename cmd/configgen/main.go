package main

import (
	"flag"
	"log"

	"github.com/danmuck/mcwire/internal/config"
)

func main() {
	kind := flag.String("kind", "dissector", "config kind: dissector|mcdump")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing dissector config file")
	input := flag.String("input", "cmd/mcdump/dissector.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if *kind != "dissector" {
			log.Fatalf("validation supports the dissector kind only, got %s", *kind)
		}
		cfg, err := config.LoadDissectorConfig(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated dissector config at %s (revision %s, ports %v)", *input, cfg.Revision, cfg.Ports)
		return
	}

	target := *output
	if target == "" {
		switch *kind {
		case "dissector":
			target = "cmd/mcdump/dissector.toml"
		case "mcdump":
			target = "cmd/mcdump/config.toml"
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
