package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "dissector", "":
		return dissectorTemplate, nil
	case "mcdump":
		return mcdumpTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const dissectorTemplate = `# map-seed: login ends with map seed and dimension
# no-seed: login ends after the message of the day
revision = "map-seed"
ports = [25565, 2222, 3001]
max_message_bytes = 16777216
`

const mcdumpTemplate = `format = "text"
dissector = "dissector.toml"
metrics_addr = ""
read_size = 32768
client_port = 51234
server_port = 25565
`
