package protocol

import (
	"fmt"
	"strings"
)

// Revision selects between wire-incompatible revisions of the login message.
// The zero value is the field-complete revision.
type Revision int

const (
	// RevisionMapSeed ends the login message with a map seed (i64) and a
	// dimension (i8).
	RevisionMapSeed Revision = iota
	// RevisionNoSeed ends the login message after the second string.
	RevisionNoSeed
)

const loginSeedSuffix = 9

func (r Revision) String() string {
	switch r {
	case RevisionMapSeed:
		return "map-seed"
	case RevisionNoSeed:
		return "no-seed"
	default:
		return fmt.Sprintf("revision(%d)", int(r))
	}
}

// ParseRevision accepts the names produced by Revision.String.
func ParseRevision(raw string) (Revision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "map-seed", "mapseed":
		return RevisionMapSeed, nil
	case "no-seed", "noseed":
		return RevisionNoSeed, nil
	default:
		return 0, fmt.Errorf("protocol: unknown revision %q", raw)
	}
}

func (r Revision) loginSuffix() int {
	if r == RevisionMapSeed {
		return loginSeedSuffix
	}
	return 0
}
