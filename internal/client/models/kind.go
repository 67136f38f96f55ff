package models

import (
	"fmt"

	"github.com/dmitrijs2005/dbcache/internal/common"
)

// Kind names a record kind a consumer can refresh or observe.
type Kind string

const (
	KindCharacter Kind = "character"
	KindPlanet    Kind = "planet"
)

// Kinds lists every observable kind in a stable order.
var Kinds = []Kind{KindCharacter, KindPlanet}

// ParseKind accepts singular and plural spellings ("planet", "planets").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "character", "characters", "c":
		return KindCharacter, nil
	case "planet", "planets", "p":
		return KindPlanet, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrorUnknownKind, s)
}

func (k Kind) String() string { return string(k) }
