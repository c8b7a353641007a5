package server

import (
	"strings"

	"goldwatch/core/apperror"
)

// Delimiters used to rejoin the name part of a three-token identifier.
const (
	// DisplayDelimiter rebuilds names the way the catalog stores them
	// ("grobbulus us").
	DisplayDelimiter = " "
	// FeedDelimiter rebuilds names the way external feeds spell them
	// ("grobbulus-us"); apostrophes are stripped in this mode as well.
	FeedDelimiter = "-"
)

// Identifier is the resolved form of a composite "<name>-<faction>" string.
type Identifier struct {
	Name    string
	Faction Faction
}

// ResolveIdentifier parses a composite server identifier.
//
// Two tokens yield (name, faction); three tokens yield the first two joined by
// delimiter plus the faction. Anything else is malformed. Name comparison is
// case-insensitive, so the returned name is already lower-cased.
func ResolveIdentifier(identifier, delimiter string) (Identifier, error) {
	if strings.TrimSpace(identifier) == "" {
		return Identifier{}, apperror.NewValidation("server identifier cannot be null or empty")
	}

	tokens := strings.Split(identifier, "-")

	var name string
	switch len(tokens) {
	case 1:
		return Identifier{}, apperror.NewValidation("server identifier %q must contain a faction", identifier)
	case 2:
		name = strings.ToLower(tokens[0])
	case 3:
		name = strings.ToLower(tokens[0] + delimiter + tokens[1])
	default:
		return Identifier{}, apperror.NewValidation("server identifier %q has too many parts", identifier)
	}

	if delimiter == FeedDelimiter {
		name = strings.ReplaceAll(name, "'", "")
	}

	faction, err := ParseFaction(tokens[len(tokens)-1])
	if err != nil {
		return Identifier{}, err
	}

	return Identifier{Name: name, Faction: faction}, nil
}
