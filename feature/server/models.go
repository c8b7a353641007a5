package server

import (
	"strings"

	"goldwatch/core/apperror"
)

// Faction is the side a game server belongs to.
type Faction string

const (
	FactionAlliance Faction = "ALLIANCE"
	FactionHorde    Faction = "HORDE"
)

// ParseFaction resolves a faction token case-insensitively.
func ParseFaction(s string) (Faction, error) {
	switch strings.ToUpper(s) {
	case string(FactionAlliance):
		return FactionAlliance, nil
	case string(FactionHorde):
		return FactionHorde, nil
	default:
		return "", apperror.NewValidation("unknown faction %q", s)
	}
}

// Region locates a server cluster. DE, FR and RU are EU subregions.
type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
	RegionDE Region = "DE"
	RegionFR Region = "FR"
	RegionRU Region = "RU"
)

// ParseRegion resolves a region token case-insensitively.
func ParseRegion(s string) (Region, error) {
	switch strings.ToUpper(s) {
	case string(RegionUS):
		return RegionUS, nil
	case string(RegionEU):
		return RegionEU, nil
	case string(RegionDE):
		return RegionDE, nil
	case string(RegionFR):
		return RegionFR, nil
	case string(RegionRU):
		return RegionRU, nil
	default:
		return "", apperror.NewValidation("unknown region %q", s)
	}
}

// Parent returns the top-level region a subregion rolls up to.
func (r Region) Parent() Region {
	switch r {
	case RegionDE, RegionFR, RegionRU:
		return RegionEU
	default:
		return r
	}
}

// Members returns the region itself plus every subregion it covers, for
// queries addressed at a parent region.
func (r Region) Members() []Region {
	if r == RegionEU {
		return []Region{RegionEU, RegionDE, RegionFR, RegionRU}
	}
	return []Region{r}
}

// GameVersion tags which game release a server runs.
type GameVersion string

const (
	VersionClassic  GameVersion = "CLASSIC"
	VersionSeasonal GameVersion = "SEASONAL"
	VersionWrath    GameVersion = "WRATH"
)

// ParseGameVersion resolves a game version token case-insensitively.
func ParseGameVersion(s string) (GameVersion, error) {
	switch strings.ToUpper(s) {
	case string(VersionClassic):
		return VersionClassic, nil
	case string(VersionSeasonal):
		return VersionSeasonal, nil
	case string(VersionWrath):
		return VersionWrath, nil
	default:
		return "", apperror.NewValidation("unknown game version %q", s)
	}
}

// Server is one canonical catalog entry. The pair (normalized name, faction)
// is unique and forms the identity external feeds are matched against.
// The catalog is administered out of band; this application only reads it.
type Server struct {
	ID          int         `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"not null;uniqueIndex:idx_servers_name_faction,priority:1" json:"name"`
	Faction     Faction     `gorm:"type:varchar(16);not null;uniqueIndex:idx_servers_name_faction,priority:2" json:"faction"`
	Region      Region      `gorm:"type:varchar(8);not null" json:"region"`
	GameVersion GameVersion `gorm:"type:varchar(16);not null" json:"gameVersion"`
}

// UniqueName is the feed-facing identity: lower-cased name with spaces and
// apostrophes normalized, joined to the faction with a hyphen.
// "Grobbulus US"/HORDE becomes "grobbulus-us-horde".
func (s Server) UniqueName() string {
	name := strings.ToLower(s.Name)
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, " ", "-")
	return name + "-" + strings.ToLower(string(s.Faction))
}
