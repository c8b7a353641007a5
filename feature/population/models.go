package population

import (
	"time"
)

// Population is one immutable population snapshot for a server. A server row
// covers a single faction; the combined view of a realm is the TotalPop
// projection.
type Population struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ServerID int   `gorm:"not null;index" json:"serverId"`
	Value    int   `gorm:"not null" json:"value"`
	// UpdatedAt is assigned by the store on insert and never changes.
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// TotalPop aggregates the current population of one realm name across both
// factions. It is a query projection, not a stored table.
type TotalPop struct {
	Name               string `json:"name"`
	AlliancePopulation int    `json:"alliancePopulation"`
	HordePopulation    int    `json:"hordePopulation"`
	CombinedPopulation int    `json:"combinedPopulation"`
}
