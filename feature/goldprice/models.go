package goldprice

import (
	"time"
)

// GoldPrice is one immutable gold price snapshot for a server, in target
// currency per 10k gold. Rows are append-only; the newest row per server is
// the current price.
type GoldPrice struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ServerID int     `gorm:"not null;index" json:"serverId"`
	Price    float64 `gorm:"not null;type:decimal(12,6)" json:"price"`
	// UpdatedAt is assigned by the store on insert and never changes.
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// Quote is one transient feed entry: a feed-facing server name and a price.
// Quotes live only within a single update run; they are consumed to build
// GoldPrice snapshots and never persisted directly.
type Quote struct {
	ServerName string
	Price      float64
}
