package itemprice

import (
	"time"
)

// ItemPrice is one immutable auction house snapshot for a (server, item)
// pair. Rows are append-only; currency is resolved at read time by picking
// the row with the maximum UpdatedAt per group, ties broken by highest id.
type ItemPrice struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID          int       `gorm:"not null;index:idx_item_prices_group,priority:2" json:"itemId"`
	ServerID        int       `gorm:"not null;index:idx_item_prices_group,priority:1" json:"serverId"`
	MinBuyout       int64     `gorm:"not null" json:"minBuyout"`
	HistoricalValue int64     `gorm:"not null" json:"historicalValue"`
	MarketValue     int64     `gorm:"not null" json:"marketValue"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	NumAuctions     int       `gorm:"not null" json:"numAuctions"`
	// UpdatedAt is assigned by the store on insert and never changes.
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// Request is the batch query input: item names or ids, and optionally server
// identifiers. An empty server list means "across all servers".
type Request struct {
	ItemList   []string `json:"itemList"`
	ServerList []string `json:"serverList,omitempty"`
}
