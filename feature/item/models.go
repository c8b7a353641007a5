package item

import (
	"strings"

	"goldwatch/core/apperror"
)

// Quality is the item rarity tier.
type Quality string

const (
	QualityCommon    Quality = "COMMON"
	QualityUncommon  Quality = "UNCOMMON"
	QualityRare      Quality = "RARE"
	QualityEpic      Quality = "EPIC"
	QualityLegendary Quality = "LEGENDARY"
)

// ParseQuality resolves a quality token case-insensitively.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToUpper(s) {
	case string(QualityCommon):
		return QualityCommon, nil
	case string(QualityUncommon):
		return QualityUncommon, nil
	case string(QualityRare):
		return QualityRare, nil
	case string(QualityEpic):
		return QualityEpic, nil
	case string(QualityLegendary):
		return QualityLegendary, nil
	default:
		return "", apperror.NewValidation("unknown item quality %q", s)
	}
}

// Item is one tradable good the price snapshots reference.
type Item struct {
	ID      int     `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"not null" json:"name"`
	Slug    string  `gorm:"not null;uniqueIndex" json:"slug"`
	Quality Quality `gorm:"type:varchar(16);not null" json:"quality"`
	Type    string  `gorm:"type:varchar(32);not null" json:"type"`
}

// Slugify normalizes an item name into its lookup slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, "'", "")
	return strings.ReplaceAll(slug, " ", "-")
}
