package search

import (
	"strings"

	"gorm.io/gorm"
)

// Apply interprets the predicate as gorm query conditions. Criteria combine
// under the request's single global operator.
func (p *Predicate) Apply(db *gorm.DB) *gorm.DB {
	if p == nil || len(p.Leaves) == 0 {
		return db
	}

	cond := db.Session(&gorm.Session{NewDB: true})
	for i, leaf := range p.Leaves {
		sql, args := leaf.sql()
		if i == 0 || p.Global == And {
			cond = cond.Where(sql, args...)
		} else {
			cond = cond.Or(sql, args...)
		}
	}
	return db.Where(cond)
}

func (l Leaf) sql() (string, []any) {
	switch l.Op {
	case OpEqual:
		return l.Column + " = ?", []any{l.Value}
	case OpNotEqual:
		return l.Column + " <> ?", []any{l.Value}
	case OpGreaterThan:
		return l.Column + " > ?", []any{l.Value}
	case OpLessThan:
		return l.Column + " < ?", []any{l.Value}
	case OpGreaterOrEqual:
		return l.Column + " >= ?", []any{l.Value}
	case OpLessOrEqual:
		return l.Column + " <= ?", []any{l.Value}
	case OpLike:
		pattern := "%" + strings.ToLower(l.Value.(string)) + "%"
		return "LOWER(" + l.Column + ") LIKE ?", []any{pattern}
	case OpIn:
		return l.Column + " IN ?", []any{l.Values}
	default:
		// Compile rejects unknown operators; this keeps Apply total.
		return "1 = 0", nil
	}
}
