package search

import (
	"strings"
	"time"

	"goldwatch/core/utils"
)

// Match interprets the predicate over an in-memory row keyed by column name.
// It implements the same semantics as Apply for backends without a query
// engine, and for tests.
func (p *Predicate) Match(row map[string]any) bool {
	if p == nil || len(p.Leaves) == 0 {
		return true
	}

	for _, leaf := range p.Leaves {
		ok := leaf.match(row[leaf.Column])
		if p.Global == And && !ok {
			return false
		}
		if p.Global == Or && ok {
			return true
		}
	}
	return p.Global == And
}

func (l Leaf) match(raw any) bool {
	switch l.Op {
	case OpEqual:
		return equal(raw, l.Value)
	case OpNotEqual:
		return !equal(raw, l.Value)
	case OpGreaterThan:
		return compare(raw, l.Value) > 0
	case OpLessThan:
		return compare(raw, l.Value) < 0
	case OpGreaterOrEqual:
		return compare(raw, l.Value) >= 0
	case OpLessOrEqual:
		return compare(raw, l.Value) <= 0
	case OpLike:
		return strings.Contains(strings.ToLower(utils.ToString(raw)), strings.ToLower(l.Value.(string)))
	case OpIn:
		for _, v := range l.Values {
			if equal(raw, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equal(raw any, want any) bool {
	switch w := want.(type) {
	case float64:
		return utils.ToFloat64(raw) == w
	case time.Time:
		return utils.ToTime(raw).Equal(w)
	default:
		return utils.ToString(raw) == utils.ToString(w)
	}
}

func compare(raw any, want any) int {
	switch w := want.(type) {
	case time.Time:
		t := utils.ToTime(raw)
		switch {
		case t.Before(w):
			return -1
		case t.After(w):
			return 1
		default:
			return 0
		}
	default:
		f, wf := utils.ToFloat64(raw), utils.ToFloat64(w)
		switch {
		case f < wf:
			return -1
		case f > wf:
			return 1
		default:
			return 0
		}
	}
}
