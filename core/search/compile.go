package search

import (
	"strconv"
	"time"

	"goldwatch/core/apperror"
)

// Leaf is one compiled criterion: a column, an operator and coerced values.
// Coerced values are float64 for number fields, time.Time for time fields and
// string for string/enum fields.
type Leaf struct {
	Column string
	Op     Operator
	Value  any
	Values []any
}

// Predicate is the compiled, storage-agnostic form of a Request. Backends
// interpret it however suits them: Apply builds a gorm query, Match evaluates
// rows in memory. An empty predicate is always true.
type Predicate struct {
	Global GlobalOperator
	Leaves []Leaf
}

// Compile validates a request against the entity schema and coerces every
// criterion value. All failures are ValidationErrors raised before any I/O.
func Compile(req Request, schema Schema) (*Predicate, error) {
	global := req.GlobalOperator
	switch global {
	case And, Or:
	case "":
		global = And
	default:
		return nil, apperror.NewValidation("unknown global operator %q", req.GlobalOperator)
	}

	leaves := make([]Leaf, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		leaf, err := compileCriterion(c, schema)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}

	return &Predicate{Global: global, Leaves: leaves}, nil
}

func compileCriterion(c Criterion, schema Schema) (Leaf, error) {
	field, ok := schema[c.Field]
	if !ok {
		return Leaf{}, apperror.NewValidation("field %q is not searchable", c.Field)
	}

	if err := checkOperator(c, field); err != nil {
		return Leaf{}, err
	}

	leaf := Leaf{Column: field.Column, Op: c.Operator}

	if c.Operator == OpIn {
		if len(c.Values) == 0 {
			return Leaf{}, apperror.NewValidation("IN criterion on field %q requires a non-empty value set", c.Field)
		}
		leaf.Values = make([]any, 0, len(c.Values))
		for _, raw := range c.Values {
			v, err := coerce(raw, c.Field, field)
			if err != nil {
				return Leaf{}, err
			}
			leaf.Values = append(leaf.Values, v)
		}
		return leaf, nil
	}

	if c.Value == "" {
		return Leaf{}, apperror.NewValidation("criterion on field %q has no value", c.Field)
	}
	v, err := coerce(c.Value, c.Field, field)
	if err != nil {
		return Leaf{}, err
	}
	leaf.Value = v
	return leaf, nil
}

func checkOperator(c Criterion, field Field) error {
	switch c.Operator {
	case OpEqual, OpNotEqual, OpIn:
		return nil
	case OpLike:
		if field.Type != FieldString {
			return apperror.NewValidation("operator LIKE is not applicable to field %q", c.Field)
		}
		return nil
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		if field.Type != FieldNumber && field.Type != FieldTime {
			return apperror.NewValidation("operator %s requires a numeric or time field, got %q", c.Operator, c.Field)
		}
		return nil
	default:
		return apperror.NewValidation("unknown operator %q", c.Operator)
	}
}

func coerce(raw, name string, field Field) (any, error) {
	switch field.Type {
	case FieldNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperror.NewValidation("field %q expects a numeric value, got %q", name, raw)
		}
		return f, nil
	case FieldTime:
		t, err := parseTimestamp(raw)
		if err != nil {
			return nil, apperror.NewValidation("field %q expects a timestamp, got %q", name, raw)
		}
		return t, nil
	case FieldEnum:
		v, err := field.Parse(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return raw, nil
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
