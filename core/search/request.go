package search

// Operator is the comparison applied by one criterion.
type Operator string

const (
	OpEqual          Operator = "EQUAL"
	OpNotEqual       Operator = "NOT_EQUAL"
	OpGreaterThan    Operator = "GREATER_THAN"
	OpLessThan       Operator = "LESS_THAN"
	OpGreaterOrEqual Operator = "GREATER_OR_EQUAL"
	OpLessOrEqual    Operator = "LESS_OR_EQUAL"
	OpLike           Operator = "LIKE"
	OpIn             Operator = "IN"
)

// GlobalOperator combines all criteria of a request. There is no nested
// grouping; the whole set is one conjunction or one disjunction.
type GlobalOperator string

const (
	And GlobalOperator = "AND"
	Or  GlobalOperator = "OR"
)

// Criterion filters one whitelisted field.
type Criterion struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
	// Values carries the finite value set for the IN operator.
	Values []string `json:"values,omitempty"`
}

// Request is a declarative search: a global operator plus an ordered list of
// criteria. An empty criteria list matches everything.
type Request struct {
	GlobalOperator GlobalOperator `json:"globalOperator"`
	Criteria       []Criterion    `json:"criteria"`
}
