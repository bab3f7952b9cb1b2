package models

// Operator is the comparison applied between an event payload field and a
// condition value.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not_equals"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorContains    Operator = "contains"
)

// IsValid reports whether the operator is one of the known comparisons.
// Evaluation of unknown operators still succeeds permissively (see the
// conditions package); validity is a create-time concern only.
func (o Operator) IsValid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorGreaterThan,
		OperatorLessThan, OperatorContains:
		return true
	default:
		return false
	}
}

// Condition compares one event payload field against a fixed value.
type Condition struct {
	Field    string   `json:"field"    validate:"required"`
	Operator Operator `json:"operator" validate:"required"`
	Value    any      `json:"value"`
}
