package connpager

import "fmt"

// Operator defines a comparison operator applied to a field and a value.
type Operator string

const (
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorEq  Operator = "="
	OperatorNE  Operator = "<>"
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorGT, OperatorLT, OperatorEq, OperatorNE, OperatorGTE, OperatorLTE:
		return true
	default:
		return false
	}
}

// Mirror returns the strict operator selecting the other side of a value.
func (o Operator) Mirror() Operator {
	switch o {
	case OperatorGT:
		return OperatorLT
	case OperatorLT:
		return OperatorGT
	default:
		panic(fmt.Errorf("cannot mirror operator '%s'", o))
	}
}

// holds reports whether the operator is satisfied by the result of comparing
// the left operand with the right one (-1, 0 or 1).
func (o Operator) holds(cmp int) bool {
	switch o {
	case OperatorGT:
		return cmp > 0
	case OperatorLT:
		return cmp < 0
	case OperatorEq:
		return cmp == 0
	case OperatorNE:
		return cmp != 0
	case OperatorGTE:
		return cmp >= 0
	case OperatorLTE:
		return cmp <= 0
	default:
		return false
	}
}
