package connpager

import "fmt"

type (
	// Predicate is a boolean expression tree over record fields. The variants
	// are And, Or and Compare. A nil Predicate matches every record.
	Predicate interface {
		isPredicate()
	}

	// And holds when every operand holds. An empty And holds.
	And []Predicate

	// Or holds when at least one operand holds. An empty Or does not hold.
	Or []Predicate

	// Compare is the value of Operator(Field, Value).
	Compare struct {
		Field    Field
		Operator Operator
		Value    any
	}
)

func (And) isPredicate()     {}
func (Or) isPredicate()      {}
func (Compare) isPredicate() {}

// Eq builds "ref = value". ref may be an association reference.
func Eq(ref string, value any) Compare { return newCompare(ref, OperatorEq, value) }

// NotEq builds "ref <> value".
func NotEq(ref string, value any) Compare { return newCompare(ref, OperatorNE, value) }

// Gt builds "ref > value".
func Gt(ref string, value any) Compare { return newCompare(ref, OperatorGT, value) }

// GtOrEq builds "ref >= value".
func GtOrEq(ref string, value any) Compare { return newCompare(ref, OperatorGTE, value) }

// Lt builds "ref < value".
func Lt(ref string, value any) Compare { return newCompare(ref, OperatorLT, value) }

// LtOrEq builds "ref <= value".
func LtOrEq(ref string, value any) Compare { return newCompare(ref, OperatorLTE, value) }

func newCompare(ref string, op Operator, value any) Compare {
	return Compare{Field: ParseField(ref), Operator: op, Value: value}
}

// Conjoin ANDs the non-nil predicates together. It returns nil when nothing
// is left and the predicate itself when only one is left.
func Conjoin(predicates ...Predicate) Predicate {
	ret := make(And, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			ret = append(ret, p)
		}
	}

	switch len(ret) {
	case 0:
		return nil
	case 1:
		return ret[0]
	default:
		return ret
	}
}

// String renders the predicate for logs and error messages.
func (c Compare) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

func validatePredicate(p Predicate) error {
	switch v := p.(type) {
	case nil:
		return nil
	case And:
		return validateOperands(v)
	case Or:
		return validateOperands(v)
	case Compare:
		if !v.Operator.Valid() {
			return fmt.Errorf("invalid operator '%s'", v.Operator)
		}

		return validateColumnName(v.Field.column())
	default:
		return fmt.Errorf("unsupported predicate %T", p)
	}
}

func validateOperands(operands []Predicate) error {
	for _, operand := range operands {
		if operand == nil {
			return fmt.Errorf("nil operand")
		}

		if err := validatePredicate(operand); err != nil {
			return err
		}
	}

	return nil
}
