package connpager

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// columnResolver maps a field reference to the column gorm should quote.
type columnResolver func(Field) (clause.Column, error)

// plainColumn is the default resolver: "$rel.field$" becomes "rel"."field",
// anything else the bare quoted column.
func plainColumn(f Field) (clause.Column, error) {
	return clause.Column{Table: f.Association, Name: f.Name}, nil
}

// toGORMExpression converts the predicate tree into a clause.Expression.
//
// IMPORTANT: values are bound as placeholders; columns are quoted by gorm.
//
// Example:
//
//	Or{Gt("id", 5), And{Eq("id", 5), Gt("name", "abc")}}
//
// Result (mysql):
//
//	(`id` > ? OR (`id` = ? AND `name` > ?))
func toGORMExpression(p Predicate, resolve columnResolver) (clause.Expression, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case And:
		exprs, err := toGORMExpressions(v, resolve)
		if err != nil {
			return nil, err
		}

		switch len(exprs) {
		case 0:
			return clause.Expr{SQL: "TRUE"}, nil
		case 1:
			return exprs[0], nil
		default:
			return clause.And(exprs...), nil
		}
	case Or:
		exprs, err := toGORMExpressions(v, resolve)
		if err != nil {
			return nil, err
		}

		// A single-element OR is emitted by gorm as a bare " OR " join, so
		// unwrap it.
		switch len(exprs) {
		case 0:
			return clause.Expr{SQL: "FALSE"}, nil
		case 1:
			return exprs[0], nil
		default:
			return clause.Or(exprs...), nil
		}
	case Compare:
		column, err := resolve(v.Field)
		if err != nil {
			return nil, err
		}

		return compareToGORMExpression(column, v.Operator, v.Value)
	default:
		return nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

func toGORMExpressions(predicates []Predicate, resolve columnResolver) ([]clause.Expression, error) {
	ret := make([]clause.Expression, 0, len(predicates))
	for _, p := range predicates {
		expr, err := toGORMExpression(p, resolve)
		if err != nil {
			return nil, err
		}

		if expr != nil {
			ret = append(ret, expr)
		}
	}

	return ret, nil
}

func compareToGORMExpression(column clause.Column, op Operator, value any) (clause.Expression, error) {
	switch op {
	case OperatorEq:
		return clause.Eq{Column: column, Value: value}, nil
	case OperatorNE:
		return clause.Neq{Column: column, Value: value}, nil
	case OperatorGT:
		return clause.Gt{Column: column, Value: value}, nil
	case OperatorGTE:
		return clause.Gte{Column: column, Value: value}, nil
	case OperatorLT:
		return clause.Lt{Column: column, Value: value}, nil
	case OperatorLTE:
		return clause.Lte{Column: column, Value: value}, nil
	default:
		return nil, fmt.Errorf("invalid operator '%s'", op)
	}
}

// toGORMOrderBy converts the order into an ORDER BY clause.
func toGORMOrderBy(order NormalizedOrder, resolve columnResolver) (clause.OrderBy, error) {
	columns := make([]clause.OrderByColumn, 0, len(order))
	for _, key := range order {
		column, err := resolve(key.Field)
		if err != nil {
			return clause.OrderBy{}, err
		}

		columns = append(columns, clause.OrderByColumn{
			Column: column,
			Desc:   key.Direction == DirectionDESC,
		})
	}

	return clause.OrderBy{Columns: columns}, nil
}
