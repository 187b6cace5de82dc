package connpager

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ToSQL renders a predicate as an SQL condition with "?" placeholders and the
// list of values for them. A nil predicate renders as "TRUE".
//
// Usage:
//
//	where, args, err := connpager.ToSQL(p)
//	query := fmt.Sprintf("SELECT * FROM table WHERE %s", where)
func ToSQL(p Predicate) (string, []any, error) {
	if p == nil {
		return "TRUE", nil, nil
	}

	sqlizer, err := toSqlizer(p, nil)
	if err != nil {
		return "", nil, err
	}

	return sqlizer.ToSql()
}

// toSqlizer converts the predicate tree into squirrel expressions. Columns go
// through mapping first, association references fall back to "rel.field".
//
// Example:
//
//	Or{Gt("id", 10), And{Eq("id", 10), Lt("name", "abc")}}
//
// Result:
//
//	("(id > ? OR (id = ? AND name < ?))", [10, 10, "abc"])
func toSqlizer(p Predicate, mapping ColumnMapping) (sq.Sqlizer, error) {
	switch v := p.(type) {
	case And:
		parts, err := toSqlizers(v, mapping)
		if err != nil {
			return nil, err
		}

		return sq.And(parts), nil
	case Or:
		parts, err := toSqlizers(v, mapping)
		if err != nil {
			return nil, err
		}

		return sq.Or(parts), nil
	case Compare:
		column, err := mappedColumn(v.Field, mapping)
		if err != nil {
			return nil, err
		}

		return compareToSqlizer(column, v.Operator, v.Value)
	default:
		return nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

func toSqlizers(predicates []Predicate, mapping ColumnMapping) ([]sq.Sqlizer, error) {
	ret := make([]sq.Sqlizer, 0, len(predicates))
	for _, p := range predicates {
		sqlizer, err := toSqlizer(p, mapping)
		if err != nil {
			return nil, err
		}

		ret = append(ret, sqlizer)
	}

	return ret, nil
}

func compareToSqlizer(column string, op Operator, value any) (sq.Sqlizer, error) {
	switch op {
	case OperatorEq:
		return sq.Eq{column: value}, nil
	case OperatorNE:
		return sq.NotEq{column: value}, nil
	case OperatorGT:
		return sq.Gt{column: value}, nil
	case OperatorGTE:
		return sq.GtOrEq{column: value}, nil
	case OperatorLT:
		return sq.Lt{column: value}, nil
	case OperatorLTE:
		return sq.LtOrEq{column: value}, nil
	default:
		return nil, fmt.Errorf("invalid operator '%s'", op)
	}
}

// mappedColumn resolves a field to a physical column name and checks it for
// forbidden symbols, since squirrel writes column names verbatim.
func mappedColumn(f Field, mapping ColumnMapping) (string, error) {
	column, ok := mapping[f.String()]
	if !ok {
		column = f.column()
	}

	err := validateColumnName(column)
	if err != nil {
		return "", err
	}

	return column, nil
}
