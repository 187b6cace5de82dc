package connpager

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// Reverse returns the opposite direction.
func (o Direction) Reverse() Direction {
	switch o {
	case DirectionASC:
		return DirectionDESC
	case DirectionDESC:
		return DirectionASC
	default:
		panic(fmt.Errorf("cannot reverse direction '%s'", o))
	}
}

// ForOperator returns the strict comparison operator selecting rows located on
// the given side of a cursor:
//
//	after:  ASC → ">", DESC → "<"
//	before: ASC → "<", DESC → ">"
func (o Direction) ForOperator(side CursorSide) Operator {
	var op Operator
	switch o {
	case DirectionASC:
		op = OperatorGT
	case DirectionDESC:
		op = OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}

	if side == CursorBefore {
		op = op.Mirror()
	}

	return op
}

type (
	Orderings []OrderBy
	OrderBy   struct {
		// Column is a field reference: a plain field name or an association
		// reference of the form "$association.field$".
		Column    string
		Direction Direction
	}

	ColumnAlias = string

	// ColumnMapping maps external column aliases to fully qualified column names.
	// Use it when bare column names could cause an "ambiguous column name" error.
	// Key is an external alias, value is an internal column name.
	ColumnMapping = map[ColumnAlias]string
)

var _availableColumnNameSymbols = append([]rune("_.'`\"$"), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	return validateColumnName(o.Column)
}

// validateColumnName guards against SQL injection by restricting allowed
// characters in column names.
func validateColumnName(column string) error {
	if column == "" {
		return fmt.Errorf("empty column name")
	}

	if !lo.Every(_availableColumnNameSymbols, []rune(column)) {
		return fmt.Errorf("column name contains forbidden symbols '%s'", column)
	}

	return nil
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// HasColumn returns true if the ordering references the column.
func (o Orderings) HasColumn(column string) bool {
	return slices.ContainsFunc(o, func(ordering OrderBy) bool {
		return ordering.Column == column
	})
}

// dedup keeps the last occurrence of every column, preserving the relative
// order of what remains:
//
//	OrderBy(o1).ThenBy(o2).ThenBy(o1') → (o2, o1')
func (o Orderings) dedup(orderBy ...OrderBy) Orderings {
	for _, ordering := range orderBy {
		idx := slices.IndexFunc(o, func(processed OrderBy) bool {
			return processed.Column == ordering.Column
		})

		// Remove previous occurrence (avoid duplication).
		if idx != -1 {
			o = slices.Delete(o, idx, idx+1)
		}

		o = append(o, ordering)
	}

	return o
}

// ParseSort builds Orderings from a list of strings in the format
// "column asc|desc". Column aliases are resolved via ColumnMapping.
// Returns an error if an alias is not found in the mapping.
func ParseSort(stringsOrderings []string, columnMapping ColumnMapping) (Orderings, error) {
	ret := make([]OrderBy, 0, len(stringsOrderings))
	aliases := lo.Keys(columnMapping)
	slices.Sort(aliases)

	for _, stringOrdering := range stringsOrderings {
		cutStringOrdering := strings.Fields(stringOrdering)
		if len(cutStringOrdering) != 2 {
			return nil, fmt.Errorf("invalid ordering string format '%s'", stringOrdering)
		}

		columnAlias := cutStringOrdering[0]
		direction := Direction(strings.ToUpper(cutStringOrdering[1]))
		if !direction.Valid() {
			return nil, fmt.Errorf("invalid ordering direction '%s'", cutStringOrdering[1])
		}

		columnName := columnMapping[columnAlias]
		if columnName == "" {
			return nil, fmt.Errorf("invalid column alias. closest: '%s'", closestAlias(columnAlias, aliases))
		}

		ret = append(ret, OrderBy{
			Column:    columnName,
			Direction: direction,
		})
	}

	return ret, nil
}

func closestAlias(input ColumnAlias, dataSet []ColumnAlias) ColumnAlias {
	minDist := math.MaxInt
	closest := ""

	for _, dataSetAlias := range dataSet {
		dist := fuzzy.LevenshteinDistance(dataSetAlias, input)
		if dist < minDist {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}
