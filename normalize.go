package connpager

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// KeyField is a primary key field as reported by the schema. Name is the
// reference used in orderings and cursors, Column is the underlying storage
// column. Appended primary key fields are sorted by Column.
type KeyField struct {
	Name   string
	Column string
}

// Schema holds the uniqueness metadata of the paginated collection.
type Schema struct {
	// PrimaryKey fields, in any order.
	PrimaryKey []KeyField
	// Unique lists groups of field names forming unique constraints. The
	// primary key need not be repeated here.
	Unique [][]string
}

// groups returns every unique key group, primary key first.
func (s Schema) groups() [][]string {
	ret := make([][]string, 0, len(s.Unique)+1)
	if len(s.PrimaryKey) > 0 {
		ret = append(ret, lo.Map(s.PrimaryKey, func(f KeyField, _ int) string { return f.Name }))
	}

	for _, group := range s.Unique {
		if len(group) > 0 {
			ret = append(ret, group)
		}
	}

	return ret
}

// sortedPrimaryKey returns the primary key sorted by storage column name, so
// that appended fields do not depend on declaration order.
func (s Schema) sortedPrimaryKey() []KeyField {
	ret := slices.Clone(s.PrimaryKey)
	slices.SortStableFunc(ret, func(a, b KeyField) int {
		return cmp.Compare(a.sortName(), b.sortName())
	})

	return ret
}

func (f KeyField) sortName() string {
	return lo.Ternary(f.Column != "", f.Column, f.Name)
}

// SortKey is one resolved element of a NormalizedOrder.
type SortKey struct {
	// Ref is the field reference as written by the caller, used as cursor key.
	Ref       string
	Field     Field
	Direction Direction
}

// NormalizedOrder is an ordering whose field tuple uniquely identifies a
// record.
type NormalizedOrder []SortKey

// Normalize makes order total by appending the primary key fields it lacks,
// each ascending, unless order already covers a unique key group.
func Normalize(order Orderings, schema Schema) (NormalizedOrder, error) {
	err := order.validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPaginationArguments, err)
	}

	groups := schema.groups()
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no primary key or unique constraint", ErrInvalidSchema)
	}

	ret := lo.Map(order, func(o OrderBy, _ int) SortKey {
		return SortKey{Ref: o.Column, Field: ParseField(o.Column), Direction: o.Direction}
	})

	coversUnique := slices.ContainsFunc(groups, func(group []string) bool {
		return lo.EveryBy(group, order.HasColumn)
	})
	if coversUnique {
		return ret, nil
	}

	if len(schema.PrimaryKey) == 0 {
		return nil, fmt.Errorf("%w: order covers no unique constraint and there is no primary key to append", ErrInvalidSchema)
	}

	for _, pk := range schema.sortedPrimaryKey() {
		if order.HasColumn(pk.Name) {
			continue
		}

		ret = append(ret, SortKey{Ref: pk.Name, Field: ParseField(pk.Name), Direction: DirectionASC})
	}

	return ret, nil
}

// Reverse returns a copy with every direction flipped.
func (o NormalizedOrder) Reverse() NormalizedOrder {
	return lo.Map(o, func(key SortKey, _ int) SortKey {
		key.Direction = key.Direction.Reverse()
		return key
	})
}

// Keys returns the cursor keys, in order.
func (o NormalizedOrder) Keys() []string {
	return lo.Map(o, func(key SortKey, _ int) string { return key.Ref })
}

// ToSQLSlice converts the order to a slice of strings in the form
// "<order_column> <order_direction>" suitable for SQL query builders.
//
// Example: for [{"a", ASC}, {"$b.c$", DESC}] returns ["a ASC", "b.c DESC"].
func (o NormalizedOrder) ToSQLSlice() []string {
	ret := make([]string, 0, len(o))
	for _, key := range o {
		ret = append(ret, fmt.Sprintf("%s %s", key.Field.column(), key.Direction))
	}

	return ret
}

// ToSQL converts the order to a single string
// "<order_column_1> <order_direction_1>, <order_column_2> <order_direction_2>".
//
// Usage:
//
//	query := fmt.Sprintf("SELECT * FROM table ORDER BY %s", order.ToSQL())
func (o NormalizedOrder) ToSQL() string {
	return strings.Join(o.ToSQLSlice(), ", ")
}
