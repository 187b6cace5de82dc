package connpager

import (
	"fmt"
	"maps"
)

// Cursor is a record's sort-key tuple keyed by field reference. It must hold
// a value for every field of the normalized order.
type Cursor map[string]any

// CursorSide selects which side of a cursor a predicate keeps.
type CursorSide int

const (
	CursorAfter CursorSide = iota
	CursorBefore
)

func (s CursorSide) String() string {
	if s == CursorBefore {
		return "before"
	}

	return "after"
}

// BuildCursorPredicate builds a predicate that holds for records located
// strictly after (or before) the cursor under order.
//
// The predicate is built from the inside out. For an order (a, b, c) and
// side=after with all fields ASC:
//
//	c > C
//	b > B OR (b = B AND c > C)
//	a > A OR (a = A AND (b > B OR (b = B AND c > C)))
//
// Returns ErrMalformedCursor if the cursor lacks any field of order.
func BuildCursorPredicate(order NormalizedOrder, cursor Cursor, side CursorSide) (Predicate, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: empty ordering list", ErrInvalidPaginationArguments)
	}

	var predicate Predicate
	for i := len(order) - 1; i >= 0; i-- {
		key := order[i]

		value, ok := cursor[key.Ref]
		if !ok {
			return nil, fmt.Errorf("%w: cursor is missing key '%s'", ErrMalformedCursor, key.Ref)
		}

		strict := Compare{Field: key.Field, Operator: key.Direction.ForOperator(side), Value: value}
		if predicate == nil {
			predicate = strict
			continue
		}

		predicate = Or{
			strict,
			And{
				Compare{Field: key.Field, Operator: OperatorEq, Value: value},
				predicate,
			},
		}
	}

	return predicate, nil
}

// CursorExtractor builds the cursor of a node for the given keys.
type CursorExtractor[T any] interface {
	ExtractCursor(node T, keys []string) (Cursor, error)
}

// Getters maps field references to value getters of a node. List the fields
// pagination is performed on.
// Example:
//
//	connpager.Getters[models.User]{
//		"id":         func(u models.User) any { return u.ID },
//		"first_name": func(u models.User) any { return u.FirstName },
//	}
type Getters[T any] map[string]func(T) any

// ExtractCursor implements CursorExtractor.
func (g Getters[T]) ExtractCursor(node T, keys []string) (Cursor, error) {
	ret := make(Cursor, len(keys))
	for _, key := range keys {
		getter, ok := g[key]
		if !ok {
			return nil, fmt.Errorf("%w: cannot find getter for key '%s'", ErrMalformedCursor, key)
		}

		ret[key] = getter(node)
	}

	return ret, nil
}

// value implements the lookup used by SliceSource.
func (g Getters[T]) value(node T, ref string) (any, error) {
	getter, ok := g[ref]
	if !ok {
		return nil, fmt.Errorf("cannot find getter for field '%s'", ref)
	}

	return getter(node), nil
}

// CursorOf returns the cursor of node under the given keys (see
// Connection.CursorKeys).
func CursorOf[T any](extractor CursorExtractor[T], node T, keys []string) (Cursor, error) {
	return extractor.ExtractCursor(node, keys)
}

// Clone returns a shallow copy of the cursor.
func (c Cursor) Clone() Cursor {
	return maps.Clone(c)
}
