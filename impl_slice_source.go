package connpager

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// SliceSource is an in-memory DataSource. Field values are read through
// Getters keyed by field reference, so association references work as long as
// a getter is registered for them.
//
// Supported values: signed and unsigned integers, floats, strings, bools and
// time.Time. Values of different kinds cannot be compared. nil sorts before
// everything else.
type SliceSource[T any] struct {
	staticSchema

	items   []T
	getters Getters[T]
}

// NewSliceSource creates a SliceSource over a copy of items.
func NewSliceSource[T any](items []T, getters Getters[T], schema Schema) *SliceSource[T] {
	return &SliceSource[T]{
		staticSchema: staticSchema{schema: schema},
		items:        slices.Clone(items),
		getters:      getters,
	}
}

// ExtractCursor implements CursorExtractor.
func (s *SliceSource[T]) ExtractCursor(node T, keys []string) (Cursor, error) {
	return s.getters.ExtractCursor(node, keys)
}

// Fetch implements DataSource.
func (s *SliceSource[T]) Fetch(ctx context.Context, q Query) ([]T, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	ret := make([]T, 0, len(s.items))
	for _, item := range s.items {
		ok, err := s.eval(q.Filter, item)
		if err != nil {
			return nil, fmt.Errorf("cannot apply filter: %w", err)
		}

		if ok {
			ret = append(ret, item)
		}
	}

	var sortErr error
	slices.SortStableFunc(ret, func(a, b T) int {
		c, err := s.compareItems(q.Order, a, b)
		if err != nil && sortErr == nil {
			sortErr = err
		}

		return c
	})
	if sortErr != nil {
		return nil, fmt.Errorf("cannot sort: %w", sortErr)
	}

	if q.Limit < len(ret) {
		ret = ret[:max(q.Limit, 0)]
	}

	return ret, nil
}

func (s *SliceSource[T]) compareItems(order NormalizedOrder, a, b T) (int, error) {
	for _, key := range order {
		va, err := s.getters.value(a, key.Field.String())
		if err != nil {
			return 0, err
		}

		vb, err := s.getters.value(b, key.Field.String())
		if err != nil {
			return 0, err
		}

		c, err := compareValues(va, vb)
		if err != nil {
			return 0, fmt.Errorf("field '%s': %w", key.Ref, err)
		}

		if c != 0 {
			if key.Direction == DirectionDESC {
				return -c, nil
			}

			return c, nil
		}
	}

	return 0, nil
}

func (s *SliceSource[T]) eval(p Predicate, item T) (bool, error) {
	switch v := p.(type) {
	case nil:
		return true, nil
	case And:
		for _, operand := range v {
			ok, err := s.eval(operand, item)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	case Or:
		for _, operand := range v {
			ok, err := s.eval(operand, item)
			if err != nil {
				return false, err
			}

			if ok {
				return true, nil
			}
		}

		return false, nil
	case Compare:
		value, err := s.getters.value(item, v.Field.String())
		if err != nil {
			return false, err
		}

		c, err := compareValues(value, v.Value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", v, err)
		}

		return v.Operator.holds(c), nil
	default:
		return false, fmt.Errorf("unsupported predicate %T", p)
	}
}

// compareValues returns -1, 0 or 1 as a is less than, equal to or greater
// than b.
func compareValues(a, b any) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		default:
			return 1, nil
		}
	}

	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}

		return ta.Compare(tb), nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(va) && isInt(vb):
		return cmp.Compare(va.Int(), vb.Int()), nil
	case isUint(va) && isUint(vb):
		return cmp.Compare(va.Uint(), vb.Uint()), nil
	case isInt(va) && isUint(vb):
		if va.Int() < 0 {
			return -1, nil
		}

		return cmp.Compare(uint64(va.Int()), vb.Uint()), nil
	case isUint(va) && isInt(vb):
		if vb.Int() < 0 {
			return 1, nil
		}

		return cmp.Compare(va.Uint(), uint64(vb.Int())), nil
	case isFloat(va) && isFloat(vb):
		return cmp.Compare(va.Float(), vb.Float()), nil
	case isFloat(va) && isInt(vb):
		return cmp.Compare(va.Float(), float64(vb.Int())), nil
	case isInt(va) && isFloat(vb):
		return cmp.Compare(float64(va.Int()), vb.Float()), nil
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return cmp.Compare(va.String(), vb.String()), nil
	case va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool:
		return compareBools(va.Bool(), vb.Bool()), nil
	default:
		return 0, fmt.Errorf("cannot compare %T with %T", a, b)
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

var (
	_ DataSource[any]      = (*SliceSource[any])(nil)
	_ CursorExtractor[any] = (*SliceSource[any])(nil)
)
