package connpager

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// RawConnectionArgs is intended for API payloads. For proper code generation, inline it:
//
//	type MyFilter struct {
//	    Paging RawConnectionArgs `json:",inline"`
//	}
type RawConnectionArgs struct {
	// First - number of records to return after After.
	First *int `json:"first,omitempty"`
	// Last - number of records to return before Before.
	Last *int `json:"last,omitempty"`
	// After - cursor of the record the page starts after.
	After Cursor `json:"after,omitempty"`
	// Before - cursor of the record the page ends before.
	Before Cursor `json:"before,omitempty"`
	// Sort - list of "alias asc|desc" strings resolved via a ColumnMapping.
	Sort []string `json:"sort,omitempty"`
}

// Decode converts RawConnectionArgs into *CursorPager. Sort aliases are
// resolved via columnMapping; without Sort, defaultSort is used.
//
// Unlike Paginate, Decode is lenient with page sizes: without First and Last
// it asks for the first DefaultLimit records, and values above MaxLimit are
// clamped.
func (a RawConnectionArgs) Decode(columnMapping ColumnMapping, defaultSort ...OrderBy) (*CursorPager, error) {
	sort := Orderings(defaultSort)
	if len(a.Sort) > 0 {
		var err error
		sort, err = ParseSort(a.Sort, columnMapping)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPaginationArguments, err)
		}
	}

	pager := NewCursorPager().
		WithSubstitutedSort(sort...).
		WithAfter(a.After).
		WithBefore(a.Before)

	switch {
	case a.First == nil && a.Last == nil:
		pager = pager.WithFirst(DefaultLimit)
	case a.First != nil && a.Last != nil:
		// Left to validate.
		pager.first, pager.last = a.First, a.Last
	case a.First != nil:
		pager = pager.WithFirst(clampLimit(*a.First))
	default:
		pager = pager.WithLast(clampLimit(*a.Last))
	}

	return pager, nil
}

// CursorPager holds the arguments of a connection pagination call.
type CursorPager struct {
	sort   Orderings
	after  Cursor
	before Cursor
	first  *int
	last   *int
	filter Predicate
}

func NewCursorPager() *CursorPager {
	return new(CursorPager)
}

// WithFirst requests the first n records after the "after" cursor, or from
// the start of the dataset.
func (c *CursorPager) WithFirst(n int) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.first = &n

	return c
}

// WithLast requests the last n records before the "before" cursor, or up to
// the end of the dataset.
func (c *CursorPager) WithLast(n int) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.last = &n

	return c
}

// WithAfter sets the cursor the page starts after. nil clears it.
func (c *CursorPager) WithAfter(cursor Cursor) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.after = cursor

	return c
}

// WithBefore sets the cursor the page ends before. nil clears it.
func (c *CursorPager) WithBefore(cursor Cursor) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.before = cursor

	return c
}

// WithFilter sets the caller's own filter. Cursor conditions are ANDed with
// it, never substituted for it.
func (c *CursorPager) WithFilter(filter Predicate) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.filter = filter

	return c
}

// WithSubstitutedSort resets previous orderings and applies the provided ones.
func (c *CursorPager) WithSubstitutedSort(orderBy ...OrderBy) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.sort = nil

	return c.WithSort(orderBy...)
}

// WithSort appends sort orderings without overwriting existing ones.
// Order is preserved as if calling:
//
//	OrderBy(o1).ThenBy(o2).ThenBy(o3)...
//
// A column met twice keeps its last position and direction.
func (c *CursorPager) WithSort(orderBy ...OrderBy) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.sort = c.sort.dedup(orderBy...)

	return c
}

// GetSort returns the orderings as requested, before normalization.
func (c *CursorPager) GetSort() Orderings {
	if c == nil {
		return nil
	}

	return c.sort
}

// GetFilter returns the caller's filter.
func (c *CursorPager) GetFilter() Predicate {
	if c == nil {
		return nil
	}

	return c.filter
}

// GetLimit returns the requested page size and whether the page is taken
// from the end ("last").
func (c *CursorPager) GetLimit() (int, bool) {
	switch {
	case c == nil:
		return 0, false
	case c.first != nil:
		return *c.first, false
	case c.last != nil:
		return *c.last, true
	default:
		return 0, false
	}
}

func (c *CursorPager) validate() error {
	if c == nil {
		return fmt.Errorf("cursor pager is nil")
	}

	err := c.sort.validate()
	if err != nil {
		return err
	}

	if c.after != nil && c.before != nil {
		return fmt.Errorf("having both 'before' and 'after' is not supported")
	}

	if c.first != nil && c.last != nil {
		return fmt.Errorf("having both 'first' and 'last' is not supported")
	}

	if c.first == nil && c.last == nil {
		return fmt.Errorf("one of 'first' and 'last' must be provided")
	}

	if limit, _ := c.GetLimit(); limit < 0 {
		return fmt.Errorf("'first' and 'last' cannot be < 0")
	}

	return validatePredicate(c.filter)
}

// Paginate fetches the page described by pager from src.
//
// Arguments are validated before any I/O. The order is then made total with
// the primary key of src (see Normalize), and one lookahead fetch retrieves
// the page. The returned connection resolves its page flags lazily.
func Paginate[T any](ctx context.Context, src DataSource[T], pager *CursorPager) (*Connection[T], error) {
	err := pager.validate()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w: %w", ErrInvalidPaginationArguments, err)
	}

	schema, err := loadSchema(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: load schema: %w", err)
	}

	order, err := Normalize(pager.sort, schema)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	limit, backward := pager.GetLimit()
	query := pageQuery{
		order:    order,
		after:    pager.after.Clone(),
		before:   pager.before.Clone(),
		limit:    limit,
		backward: backward,
		filter:   pager.filter,
	}

	zerolog.Ctx(ctx).Debug().
		Strs("order", order.ToSQLSlice()).
		Bool("after", query.after != nil).
		Bool("before", query.before != nil).
		Msg("paginating")

	p, err := fetchPage(ctx, src, query)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	return &Connection[T]{
		Nodes:        p.nodes,
		CursorKeys:   order.Keys(),
		src:          src,
		query:        query,
		hasMoreNodes: p.hasMoreNodes,
	}, nil
}
