package connpager

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _tracer = otel.Tracer("github.com/Alp4ka/connpager")

// pageQuery describes one bounded fetch. backward is true when paginating
// with "last".
type pageQuery struct {
	order    NormalizedOrder
	after    Cursor
	before   Cursor
	limit    int
	backward bool
	filter   Predicate
	probe    bool
}

// page is a fetched page. hasMoreNodes is true when the data source returned
// the lookahead row.
type page[T any] struct {
	nodes        []T
	hasMoreNodes bool
}

// fetchPage issues a single lookahead fetch.
//
// When paginating backward the order is reversed so the data source reads
// away from the boundary, then the rows are reversed back. With a limit of
// N the data source is asked for N+1 rows; getting them means more rows exist
// and the extra one is dropped: the last row when paginating forward, the
// first one when paginating backward.
//
//	forward,  limit 2, rows [a, b, c]          → [a, b], more
//	backward, limit 2, rows [c, b, a] → [a, b, c] → [b, c], more
//
// A limit of 0 is a probe: it returns no nodes and only tells whether a row
// exists beyond the boundary.
func fetchPage[T any](ctx context.Context, src DataSource[T], q pageQuery) (page[T], error) {
	if q.after != nil && q.before != nil {
		return page[T]{}, fmt.Errorf("%w: having both 'before' and 'after' is not supported", ErrInvalidPaginationArguments)
	}

	if q.limit < 0 {
		return page[T]{}, fmt.Errorf("%w: limit cannot be < 0", ErrInvalidPaginationArguments)
	}

	predicates := []Predicate{q.filter}
	if q.after != nil {
		p, err := BuildCursorPredicate(q.order, q.after, CursorAfter)
		if err != nil {
			return page[T]{}, fmt.Errorf("'after': %w", err)
		}

		predicates = append(predicates, p)
	}

	if q.before != nil {
		p, err := BuildCursorPredicate(q.order, q.before, CursorBefore)
		if err != nil {
			return page[T]{}, fmt.Errorf("'before': %w", err)
		}

		predicates = append(predicates, p)
	}

	ctx, span := _tracer.Start(ctx, "connpager.fetch", trace.WithAttributes(
		attribute.Int("connpager.limit", q.limit),
		attribute.Bool("connpager.backward", q.backward),
		attribute.Bool("connpager.probe", q.probe),
	))
	defer span.End()

	rows, err := src.Fetch(ctx, Query{
		Filter: Conjoin(predicates...),
		Order:  lo.Ternary(q.backward, q.order.Reverse(), q.order),
		Limit:  q.limit + 1,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return page[T]{}, fmt.Errorf("fetch page: %w", err)
	}

	if q.backward {
		slices.Reverse(rows)
	}

	hasMoreNodes := len(rows) > q.limit
	if hasMoreNodes {
		rows = lo.Ternary(q.backward, rows[len(rows)-q.limit:], rows[:q.limit])
	}

	zerolog.Ctx(ctx).Debug().
		Int("limit", q.limit).
		Bool("backward", q.backward).
		Bool("probe", q.probe).
		Int("nodes", len(rows)).
		Bool("has_more_nodes", hasMoreNodes).
		Msg("fetched page")

	return page[T]{nodes: rows, hasMoreNodes: hasMoreNodes}, nil
}
