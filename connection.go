package connpager

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Connection is a page of nodes in the style of the connection pattern:
// https://relay.dev/graphql/connections.htm
//
// HasNextPage and HasPreviousPage are resolved lazily. Each may issue one
// probe fetch that checks for a single row beyond the requested window; the
// result is not cached.
type Connection[T any] struct {
	// Nodes of the page, always in the requested order.
	Nodes []T
	// CursorKeys are the field references a cursor of this connection must
	// hold, i.e. the normalized order.
	CursorKeys []string

	src          DataSource[T]
	query        pageQuery
	hasMoreNodes bool
}

// PageInfo holds the connection flags and, when requested, the boundary
// cursors of the page.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     Cursor `json:"startCursor,omitempty"`
	EndCursor       Cursor `json:"endCursor,omitempty"`
}

// Edge is a node together with its cursor.
type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor Cursor `json:"cursor"`
}

// HasNextPage reports whether records exist after the page.
//
//  1. Paginating with "first": the lookahead row of the primary fetch answers.
//  2. Paginating with "last" and "before": probe for a row after "before".
//  3. Otherwise false.
func (c *Connection[T]) HasNextPage(ctx context.Context) (bool, error) {
	if !c.query.backward {
		return c.hasMoreNodes, nil
	}

	if c.query.before == nil {
		return false, nil
	}

	zerolog.Ctx(ctx).Debug().Msg("probing for next page")

	probe, err := fetchPage(ctx, c.src, pageQuery{
		order:  c.query.order,
		after:  c.query.before,
		filter: c.query.filter,
		probe:  true,
	})
	if err != nil {
		return false, err
	}

	return probe.hasMoreNodes, nil
}

// HasPreviousPage reports whether records exist before the page.
//
//  1. Paginating with "last": the lookahead row of the primary fetch answers.
//  2. Paginating with "first" and "after": probe for a row before "after".
//  3. Otherwise false.
func (c *Connection[T]) HasPreviousPage(ctx context.Context) (bool, error) {
	if c.query.backward {
		return c.hasMoreNodes, nil
	}

	if c.query.after == nil {
		return false, nil
	}

	zerolog.Ctx(ctx).Debug().Msg("probing for previous page")

	probe, err := fetchPage(ctx, c.src, pageQuery{
		order:    c.query.order,
		before:   c.query.after,
		backward: true,
		filter:   c.query.filter,
		probe:    true,
	})
	if err != nil {
		return false, err
	}

	return probe.hasMoreNodes, nil
}

// PageInfo resolves HasNextPage and HasPreviousPage concurrently.
func (c *Connection[T]) PageInfo(ctx context.Context) (PageInfo, error) {
	var info PageInfo

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info.HasNextPage, err = c.HasNextPage(gCtx)
		return err
	})
	g.Go(func() (err error) {
		info.HasPreviousPage, err = c.HasPreviousPage(gCtx)
		return err
	})

	err := g.Wait()
	if err != nil {
		return PageInfo{}, err
	}

	return info, nil
}

// PageInfoWithCursors is PageInfo with StartCursor and EndCursor built from
// the first and last nodes. Both cursors are nil on an empty page.
func (c *Connection[T]) PageInfoWithCursors(ctx context.Context, extractor CursorExtractor[T]) (PageInfo, error) {
	info, err := c.PageInfo(ctx)
	if err != nil {
		return PageInfo{}, err
	}

	if len(c.Nodes) == 0 {
		return info, nil
	}

	info.StartCursor, err = extractor.ExtractCursor(c.Nodes[0], c.CursorKeys)
	if err != nil {
		return PageInfo{}, err
	}

	info.EndCursor, err = extractor.ExtractCursor(lo.LastOrEmpty(c.Nodes), c.CursorKeys)
	if err != nil {
		return PageInfo{}, err
	}

	return info, nil
}

// Edges pairs every node with its cursor.
func (c *Connection[T]) Edges(extractor CursorExtractor[T]) ([]Edge[T], error) {
	ret := make([]Edge[T], 0, len(c.Nodes))
	for _, node := range c.Nodes {
		cursor, err := extractor.ExtractCursor(node, c.CursorKeys)
		if err != nil {
			return nil, err
		}

		ret = append(ret, Edge[T]{Node: node, Cursor: cursor})
	}

	return ret, nil
}
