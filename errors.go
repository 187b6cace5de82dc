package connpager

import "errors"

var (
	// ErrInvalidPaginationArguments is returned before any fetch when the
	// combination of order, first/last and after/before cannot be paginated.
	ErrInvalidPaginationArguments = errors.New("invalid pagination arguments")

	// ErrMalformedCursor is returned when a cursor lacks a value for a field of
	// the normalized order, or when a cursor cannot be extracted from a node.
	ErrMalformedCursor = errors.New("malformed cursor")

	// ErrInvalidSchema is returned when the data source reports no primary key
	// and no unique constraint able to make the order total.
	ErrInvalidSchema = errors.New("invalid schema")
)
