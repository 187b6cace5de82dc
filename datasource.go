package connpager

import "context"

// Query is a single bounded fetch issued against a DataSource.
type Query struct {
	// Filter restricts the fetched records. nil matches every record.
	Filter Predicate
	// Order must be honoured exactly.
	Order NormalizedOrder
	// Limit is a hard cap on the number of returned records.
	Limit int
}

// DataSource abstracts the storage the collection lives in. Implementations
// must be safe for concurrent use: page info probes may run in parallel.
//
// Cancellation, timeouts and retries are the data source's business; errors
// are returned to the caller unchanged apart from wrapping.
type DataSource[T any] interface {
	// Fetch returns at most q.Limit records matching q.Filter in q.Order.
	Fetch(ctx context.Context, q Query) ([]T, error)
	// PrimaryKeyFields returns the primary key of the collection.
	PrimaryKeyFields(ctx context.Context) ([]KeyField, error)
	// UniqueKeyGroups returns the groups of fields forming unique constraints.
	UniqueKeyGroups(ctx context.Context) ([][]string, error)
}

// loadSchema queries the uniqueness metadata of src.
func loadSchema[T any](ctx context.Context, src DataSource[T]) (Schema, error) {
	primaryKey, err := src.PrimaryKeyFields(ctx)
	if err != nil {
		return Schema{}, err
	}

	unique, err := src.UniqueKeyGroups(ctx)
	if err != nil {
		return Schema{}, err
	}

	return Schema{PrimaryKey: primaryKey, Unique: unique}, nil
}

// staticSchema implements the schema half of DataSource for sources whose
// uniqueness metadata is supplied by the caller.
type staticSchema struct {
	schema Schema
}

func (s staticSchema) PrimaryKeyFields(context.Context) ([]KeyField, error) {
	return s.schema.PrimaryKey, nil
}

func (s staticSchema) UniqueKeyGroups(context.Context) ([][]string, error) {
	return s.schema.Unique, nil
}
