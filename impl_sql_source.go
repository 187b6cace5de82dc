package connpager

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
)

// RowScanner reads one record from the current row.
type RowScanner[T any] func(rows *sql.Rows) (T, error)

// SQLSource is a DataSource over database/sql. Queries are built with
// squirrel on top of a base select the caller prepares (table, columns,
// joins, own conditions).
//
// squirrel joins Where parts with AND as written. A raw string condition
// containing OR must be parenthesized, or passed as sq.Or / sq.And:
//
//	Where("(c = 1 OR d = 2)")
//	Where(sq.Or{sq.Eq{"c": 1}, sq.Eq{"d": 2}})
type SQLSource[T any] struct {
	staticSchema

	db          sq.StdSqlCtx
	base        sq.SelectBuilder
	scan        RowScanner[T]
	mapping     ColumnMapping
	placeholder sq.PlaceholderFormat
}

// SQLSourceOption configures a SQLSource.
type SQLSourceOption func(*sqlSourceOptions)

type sqlSourceOptions struct {
	mapping     ColumnMapping
	placeholder sq.PlaceholderFormat
}

// WithColumnMapping maps field references to qualified column names, e.g.
// {"id": "u.id", "$author.name$": "a.name"}. Unmapped references are used
// verbatim, association references as "association.field".
func WithColumnMapping(mapping ColumnMapping) SQLSourceOption {
	return func(o *sqlSourceOptions) {
		o.mapping = mapping
	}
}

// WithPlaceholder sets the placeholder format, e.g. squirrel.Dollar for
// PostgreSQL. Defaults to squirrel.Question.
func WithPlaceholder(placeholder sq.PlaceholderFormat) SQLSourceOption {
	return func(o *sqlSourceOptions) {
		o.placeholder = placeholder
	}
}

// NewSQLSource creates a SQLSource. schema describes the primary key and
// unique constraints of the selected records.
//
// Usage:
//
//	src := connpager.NewSQLSource(db,
//		squirrel.Select("id", "first_name", "last_name").From("users"),
//		func(rows *sql.Rows) (User, error) {
//			var u User
//			return u, rows.Scan(&u.ID, &u.FirstName, &u.LastName)
//		},
//		connpager.Schema{PrimaryKey: []connpager.KeyField{{Name: "id", Column: "id"}}},
//		connpager.WithPlaceholder(squirrel.Dollar),
//	)
func NewSQLSource[T any](
	db sq.StdSqlCtx,
	base sq.SelectBuilder,
	scan RowScanner[T],
	schema Schema,
	opts ...SQLSourceOption,
) *SQLSource[T] {
	options := sqlSourceOptions{placeholder: sq.Question}
	for _, opt := range opts {
		opt(&options)
	}

	return &SQLSource[T]{
		staticSchema: staticSchema{schema: schema},
		db:           db,
		base:         base,
		scan:         scan,
		mapping:      options.mapping,
		placeholder:  options.placeholder,
	}
}

// Fetch implements DataSource.
func (s *SQLSource[T]) Fetch(ctx context.Context, q Query) ([]T, error) {
	builder, err := s.build(q)
	if err != nil {
		return nil, err
	}

	rows, err := builder.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]T, 0, q.Limit)
	for rows.Next() {
		node, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("cannot scan row: %w", err)
		}

		ret = append(ret, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Trace().Int("rows", len(ret)).Msg("sql fetch")

	return ret, nil
}

// build adds the filter, the ordering and the limit to the base select.
func (s *SQLSource[T]) build(q Query) (sq.SelectBuilder, error) {
	builder := s.base.PlaceholderFormat(s.placeholder)

	if q.Filter != nil {
		where, err := toSqlizer(q.Filter, s.mapping)
		if err != nil {
			return builder, fmt.Errorf("cannot build filter: %w", err)
		}

		builder = builder.Where(where)
	}

	orderBys := make([]string, 0, len(q.Order))
	for _, key := range q.Order {
		column, err := mappedColumn(key.Field, s.mapping)
		if err != nil {
			return builder, fmt.Errorf("cannot build ordering: %w", err)
		}

		orderBys = append(orderBys, fmt.Sprintf("%s %s", column, key.Direction))
	}

	return builder.OrderBy(orderBys...).Limit(uint64(q.Limit)), nil
}

var _ DataSource[any] = (*SQLSource[any])(nil)
