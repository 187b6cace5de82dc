package connpager

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// GORMSource is a DataSource over a gorm scope. Everything configured on the
// scope (model, joins, conditions, transaction, logger) is passed through to
// every fetch, including page info probes.
//
// Field references are looked up in the schema of T by column or Go field
// name and rendered qualified with the current table. Association references
// "$Relation.column$" are rendered as "Relation"."column", which matches the
// alias gorm gives to Joins("Relation").
type GORMSource[T any] struct {
	db         *gorm.DB
	schema     *schema.Schema
	primaryKey []KeyField
	unique     [][]string
}

// NewGORMSource parses the schema of T with the naming strategy of db.
func NewGORMSource[T any](db *gorm.DB) (*GORMSource[T], error) {
	stmt := &gorm.Statement{DB: db}
	err := stmt.Parse(new(T))
	if err != nil {
		return nil, fmt.Errorf("cannot parse model schema: %w", err)
	}

	return &GORMSource[T]{
		db:         db,
		schema:     stmt.Schema,
		primaryKey: gormPrimaryKey(stmt.Schema),
		unique:     gormUniqueKeyGroups(stmt.Schema),
	}, nil
}

func gormPrimaryKey(s *schema.Schema) []KeyField {
	return lo.Map(s.PrimaryFields, func(f *schema.Field, _ int) KeyField {
		return KeyField{Name: f.DBName, Column: f.DBName}
	})
}

// gormUniqueKeyGroups collects unique indexes (composite ones kept together)
// and fields tagged "unique".
func gormUniqueKeyGroups(s *schema.Schema) [][]string {
	var ret [][]string

	indexes := s.ParseIndexes()
	names := lo.Keys(indexes)
	slices.Sort(names)

	for _, name := range names {
		index := indexes[name]
		if index.Class != "UNIQUE" {
			continue
		}

		group := lo.FilterMap(index.Fields, func(option schema.IndexOption, _ int) (string, bool) {
			if option.Field == nil {
				return "", false
			}

			return option.DBName, option.DBName != ""
		})
		if len(group) == len(index.Fields) && len(group) > 0 {
			ret = append(ret, group)
		}
	}

	// ParseIndexes marks fields of single column unique indexes as Unique,
	// those are already listed.
	for _, field := range s.Fields {
		if !field.Unique || field.DBName == "" {
			continue
		}

		group := []string{field.DBName}
		if !slices.ContainsFunc(ret, func(g []string) bool { return slices.Equal(g, group) }) {
			ret = append(ret, group)
		}
	}

	return ret
}

// PrimaryKeyFields implements DataSource.
func (s *GORMSource[T]) PrimaryKeyFields(context.Context) ([]KeyField, error) {
	return slices.Clone(s.primaryKey), nil
}

// UniqueKeyGroups implements DataSource.
func (s *GORMSource[T]) UniqueKeyGroups(context.Context) ([][]string, error) {
	return slices.Clone(s.unique), nil
}

// Fetch implements DataSource. Orderings already present on the scope are
// replaced; conditions are kept, grouped and ANDed with q.Filter.
func (s *GORMSource[T]) Fetch(ctx context.Context, q Query) ([]T, error) {
	where, err := toGORMExpression(q.Filter, s.column)
	if err != nil {
		return nil, fmt.Errorf("cannot build filter: %w", err)
	}

	orderBy, err := toGORMOrderBy(q.Order, s.column)
	if err != nil {
		return nil, fmt.Errorf("cannot build ordering: %w", err)
	}

	if len(orderBy.Columns) > 0 {
		orderBy.Columns[0].Reorder = true
	}

	tx := s.db.WithContext(ctx)
	if where != nil {
		groupConditions(tx.Statement)
		tx = tx.Clauses(clause.Where{Exprs: []clause.Expression{where}})
	}

	tx = tx.Clauses(orderBy)

	var rows []T
	err = tx.Limit(q.Limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Trace().Int("rows", len(rows)).Msg("gorm fetch")

	return rows, nil
}

// groupConditions wraps the WHERE conditions already on stmt into a single
// group, so that an Or of the scope cannot bind with conditions added later.
func groupConditions(stmt *gorm.Statement) {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return
	}

	where, ok := c.Expression.(clause.Where)
	if !ok || len(where.Exprs) == 0 {
		return
	}

	c.Expression = clause.Where{Exprs: []clause.Expression{clause.AndConditions{Exprs: where.Exprs}}}
	stmt.Clauses["WHERE"] = c
}

// ExtractCursor implements CursorExtractor by reading fields of the model
// through the gorm schema. Association references are not supported; use
// Getters for them.
func (s *GORMSource[T]) ExtractCursor(node T, keys []string) (Cursor, error) {
	value := reflect.ValueOf(node)
	if value.Kind() == reflect.Ptr && value.IsNil() {
		return nil, fmt.Errorf("%w: nil node", ErrMalformedCursor)
	}

	ret := make(Cursor, len(keys))
	for _, key := range keys {
		f := ParseField(key)
		if f.IsAssociation() {
			return nil, fmt.Errorf("%w: cannot extract association key '%s' from the model", ErrMalformedCursor, key)
		}

		field := s.schema.LookUpField(f.Name)
		if field == nil {
			return nil, fmt.Errorf("%w: unknown field '%s'", ErrMalformedCursor, key)
		}

		ret[key], _ = field.ValueOf(context.Background(), value)
	}

	return ret, nil
}

func (s *GORMSource[T]) column(f Field) (clause.Column, error) {
	if f.IsAssociation() {
		return plainColumn(f)
	}

	field := s.schema.LookUpField(f.Name)
	if field == nil || field.DBName == "" {
		return clause.Column{}, fmt.Errorf("unknown field '%s' of '%s'", f.Name, s.schema.Name)
	}

	return clause.Column{Table: clause.CurrentTable, Name: field.DBName}, nil
}

var (
	_ DataSource[any]      = (*GORMSource[any])(nil)
	_ CursorExtractor[any] = (*GORMSource[any])(nil)
)
