package connpager

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db, mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db, mock, nil
}

type tUser struct {
	ID               int
	ExternalID       string
	CompositeUnique1 string
	CompositeUnique2 string
	FirstName        string
	LastName         string
	BirthDate        time.Time
}

func date(s string) time.Time {
	ret, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return ret
}

// tUsers in insertion order. Sorted by (first_name, last_name, id):
// Alan(5), Bernard(4), Cedric Anderson(3), Cedric Brown(2), Dimitri(1), Dimitri(6).
var tUsers = []tUser{
	{ID: 5, ExternalID: "A", CompositeUnique1: "A", CompositeUnique2: "1", FirstName: "Alan", LastName: "LastName", BirthDate: date("2000-01-01")},
	{ID: 4, ExternalID: "B", CompositeUnique1: "A", CompositeUnique2: "2", FirstName: "Bernard", LastName: "LastName", BirthDate: date("1970-01-01")},
	{ID: 3, ExternalID: "C", CompositeUnique1: "A", CompositeUnique2: "3", FirstName: "Cedric", LastName: "Anderson", BirthDate: date("1980-01-01")},
	{ID: 2, ExternalID: "D", CompositeUnique1: "A", CompositeUnique2: "4", FirstName: "Cedric", LastName: "Brown", BirthDate: date("1960-01-01")},
	{ID: 6, ExternalID: "E", CompositeUnique1: "A", CompositeUnique2: "5", FirstName: "Dimitri", LastName: "LastName", BirthDate: date("1990-01-01")},
	{ID: 1, ExternalID: "F", CompositeUnique1: "A", CompositeUnique2: "6", FirstName: "Dimitri", LastName: "LastName", BirthDate: date("2010-01-01")},
}

var tUserGetters = Getters[tUser]{
	"id":                func(u tUser) any { return u.ID },
	"external_id":       func(u tUser) any { return u.ExternalID },
	"composite_unique1": func(u tUser) any { return u.CompositeUnique1 },
	"composite_unique2": func(u tUser) any { return u.CompositeUnique2 },
	"first_name":        func(u tUser) any { return u.FirstName },
	"last_name":         func(u tUser) any { return u.LastName },
	"birth_date":        func(u tUser) any { return u.BirthDate },
}

var tUserSchema = Schema{
	PrimaryKey: []KeyField{{Name: "id", Column: "id"}},
	Unique: [][]string{
		{"external_id"},
		{"composite_unique1", "composite_unique2"},
	},
}

func newTUserSource() *SliceSource[tUser] {
	return NewSliceSource(tUsers, tUserGetters, tUserSchema)
}

func ids(users []tUser) []int {
	ret := make([]int, 0, len(users))
	for _, u := range users {
		ret = append(ret, u.ID)
	}

	return ret
}

func byName() []OrderBy {
	return []OrderBy{
		{Column: "first_name", Direction: DirectionASC},
		{Column: "last_name", Direction: DirectionASC},
	}
}

// tCountingSource counts fetches issued against the wrapped source.
type tCountingSource[T any] struct {
	DataSource[T]
	fetches atomic.Int32
}

func (s *tCountingSource[T]) Fetch(ctx context.Context, q Query) ([]T, error) {
	s.fetches.Add(1)

	return s.DataSource.Fetch(ctx, q)
}
