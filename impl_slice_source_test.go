package connpager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_compareValues(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		a, b    any
		want    int
		wantErr bool
	}{
		{"ints", 1, 2, -1, false},
		{"mixed width ints", int64(3), int8(3), 0, false},
		{"uints", uint(5), uint32(4), 1, false},
		{"int and uint", -1, uint(0), -1, false},
		{"uint and int", uint(7), 7, 0, false},
		{"uint and negative int", uint(0), -3, 1, false},
		{"floats", 1.5, float32(1.5), 0, false},
		{"int and float from json", 3, 3.0, 0, false},
		{"float and int", 2.5, 3, -1, false},
		{"strings", "Alan", "Bernard", -1, false},
		{"bools", true, false, 1, false},
		{"times", now, now.Add(time.Second), -1, false},
		{"nil first", nil, 1, -1, false},
		{"nil last", "a", nil, 1, false},
		{"nils", nil, nil, 0, false},
		{"string and int", "1", 1, 0, true},
		{"time and string", now, "2024-01-01", 0, true},
		{"unsupported", []int{1}, []int{1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compareValues(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_SliceSource_Fetch(t *testing.T) {
	ctx := context.Background()
	src := newTUserSource()

	order, err := Normalize(Orderings{{Column: "birth_date", Direction: DirectionDESC}}, tUserSchema)
	require.NoError(t, err)

	got, err := src.Fetch(ctx, Query{
		Filter: Or{Eq("first_name", "Cedric"), Eq("first_name", "Dimitri")},
		Order:  order,
		Limit:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 3}, ids(got))

	got, err = src.Fetch(ctx, Query{Filter: NotEq("last_name", "LastName"), Order: order, Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_SliceSource_Fetch_Errors(t *testing.T) {
	src := newTUserSource()
	order := NormalizedOrder{{Ref: "id", Field: Field{Name: "id"}, Direction: DirectionASC}}

	_, err := src.Fetch(context.Background(), Query{Filter: Eq("unknown", 1), Order: order, Limit: 1})
	require.Error(t, err)

	_, err = src.Fetch(context.Background(), Query{Filter: Eq("first_name", 1), Order: order, Limit: 1})
	require.Error(t, err)

	_, err = src.Fetch(context.Background(), Query{
		Order: NormalizedOrder{{Ref: "unknown", Field: Field{Name: "unknown"}, Direction: DirectionASC}},
		Limit: 1,
	})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Fetch(ctx, Query{Order: order, Limit: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func Test_SliceSource_IsolatedFromCaller(t *testing.T) {
	items := []tUser{{ID: 1}, {ID: 2}}
	src := NewSliceSource(items, tUserGetters, tUserSchema)
	items[0].ID = 100

	got, err := src.Fetch(context.Background(), Query{
		Order: NormalizedOrder{{Ref: "id", Field: Field{Name: "id"}, Direction: DirectionASC}},
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(got))
}
