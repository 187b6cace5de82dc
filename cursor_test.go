package connpager

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func Test_BuildCursorPredicate(t *testing.T) {
	abc := NormalizedOrder{
		{Ref: "a", Field: Field{Name: "a"}, Direction: DirectionASC},
		{Ref: "b", Field: Field{Name: "b"}, Direction: DirectionDESC},
		{Ref: "id", Field: Field{Name: "id"}, Direction: DirectionASC},
	}
	cursor := Cursor{"a": 1, "b": "x", "id": 7}

	tests := []struct {
		name     string
		order    NormalizedOrder
		side     CursorSide
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "single field after",
			order:    abc[2:],
			side:     CursorAfter,
			wantSQL:  "id > ?",
			wantArgs: []any{7},
		},
		{
			name:     "single field before",
			order:    abc[2:],
			side:     CursorBefore,
			wantSQL:  "id < ?",
			wantArgs: []any{7},
		},
		{
			name:     "mixed directions after",
			order:    abc,
			side:     CursorAfter,
			wantSQL:  "(a > ? OR (a = ? AND (b < ? OR (b = ? AND id > ?))))",
			wantArgs: []any{1, 1, "x", "x", 7},
		},
		{
			name:     "mixed directions before",
			order:    abc,
			side:     CursorBefore,
			wantSQL:  "(a < ? OR (a = ? AND (b > ? OR (b = ? AND id < ?))))",
			wantArgs: []any{1, 1, "x", "x", 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildCursorPredicate(tt.order, cursor, tt.side)
			require.NoError(t, err)

			sql, args, err := ToSQL(p)
			require.NoError(t, err)
			require.Equal(t, tt.wantSQL, sql)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_BuildCursorPredicate_Tree(t *testing.T) {
	order := NormalizedOrder{
		{Ref: "$author.name$", Field: Field{Association: "author", Name: "name"}, Direction: DirectionASC},
		{Ref: "id", Field: Field{Name: "id"}, Direction: DirectionASC},
	}

	got, err := BuildCursorPredicate(order, Cursor{"$author.name$": "Ann", "id": 3}, CursorAfter)
	require.NoError(t, err)

	want := Or{
		Compare{Field: Field{Association: "author", Name: "name"}, Operator: OperatorGT, Value: "Ann"},
		And{
			Compare{Field: Field{Association: "author", Name: "name"}, Operator: OperatorEq, Value: "Ann"},
			Compare{Field: Field{Name: "id"}, Operator: OperatorGT, Value: 3},
		},
	}
	if diff := cmp.Diff(Predicate(want), got); diff != "" {
		t.Errorf("unexpected predicate (-want +got):\n%s", diff)
	}
}

func Test_BuildCursorPredicate_Errors(t *testing.T) {
	order := NormalizedOrder{
		{Ref: "name", Field: Field{Name: "name"}, Direction: DirectionASC},
		{Ref: "id", Field: Field{Name: "id"}, Direction: DirectionASC},
	}

	tests := []struct {
		name    string
		order   NormalizedOrder
		cursor  Cursor
		wantErr error
	}{
		{"missing key", order, Cursor{"name": "x"}, ErrMalformedCursor},
		{"empty cursor", order, Cursor{}, ErrMalformedCursor},
		{"empty order", nil, Cursor{"id": 1}, ErrInvalidPaginationArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCursorPredicate(tt.order, tt.cursor, CursorAfter)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Presence is what matters, not the value.
	_, err := BuildCursorPredicate(order, Cursor{"name": nil, "id": 1}, CursorAfter)
	require.NoError(t, err)
}

func Test_Getters_ExtractCursor(t *testing.T) {
	u := tUsers[2]

	got, err := tUserGetters.ExtractCursor(u, []string{"first_name", "last_name", "id"})
	require.NoError(t, err)
	require.Equal(t, Cursor{"first_name": "Cedric", "last_name": "Anderson", "id": 3}, got)

	_, err = tUserGetters.ExtractCursor(u, []string{"unknown"})
	require.ErrorIs(t, err, ErrMalformedCursor)
}

func Test_Cursor_Clone(t *testing.T) {
	c := Cursor{"id": 1}
	clone := c.Clone()
	clone["id"] = 2

	require.Equal(t, 1, c["id"])
	require.Nil(t, Cursor(nil).Clone())
}

func Test_CursorSide_String(t *testing.T) {
	require.Equal(t, "after", CursorAfter.String())
	require.Equal(t, "before", CursorBefore.String())
}
