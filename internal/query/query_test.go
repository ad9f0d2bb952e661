package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseOperator(t *testing.T) {
	cases := map[string]Operator{
		"":                       OpEquals,
		"eq":                     OpEquals,
		"IN":                     OpInList,
		"NIN":                    OpNotInList,
		"null":                   OpIsNull,
		"NOT_NULL":               OpIsNotNull,
		"GTE":                    OpGreaterThanEquals,
		"LESS_THAN_EQUALS_TO":    OpLessThanEquals,
		"GREATER_THAN_EQUALS_TO": OpGreaterThanEquals,
		"LIKE":                   OpLike,
	}
	for in, want := range cases {
		got, err := ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOperator("CONTAINS")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestCoerce(t *testing.T) {
	v, err := Coerce(FieldTypeNumber, OpEquals, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = Coerce(FieldTypeNumber, OpLessThan, "4.5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	v, err = Coerce("text", OpEquals, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = Coerce(FieldTypeNumber, OpInList, []interface{}{"1", 2.5})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), 2.5}, v)

	v, err = Coerce("text", OpIsNull, "ignored")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Coerce(FieldTypeBoolean, OpEquals, "maybe")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFilterBSON(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var f Filter
		assert.Equal(t, bson.D{}, f.BSON())
	})

	t.Run("empty in list matches nothing", func(t *testing.T) {
		var f Filter
		f.Add("uuid", In{})
		assert.Equal(t, bson.D{{Key: "uuid", Value: bson.D{{Key: "$in", Value: []interface{}{}}}}}, f.BSON())
	})

	t.Run("merge keeps both clauses on a shared field", func(t *testing.T) {
		var rls, base Filter
		rls.Add("owner", Equals{Value: "u1"})
		base.Add("status", Equals{Value: "open"})
		base.Add("owner", Equals{Value: "u2"})
		rls.Merge(base)

		assert.Equal(t, 3, rls.Len())
		assert.True(t, rls.Has("status"))
		assert.Equal(t, bson.D{
			{Key: "status", Value: "open"},
			{Key: "$and", Value: bson.A{
				bson.D{{Key: "owner", Value: "u1"}},
				bson.D{{Key: "owner", Value: "u2"}},
			}},
		}, rls.BSON())
	})

	t.Run("clauses returns a copy", func(t *testing.T) {
		var f Filter
		f.Add("a", IsNull{})
		c := f.Clauses()
		c[0].Field = "b"
		assert.True(t, f.Has("a"))
	})
}

func TestSearchPredicate(t *testing.T) {
	p, err := SearchPredicate(FieldTypeNumber, "7")
	require.NoError(t, err)
	assert.Equal(t, Equals{Value: int64(7)}, p)

	p, err = SearchPredicate("text", "a.b")
	require.NoError(t, err)
	assert.Equal(t, Regex{Pattern: `a\.b`, CaseInsensitive: true}, p)
}
