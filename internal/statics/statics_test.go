package statics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() Table {
	return Table{
		"metal":  []any{"copper", "tin", "iron"},
		"wood":   "oak",
		"pair":   []any{[]any{"a", 1.0}, []any{"b", 2.0}},
		"code":   "game:%type%",
		"format": "@codefmt",
		"allow":  []any{"game:*"},
	}
}

func TestValues(t *testing.T) {
	table := testTable()

	t.Run("bare reference yields the list", func(t *testing.T) {
		got, err := table.Values("@metal")
		require.NoError(t, err)
		assert.Equal(t, []any{"copper", "tin", "iron"}, got)
	})

	t.Run("plain string is a single value", func(t *testing.T) {
		got, err := table.Values("copper")
		require.NoError(t, err)
		assert.Equal(t, []any{"copper"}, got)
	})

	t.Run("scalar entry wraps into a list", func(t *testing.T) {
		got, err := table.Values("@wood")
		require.NoError(t, err)
		assert.Equal(t, []any{"oak"}, got)
	})

	t.Run("references splice inside literal lists", func(t *testing.T) {
		got, err := table.Values([]any{"gold", "@metal", "silver"})
		require.NoError(t, err)
		assert.Equal(t, []any{"gold", "copper", "tin", "iron", "silver"}, got)
	})

	t.Run("unknown reference fails", func(t *testing.T) {
		_, err := table.Values("@nope")
		var unknown *UnknownReferenceError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nope", unknown.Name)

		_, err = table.Values([]any{"@nope"})
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("non-string non-list source fails", func(t *testing.T) {
		_, err := table.Values(42)
		assert.Error(t, err)
	})
}

func TestScalar(t *testing.T) {
	table := testTable()

	assert.Equal(t, "oak", table.Scalar("@wood"))
	assert.Equal(t, "copper", table.Scalar("@metal"), "list entries resolve to their first element")
	assert.Equal(t, "plain", table.Scalar("plain"))
	assert.Equal(t, "@unknown", table.Scalar("@unknown"), "unknown references pass through")
}

func TestStringList(t *testing.T) {
	table := testTable()

	got := table.StringList([]any{"game:*", "@metal", "@unknown", 7})
	assert.Equal(t, []string{"game:*", "copper", "tin", "iron"}, got)
}

func TestReservedFields(t *testing.T) {
	table := testTable()

	code, ok := table.String(FieldCode)
	require.True(t, ok)
	assert.Equal(t, "game:%type%", code)

	_, ok = table.String("missing")
	assert.False(t, ok)

	allow, ok := table.List(FieldAllow)
	require.True(t, ok)
	assert.Equal(t, []any{"game:*"}, allow)

	_, ok = table.List(FieldCode)
	assert.False(t, ok, "string entry is not a list")
}
