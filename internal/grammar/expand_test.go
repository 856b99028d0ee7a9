package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func tuples(values ...any) [][]any {
	out := make([][]any, len(values))
	for i, v := range values {
		out[i] = []any{v}
	}
	return out
}

func drain(p *Permutations) []map[string]any {
	var out []map[string]any
	for {
		binding, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, binding)
	}
}

func TestPermutationsOrder(t *testing.T) {
	p := NewPermutations([]KeyGroup{
		{Names: []string{"metal"}, Values: tuples("copper", "tin")},
		{Names: []string{"blade"}, Values: tuples("short", "long")},
	})

	require.Equal(t, 4, p.Count())

	// First-declared key varies slowest.
	got := drain(p)
	want := []map[string]any{
		{"metal": "copper", "blade": "short"},
		{"metal": "copper", "blade": "long"},
		{"metal": "tin", "blade": "short"},
		{"metal": "tin", "blade": "long"},
	}
	assert.Equal(t, want, got)
}

func TestPermutationsGroupedLockstep(t *testing.T) {
	p := NewPermutations([]KeyGroup{
		{Names: []string{"type", "damage"}, Values: [][]any{
			{"blade", 4.0},
			{"handle", 1.0},
		}},
		{Names: []string{"metal"}, Values: tuples("copper")},
	})

	require.Equal(t, 2, p.Count())
	got := drain(p)
	want := []map[string]any{
		{"type": "blade", "damage": 4.0, "metal": "copper"},
		{"type": "handle", "damage": 1.0, "metal": "copper"},
	}
	assert.Equal(t, want, got)
}

func TestPermutationsEdgeCases(t *testing.T) {
	t.Run("no groups yields one empty binding", func(t *testing.T) {
		p := NewPermutations(nil)
		assert.Equal(t, 1, p.Count())
		got := drain(p)
		require.Len(t, got, 1)
		assert.Empty(t, got[0])
	})

	t.Run("empty value list yields nothing", func(t *testing.T) {
		p := NewPermutations([]KeyGroup{
			{Names: []string{"metal"}, Values: nil},
			{Names: []string{"blade"}, Values: tuples("short")},
		})
		assert.Empty(t, drain(p))
	})
}

func TestPermutationsRestart(t *testing.T) {
	p := NewPermutations([]KeyGroup{
		{Names: []string{"n"}, Values: tuples(1.0, 2.0)},
	})
	first := drain(p)
	p.Restart()
	second := drain(p)
	assert.Equal(t, first, second)
}

func TestPermutationsCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sizes := rapid.SliceOfN(rapid.IntRange(1, 4), 1, 4).Draw(t, "sizes")

		var groups []KeyGroup
		want := 1
		for gi, size := range sizes {
			values := make([][]any, size)
			for vi := range values {
				values[vi] = []any{float64(vi)}
			}
			groups = append(groups, KeyGroup{
				Names:  []string{string(rune('a' + gi))},
				Values: values,
			})
			want *= size
		}

		p := NewPermutations(groups)
		assert.Equal(t, want, p.Count())
		assert.Len(t, drain(p), want)
	})
}
