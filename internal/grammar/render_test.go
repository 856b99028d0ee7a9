package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCode(t *testing.T) {
	binding := map[string]any{"metal": "copper", "blade": "short"}

	code, err := RenderCode("game:%blade%blade-%metal%", binding)
	require.NoError(t, err)
	assert.Equal(t, "game:shortblade-copper", code)
}

func TestRenderCodeUnresolved(t *testing.T) {
	_, err := RenderCode("game:%missing%", map[string]any{"metal": "copper"})
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.Token)
	assert.Equal(t, "code", unresolved.Context)
}

func TestRenderRecord(t *testing.T) {
	fields := map[string]any{
		"ingredients": map[string]any{"B": map[string]any{"type": "item"}},
		"output":      map[string]any{"quantity": 1.0},
	}
	binding := map[string]any{"metal": "copper", "qty": 4.0}

	format := `{%ingredients%,%output%,"metal":"%metal%","count":"%qty%"}`
	text, err := RenderRecord(format, fields, binding)
	require.NoError(t, err)
	assert.Equal(t,
		`{"ingredients":{"B":{"type":"item"}},"output":{"quantity":1},"metal":"copper","count":4}`,
		text, "numeric bindings drop their surrounding quotes")
}

func TestRenderRecordUnresolved(t *testing.T) {
	_, err := RenderRecord(`{"x":"%ghost%"}`, map[string]any{}, map[string]any{})
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "format", unresolved.Context)
}

func TestRenderRecordIgnoresBraceTokens(t *testing.T) {
	text, err := RenderRecord(`{"path":"item-{metal}"}`, map[string]any{}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, `{"path":"item-{metal}"}`, text)
}
