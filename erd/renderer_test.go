package erd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	return &Graph{
		Models: []Model{
			{Name: "User", BgColor: "#e3fafc", MainColor: "#0b7285", Fields: []Field{
				{Name: "id", Type: "integer", Color: "#0b7285"},
				{Name: "name", Type: "text", Color: "#0b7285"},
			}},
			{Name: "Post", BgColor: "#e3fafc", MainColor: "#0b7285", Fields: []Field{
				{Name: "id", Type: "integer", Color: "#0b7285"},
				{Name: "tags", Type: "map[string]<T>", Color: "#0b7285"},
				{Name: "author", Type: "ForeignKey", Color: "#0b7285"},
			}},
		},
		Relations: []Relation{{Model: "Post", TargetModel: "User", Field: "author", TargetField: "id"}},
		FontSize:  14,
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(sampleGraph())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "digraph models {")
	assert.Contains(t, text, "fontsize=14")
	assert.Contains(t, text, `"User" [label=<`)
	assert.Contains(t, text, `BGCOLOR="#e3fafc"`)
	assert.Contains(t, text, `<FONT COLOR="#0b7285"><B>name</B></FONT>`)
	assert.Contains(t, text, "map[string]&lt;T&gt;")
	assert.Contains(t, text, `"Post":"author" -> "User":"id";`)
}

func TestRenderDeterministic(t *testing.T) {
	a, err := NewRenderer().Render(sampleGraph())
	require.NoError(t, err)
	b, err := NewRenderer().Render(sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderEmpty(t *testing.T) {
	out, err := NewRenderer().Render(&Graph{FontSize: 12})
	require.NoError(t, err)
	assert.Contains(t, string(out), "digraph models {")
	assert.NotContains(t, string(out), "->")

	_, err = NewRenderer().Render(nil)
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"User"`, quote("User"))
	assert.Equal(t, `"a\"b"`, quote(`a"b`))
	assert.Equal(t, `"a\\b"`, quote(`a\b`))
}
