package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUpdate(t *testing.T) {
	doc := NewDocument()
	doc.Add(&Element{ID: "status", Kind: KindText})

	assert.True(t, doc.SetText("status", "ready"))
	assert.False(t, doc.SetText("missing", "ready"))

	el, ok := doc.Get("status")
	require.True(t, ok)
	assert.Equal(t, "ready", el.Text)

	// Get returns a copy
	el.Text = "changed"
	again, _ := doc.Get("status")
	assert.Equal(t, "ready", again.Text)
}

func TestReplaceChildrenReindexes(t *testing.T) {
	doc := NewDocument()
	doc.Add(&Element{ID: "list", Kind: KindContainer})

	require.True(t, doc.ReplaceChildren("list", &Element{ID: "a", Kind: KindText}))
	assert.True(t, doc.Has("a"))

	require.True(t, doc.ReplaceChildren("list", &Element{ID: "b", Kind: KindText}))
	assert.False(t, doc.Has("a"))
	assert.True(t, doc.Has("b"))

	list, _ := doc.Get("list")
	require.Len(t, list.Children, 1)
	assert.Equal(t, "b", list.Children[0].ID)
}

func TestLocalize(t *testing.T) {
	doc := NewDocument()
	doc.Add(&Element{
		ID:   "list",
		Kind: KindContainer,
		Children: []*Element{
			{Kind: KindButton, Text: "select_mount", I18nKey: "select_mount"},
			{Kind: KindText, Text: "untranslated", I18nKey: "unknown_key"},
			{Kind: KindText, Text: "plain"},
		},
	})

	n := doc.Localize(func(key string) (string, bool) {
		if key == "select_mount" {
			return "Auswählen", true
		}
		return "", false
	})
	assert.Equal(t, 1, n)

	list, _ := doc.Get("list")
	assert.Equal(t, "Auswählen", list.Children[0].Text)
	assert.Equal(t, "untranslated", list.Children[1].Text)
	assert.Equal(t, "plain", list.Children[2].Text)
}

func TestMarshalJSON(t *testing.T) {
	doc := NewDocument()
	doc.Add(&Element{ID: "fov", Kind: KindRange, Value: "95"})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"fov","kind":"range","value":"95"}]`, string(data))
}
