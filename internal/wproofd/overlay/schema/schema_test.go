package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

func decode(t *testing.T, markup string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(markup), &out))
	return out
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Fast setup", want: "Fast setup"},
		{name: "tags", input: "<p>Loved <strong>it</strong></p>", want: "Loved it"},
		{name: "entities", input: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "script removed", input: "Hi<script>alert(1)</script> there", want: "Hi there"},
		{name: "whitespace collapsed", input: "  a \n\t b  ", want: "a b"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.input))
		})
	}
}

func TestMarkup_Review(t *testing.T) {
	g := NewGenerator("Acme")
	markup, err := g.Markup(overlay.ContentItem{
		Type:    overlay.ItemReview,
		Content: "<em>Five</em> stars",
		Author:  "Sam",
		URL:     "https://example.com/reviews",
	})
	require.NoError(t, err)

	doc := decode(t, markup)
	assert.Equal(t, "https://schema.org", doc["@context"])
	assert.Equal(t, "Review", doc["@type"])
	assert.Equal(t, "Five stars", doc["reviewBody"])
	assert.Equal(t, map[string]interface{}{"@type": "Person", "name": "Sam"}, doc["author"])
	assert.Equal(t, map[string]interface{}{"@type": "Organization", "name": "Acme"}, doc["itemReviewed"])
	assert.Equal(t, "https://example.com/reviews", doc["url"])
}

func TestMarkup_FAQ(t *testing.T) {
	markup, err := NewGenerator("Acme").Markup(overlay.ContentItem{
		Type:    overlay.ItemFAQ,
		Content: "Is it free? Yes.",
	})
	require.NoError(t, err)

	doc := decode(t, markup)
	assert.Equal(t, "Question", doc["@type"])
	assert.Equal(t, "Is it free? Yes.", doc["name"])
	assert.Equal(t, map[string]interface{}{"@type": "Answer", "text": "Is it free? Yes."}, doc["acceptedAnswer"])
	assert.NotContains(t, doc, "url")
}

func TestMarkup_Organization(t *testing.T) {
	for _, typ := range []overlay.ItemType{overlay.ItemNugget, overlay.ItemStat} {
		t.Run(string(typ), func(t *testing.T) {
			markup, err := NewGenerator("Acme").Markup(overlay.ContentItem{Type: typ, Content: "10k users"})
			require.NoError(t, err)

			doc := decode(t, markup)
			assert.Equal(t, "Organization", doc["@type"])
			assert.Equal(t, "Acme", doc["name"])
			assert.Equal(t, "10k users", doc["description"])
		})
	}
}

func TestMarkup_UnknownType(t *testing.T) {
	markup, err := NewGenerator("Acme").Markup(overlay.ContentItem{Type: "poll", Content: "x"})
	require.NoError(t, err)
	assert.Empty(t, markup)
}
