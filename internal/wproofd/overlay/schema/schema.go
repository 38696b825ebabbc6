// Package schema builds schema.org JSON-LD descriptions of overlay items so
// that search engines can read the social proof a page carries.
package schema

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

const schemaContext = "https://schema.org"

type thing struct {
	Type string `json:"@type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

type document struct {
	Context        string `json:"@context"`
	Type           string `json:"@type"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	ReviewBody     string `json:"reviewBody,omitempty"`
	Author         *thing `json:"author,omitempty"`
	ItemReviewed   *thing `json:"itemReviewed,omitempty"`
	AcceptedAnswer *thing `json:"acceptedAnswer,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Generator renders JSON-LD for items published by one site
type Generator struct {
	siteName string
}

// NewGenerator creates a generator naming siteName as the reviewed organization
func NewGenerator(siteName string) *Generator {
	return &Generator{siteName: siteName}
}

// Markup returns the JSON-LD document for item. Item types without a
// schema.org mapping yield an empty string.
func (g *Generator) Markup(item overlay.ContentItem) (string, error) {
	const op = "Generator.Markup"

	text := PlainText(item.Content)

	var doc document
	switch item.Type {
	case overlay.ItemReview:
		doc = document{
			Type:         "Review",
			ReviewBody:   text,
			Author:       &thing{Type: "Person", Name: item.Author},
			ItemReviewed: &thing{Type: "Organization", Name: g.siteName},
		}
	case overlay.ItemFAQ:
		doc = document{
			Type:           "Question",
			Name:           text,
			AcceptedAnswer: &thing{Type: "Answer", Text: text},
		}
	case overlay.ItemNugget, overlay.ItemStat:
		doc = document{
			Type:        "Organization",
			Name:        g.siteName,
			Description: text,
		}
	default:
		return "", nil
	}
	doc.Context = schemaContext
	doc.URL = item.URL

	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.NewError("SCHEMA_ENCODE", "failed to encode schema markup", op, err)
	}
	return string(data), nil
}

// PlainText strips markup from rich text, collapsing runs of whitespace
func PlainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return strings.Join(strings.Fields(content), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
