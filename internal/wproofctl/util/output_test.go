package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"plain", "Fast shipping", 20, "Fast shipping"},
		{"markup", "<p>Loved <strong>it</strong></p>", 20, "Loved it"},
		{"truncated", "The best support team we have ever worked with", 12, "The best su…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.content, tt.max))
		})
	}
}

func TestFormatGroups(t *testing.T) {
	assert.Equal(t, "-", FormatGroups(nil))
	assert.Equal(t, "0,2", FormatGroups([]string{"0", "2"}))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"id": 1}))
	assert.Equal(t, "{\n  \"id\": 1\n}\n", buf.String())
}
