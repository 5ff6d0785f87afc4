package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocumentPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"a.md", false},
		{"notes/deep/b.md", false},
		{".hidden", false},
		{"", true},
		{"/abs.md", true},
		{"../escape.md", true},
		{"..", true},
		{"notes/../a.md", true},
		{"notes//a.md", true},
		{"win\\path.md", true},
		{"nul\x00.md", true},
		{strings.Repeat("a", MaxPathLength+1), true},
	}

	for _, tt := range tests {
		err := ValidateDocumentPath(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
		} else {
			assert.NoError(t, err, tt.path)
		}
	}
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery(""))
	assert.NoError(t, ValidateQuery("daily"))
	assert.Error(t, ValidateQuery(strings.Repeat("q", MaxQueryLength+1)))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultSuggestions, ClampLimit(0))
	assert.Equal(t, DefaultSuggestions, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxSuggestions, ClampLimit(1000))
}
