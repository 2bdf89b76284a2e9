package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields []string
		want   bool
	}{
		{"all tokens present", "talk corners", []string{"Talk On Corners (Remastered)"}, true},
		{"token order irrelevant", "corners talk", []string{"Talk On Corners (Remastered)"}, true},
		{"missing token", "zz", []string{"Talk On Corners"}, false},
		{"one token missing of two", "talk zz", []string{"Talk On Corners"}, false},
		{"blank query", "", []string{"Talk On Corners"}, false},
		{"whitespace only query", "   ", []string{"Talk On Corners"}, false},
		{"case folding", "TALK", []string{"talk on corners"}, true},
		{"diacritic folding", "beyonce", []string{"Beyoncé"}, true},
		{"diacritics in query", "béyonce", []string{"Beyonce"}, true},
		{"substring not word boundary", "orn", []string{"Talk On Corners"}, true},
		{"tokens across fields", "corrs talk", []string{"Talk On Corners", "The Corrs"}, true},
		{"empty fields", "talk", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.query, tt.fields...))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe", Fold("Café"))
	assert.Equal(t, "sigur ros", Fold("Sigur Rós"))
}
