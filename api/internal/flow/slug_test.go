package flow

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Acute Stress Reaction", "acute-stress-reaction"},
		{"Decolgen", "decolgen"},
		{"Common  Cold", "common-cold"},
		{"Migraine\twith\n aura", "migraine-with-aura"},
		{" leading and trailing ", "-leading-and-trailing-"},
		{"Vitamin B12 (Cobalamin)", "vitamin-b12-(cobalamin)"},
		{"Allergic Rhinitis", "allergic-rhinitis"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.label))
		})
	}
}

func TestSlugMatchesBrowserLowercasing(t *testing.T) {
	assert.Equal(t, "οδος", Slug("ΟΔΟΣ"))
	assert.Equal(t, "οδος-μας", Slug("ΟΔΟΣ ΜΑΣ"))
	assert.Equal(t, "ασα", Slug("ΑΣΑ"))
	assert.Equal(t, "σ", Slug("Σ"))
	assert.Equal(t, "a\u0085b", Slug("a\u0085b"))
	assert.Equal(t, "a-b", Slug("a\u00A0b"))
}

func TestSlugIsDeterministicAndWhitespaceFree(t *testing.T) {
	labels := []string{
		"Acute Stress Reaction", "  ", "\t\r\n", "Type 2 Diabetes Mellitus",
		"ÜBER  Große Krankheit", "a\u3000b", "x\uFEFFy",
	}
	for _, l := range labels {
		got := Slug(l)
		assert.Equal(t, got, Slug(l))
		assert.False(t, strings.ContainsFunc(got, unicode.IsSpace), "slug %q of %q has whitespace", got, l)
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/diseases/acute-stress-reaction", DiseasePath("Acute Stress Reaction"))
	assert.Equal(t, "/medicines/decolgen-forte", MedicinePath("Decolgen Forte"))
	assert.Equal(t, "/medicines/", MedicinePath(""))
}
