package scrape

import (
	"reflect"
	"testing"
)

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name     string
		emails   []string
		excludes []string
		prefixes []string
		expected []string
	}{
		{
			name:     "No rules passthrough",
			emails:   []string{"a@x.com", "b@x.com"},
			expected: []string{"a@x.com", "b@x.com"},
		},
		{
			name:     "Prefix strip",
			emails:   []string{"info-sales@x.com"},
			prefixes: []string{"info-"},
			expected: []string{"sales@x.com"},
		},
		{
			name:     "First matching prefix wins",
			emails:   []string{"info-sales@x.com"},
			prefixes: []string{"info-", "info-sales-"},
			expected: []string{"sales@x.com"},
		},
		{
			name:     "Prefix matching is case insensitive",
			emails:   []string{"INFO-Sales@x.com"},
			prefixes: []string{"info-"},
			expected: []string{"Sales@x.com"},
		},
		{
			name:     "Exclude substring",
			emails:   []string{"sales@spamdomain.com", "sales@x.com"},
			excludes: []string{"spamdomain"},
			expected: []string{"sales@x.com"},
		},
		{
			name:     "Exclude overrides strip",
			emails:   []string{"info-sales@spamdomain.com"},
			excludes: []string{"spamdomain"},
			prefixes: []string{"info-"},
			expected: []string{},
		},
		{
			name:     "Exclude sees post-strip text",
			emails:   []string{"noreply-sales@x.com"},
			excludes: []string{"noreply"},
			prefixes: []string{"noreply-"},
			expected: []string{"sales@x.com"},
		},
		{
			name:     "Stripping collisions deduplicate",
			emails:   []string{"info-a@x.com", "a@x.com"},
			prefixes: []string{"info-"},
			expected: []string{"a@x.com"},
		},
		{
			// U+212A KELVIN SIGN lowercases to a one-byte "k"; the
			// strip must remove whole runes of the original, not the
			// lowercased prefix's byte count.
			name:     "Multibyte leading rune strips cleanly",
			emails:   []string{"Kontakt-sales@x.com"},
			prefixes: []string{"kontakt-"},
			expected: []string{"sales@x.com"},
		},
		{
			name:     "Empty rule entries are ignored",
			emails:   []string{"a@x.com"},
			excludes: []string{""},
			prefixes: []string{""},
			expected: []string{"a@x.com"},
		},
		{
			name:     "Empty input",
			emails:   nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(tt.emails, tt.excludes, tt.prefixes)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ApplyFilters() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestApplyFiltersNeverNil(t *testing.T) {
	if got := ApplyFilters(nil, nil, nil); got == nil {
		t.Fatal("ApplyFilters returned nil, want empty slice")
	}
}
