package scrape

import (
	"strings"
	"unicode/utf8"
)

// ApplyFilters runs the owner's filter rules over an extracted email
// list: strip the first matching prefix, then drop anything containing
// an excluded substring, then deduplicate. Exclusion is checked against
// the post-strip text. The returned list preserves first-seen order and
// is never nil.
func ApplyFilters(emails, excludeSubstrings, stripPrefixes []string) []string {
	out := newOrderedSet()

	for _, email := range emails {
		lower := strings.ToLower(email)
		for _, prefix := range stripPrefixes {
			lp := strings.ToLower(prefix)
			if lp == "" || !strings.HasPrefix(lower, lp) {
				continue
			}
			email = stripLeadingRunes(email, utf8.RuneCountInString(lp))
			lower = strings.ToLower(email)
			break
		}

		excluded := false
		for _, sub := range excludeSubstrings {
			ls := strings.ToLower(sub)
			if ls != "" && strings.Contains(lower, ls) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out.Add(email)
	}
	return out.Values()
}

// stripLeadingRunes removes n runes from the front of s. The matched
// prefix length is known in runes, not bytes: lowercasing maps runes
// one to one but can change their byte width, so byte arithmetic on
// the original-case string would cut mid-rune.
func stripLeadingRunes(s string, n int) string {
	for i := 0; i < n && s != ""; i++ {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}
