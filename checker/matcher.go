package checker

import (
	"regexp"
	"strings"
	"unicode"
)

// TitleMatcher recognizes pull request titles declaring migration work on an
// add-on, e.g. "[16.0][MIG] sale_extended".
// Form: [<branch>][ADD|MIG]<directory>, compared without whitespace and case.
type TitleMatcher struct {
	re *regexp.Regexp
}

// NewTitleMatcher builds a matcher for branch and directory. Both are matched
// literally.
func NewTitleMatcher(branch, directory string) *TitleMatcher {
	pattern := `\[` + regexp.QuoteMeta(normalizeTitle(branch)) + `\]\[(add|mig)\]` +
		regexp.QuoteMeta(normalizeTitle(directory))
	return &TitleMatcher{re: regexp.MustCompile(pattern)}
}

// Match reports whether title declares the add-on.
func (m *TitleMatcher) Match(title string) bool {
	return m.re.MatchString(normalizeTitle(title))
}

// normalizeTitle drops all whitespace and lowercases.
func normalizeTitle(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}
