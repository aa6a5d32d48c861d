package github

import (
	"regexp"
	"strings"
	"sync"
)

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// String returns the "owner/name" form.
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// PullRequest represents an open pull request.
type PullRequest struct {
	Number  int
	Title   string
	HTMLURL string // canonical web URL (e.g. "https://github.com/acme/shop/pull/7")
}

// ResolveRepository extracts "owner/name" from a repository URL on host.
// It returns "" when the URL does not contain <host>/<owner>/<name>.
func ResolveRepository(rawURL, host string) string {
	if host == "" {
		return ""
	}
	m := hostPattern(host).FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	name := strings.TrimSuffix(m[2], ".git")
	if name == "" {
		return ""
	}
	return m[1] + "/" + name
}

var hostPatterns sync.Map // host -> *regexp.Regexp

// hostPattern matches <host>/<owner>/<name> where host starts the string or
// follows "//", optionally behind subdomains or userinfo.
func hostPattern(host string) *regexp.Regexp {
	if re, ok := hostPatterns.Load(host); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?:^|//)(?:[^/\s]*[.@])?` + regexp.QuoteMeta(host) + `/([^/\s?#]+)/([^/\s?#]+)`)
	actual, _ := hostPatterns.LoadOrStore(host, re)
	return actual.(*regexp.Regexp)
}

// ParseRepository splits an "owner/name" identifier. ok is false for
// anything else, including the empty string.
func ParseRepository(fullName string) (Repository, bool) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, false
	}
	return Repository{Owner: owner, Name: name}, true
}
