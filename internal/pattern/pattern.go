// Package pattern matches names against user-supplied filter patterns.
//
// Three forms are supported:
//
//	project        exact, case-insensitive
//	arch*          wildcard, "*" matches any run of characters
//	/^draft-\d+$/  regular expression between slashes
//
// Patterns that fail to compile never match. The failure is logged once when
// the pattern is compiled, so callers never see an error for bad user input.
package pattern

import (
	"regexp"
	"strings"

	"github.com/treykane/tagnav/internal/logging"
)

var log = logging.New("pattern")

type kind int

const (
	kindExact kind = iota
	kindWildcard
	kindRegex
	kindInvalid
)

// Pattern is a compiled filter pattern.
type Pattern struct {
	raw   string
	kind  kind
	exact string
	re    *regexp.Regexp
}

// Compile parses raw into a Pattern. Blank input yields a pattern that never
// matches.
func Compile(raw string) Pattern {
	trimmed := strings.TrimSpace(raw)
	p := Pattern{raw: raw}
	switch {
	case trimmed == "":
		p.kind = kindInvalid
	case len(trimmed) >= 2 && strings.HasPrefix(trimmed, "/") && strings.HasSuffix(trimmed, "/"):
		re, err := regexp.Compile("(?i)" + trimmed[1:len(trimmed)-1])
		if err != nil {
			log.WithError(err).WithField("pattern", raw).Warn("invalid regex pattern, treating as non-matching")
			p.kind = kindInvalid
			return p
		}
		p.kind = kindRegex
		p.re = re
	case strings.Contains(trimmed, "*"):
		parts := strings.Split(trimmed, "*")
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		p.kind = kindWildcard
		p.re = regexp.MustCompile("(?i)^" + strings.Join(parts, ".*") + "$")
	default:
		p.kind = kindExact
		p.exact = strings.ToLower(trimmed)
	}
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Valid reports whether the pattern can ever match.
func (p Pattern) Valid() bool { return p.kind != kindInvalid }

// Match reports whether value satisfies the pattern.
func (p Pattern) Match(value string) bool {
	switch p.kind {
	case kindExact:
		return strings.ToLower(value) == p.exact
	case kindWildcard, kindRegex:
		return p.re.MatchString(value)
	default:
		return false
	}
}

// Set is an ordered list of compiled patterns; a value matches the set when
// it matches any member.
type Set []Pattern

// CompileAll compiles every raw pattern.
func CompileAll(raw []string) Set {
	set := make(Set, 0, len(raw))
	for _, r := range raw {
		set = append(set, Compile(r))
	}
	return set
}

// Match reports whether any pattern in the set matches value.
func (s Set) Match(value string) bool {
	for _, p := range s {
		if p.Match(value) {
			return true
		}
	}
	return false
}

// MatchPath matches a slash-separated path. Patterns containing "/" are
// tested against the whole path; all others against the last segment only,
// so "archive" hides every folder named archive.
func (s Set) MatchPath(path string) bool {
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	for _, p := range s {
		target := name
		if strings.Contains(strings.Trim(strings.TrimSpace(p.raw), "/"), "/") {
			target = path
		}
		if p.Match(target) {
			return true
		}
	}
	return false
}
