package encstore

import (
	"regexp"
	"strings"
)

// Pattern selects logical keys for the *FromPattern calls. Build one with
// Substring or Regexp. Matching runs against physical (prefixed) keys.
type Pattern struct {
	literal string
	re      *regexp.Regexp
	isRe    bool
}

// Substring matches keys containing s.
func Substring(s string) Pattern { return Pattern{literal: s} }

// Regexp matches keys matched by re. A nil re matches nothing.
func Regexp(re *regexp.Regexp) Pattern { return Pattern{re: re, isRe: true} }

// MustRegexp compiles expr and panics on error.
func MustRegexp(expr string) Pattern { return Regexp(regexp.MustCompile(expr)) }

// Literal reports the substring and whether p is a substring pattern.
func (p Pattern) Literal() (string, bool) { return p.literal, !p.isRe }

func (p Pattern) String() string {
	if p.isRe {
		if p.re == nil {
			return "/<nil>/"
		}
		return "/" + p.re.String() + "/"
	}
	return p.literal
}

func (p Pattern) match(physical string) bool {
	if p.isRe {
		return p.re != nil && p.re.MatchString(physical)
	}
	return strings.Contains(physical, p.literal)
}
