// Regex primitives: one regex dialect across the whole language, with
// anchors, groups, character classes, quantifiers, and captures numbered
// from 1. Built on github.com/dlclark/regexp2, the same engine the
// string builtins use (internal/eval/stdlib.go's string.is_match):
// regexp2 supports lookaround and backreferences that Go's stdlib
// RE2-based regexp cannot express.
package ops

import (
	"github.com/dlclark/regexp2"

	"github.com/lucid-lang/lucid/internal/ident"
)

// Match is one regex match result: the full matched text, its rune
// index in the subject, and its numbered capture groups. Groups[0] is
// the whole-match slot; numbered captures start at Groups[1].
type Match struct {
	Text   string
	Index  int
	Groups []string
}

// FindFirst returns the first match of pattern in s, or ok == false if
// there is none.
func FindFirst(pos ident.Pos, pattern, s string) (Match, bool, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return Match{}, false, opErr(pos, "regex: invalid pattern %q: %s", pattern, err)
	}
	m, err := re.FindStringMatch(s)
	if err != nil {
		return Match{}, false, opErr(pos, "regex: matching %q: %s", pattern, err)
	}
	if m == nil {
		return Match{}, false, nil
	}
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return Match{Text: m.String(), Index: m.Index, Groups: out}, true, nil
}

// IsMatch reports whether pattern matches anywhere in s.
func IsMatch(pos ident.Pos, pattern, s string) (bool, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return false, opErr(pos, "regex: invalid pattern %q: %s", pattern, err)
	}
	m, err := re.MatchString(s)
	if err != nil {
		return false, opErr(pos, "regex: matching %q: %s", pattern, err)
	}
	return m, nil
}

// ReplaceAllRegex substitutes every match of pattern in s with repl.
func ReplaceAllRegex(pos ident.Pos, pattern, repl, s string) (string, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return "", opErr(pos, "regex: invalid pattern %q: %s", pattern, err)
	}
	out, err := re.Replace(s, repl, -1, -1)
	if err != nil {
		return "", opErr(pos, "regex: replacing %q: %s", pattern, err)
	}
	return out, nil
}
