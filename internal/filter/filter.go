// Package filter classifies history entries as kept or deleted.
//
// An entry is a delete candidate only when its header timestamp falls
// inside the time window. Content predicates (keyword substrings, regex
// searches) then narrow the candidates; with no predicates the time
// match alone deletes. Entries whose timestamp cannot be parsed are
// kept unconditionally: when in doubt, this tool preserves history
// rather than destroying it.
package filter

import (
	"regexp"
	"strings"

	"github.com/chazuruo/histwipe/internal/errors"
	"github.com/chazuruo/histwipe/internal/history"
	"github.com/chazuruo/histwipe/internal/window"
)

// Set holds the content predicates applied to entries inside the time
// window.
type Set struct {
	// Keywords match as plain substrings of the command.
	Keywords []string
	// Regexes match with an unanchored search over the command.
	Regexes []*regexp.Regexp
}

// Compile builds a Set from raw keyword and regex arguments. An
// unparseable pattern fails with a ParseError naming it.
func Compile(keywords, patterns []string) (Set, error) {
	s := Set{Keywords: keywords}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Set{}, &errors.ParseError{Input: p, Err: errors.ErrFormat}
		}
		s.Regexes = append(s.Regexes, re)
	}
	return s, nil
}

// Empty reports whether the set has no predicates.
func (s Set) Empty() bool {
	return len(s.Keywords) == 0 && len(s.Regexes) == 0
}

// Patterns returns the regex sources, for display.
func (s Set) Patterns() []string {
	out := make([]string, len(s.Regexes))
	for i, re := range s.Regexes {
		out[i] = re.String()
	}
	return out
}

// Matches reports whether command trips any predicate: any keyword as
// a substring, or failing that any regex search.
func (s Set) Matches(command string) bool {
	for _, kw := range s.Keywords {
		if strings.Contains(command, kw) {
			return true
		}
	}
	for _, re := range s.Regexes {
		if re.MatchString(command) {
			return true
		}
	}
	return false
}

// Action is the classification of one entry.
type Action int

const (
	// Keep leaves the entry in place.
	Keep Action = iota
	// Delete removes the entry from the rewrite.
	Delete
	// KeepMalformed keeps an entry whose header did not parse. Without
	// a trustworthy timestamp an entry is never a delete candidate.
	KeepMalformed
)

// Evaluator applies one time window and one Set to entries.
type Evaluator struct {
	win window.Window
	set Set
}

// NewEvaluator returns an Evaluator over the given window and set.
func NewEvaluator(win window.Window, set Set) *Evaluator {
	return &Evaluator{win: win, set: set}
}

// Decide classifies one entry. The time window is consulted before any
// content predicate, so an out-of-window entry is kept no matter what
// the filters say.
func (ev *Evaluator) Decide(e history.Entry) Action {
	h, err := history.ParseHeader(e.HeaderLine())
	if err != nil {
		return KeepMalformed
	}
	if !ev.win.Contains(h.Timestamp) {
		return Keep
	}
	if ev.set.Empty() {
		return Delete
	}
	if ev.set.Matches(h.Command) {
		return Delete
	}
	return Keep
}
