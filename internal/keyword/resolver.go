package keyword

import (
	"path/filepath"
	"sort"
	"strings"
)

// Priority ranks how a definition matched a step.
type Priority int

const (
	// PriorityExact is a normalized-equality match.
	PriorityExact Priority = 1
	// PriorityPattern is a placeholder-pattern match against raw step text.
	PriorityPattern Priority = 2
)

// Match pairs a definition with the priority it matched at.
type Match struct {
	Definition *Definition
	Priority   Priority
}

// ResolveStep resolves literal step text against keyword definitions.
// A definition matches at PriorityExact when its normalized name equals
// the step's normalized text, or at PriorityPattern when it declares
// placeholders and its compiled pattern accepts the raw step text; exact
// wins when both apply. Results are sorted by priority with ties in
// candidate order, so defs should be passed in index discovery order.
// An empty result is the normal "no resolution" outcome, never an error.
func ResolveStep(defs []*Definition, step string) []Match {
	key := Normalize(step)
	if key == "" {
		return nil
	}
	raw := strings.TrimSpace(step)

	var matches []Match
	for _, d := range defs {
		switch {
		case d.Key() == key:
			matches = append(matches, Match{Definition: d, Priority: PriorityExact})
		case d.HasVariables() && d.Pattern().Match(raw):
			matches = append(matches, Match{Definition: d, Priority: PriorityPattern})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority < matches[j].Priority
	})
	return matches
}

// ResolveUsages resolves a keyword definition to the step occurrences that
// use it, applying the same normalized-equality and pattern rules in the
// reverse direction. When matches span sibling copies of the same project
// rooted at different locations, the result is narrowed to the occurrences
// sharing the longest common path prefix with the directory containing the
// definition; ties are all retained.
func ResolveUsages(occurrences []Occurrence, def *Definition) []Occurrence {
	if def == nil || def.Key() == "" {
		return nil
	}

	var found []Occurrence
	for _, occ := range occurrences {
		if Normalize(occ.Text) == def.Key() {
			found = append(found, occ)
			continue
		}
		if def.HasVariables() && def.Pattern().Match(strings.TrimSpace(occ.Text)) {
			found = append(found, occ)
		}
	}
	return nearestTo(found, filepath.Dir(def.File))
}

// nearestTo keeps the occurrences whose files share the most leading path
// segments with dir. With zero or one occurrence it is the identity.
func nearestTo(occs []Occurrence, dir string) []Occurrence {
	if len(occs) <= 1 {
		return occs
	}

	best := -1
	scores := make([]int, len(occs))
	for i, occ := range occs {
		scores[i] = commonSegments(dir, filepath.Dir(occ.File))
		if scores[i] > best {
			best = scores[i]
		}
	}

	var kept []Occurrence
	for i, occ := range occs {
		if scores[i] == best {
			kept = append(kept, occ)
		}
	}
	return kept
}

// commonSegments counts the leading path segments two paths share,
// comparing segment by segment rather than by raw character prefix.
func commonSegments(a, b string) int {
	as := splitSegments(a)
	bs := splitSegments(b)
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

func splitSegments(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}
