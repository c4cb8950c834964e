// Package resource scans Robot Framework resource and suite files for
// keyword definitions.
//
// Only the *** Keywords *** section is inspected. A non-indented line in
// that section starts a keyword definition; indented lines form its body
// and may carry [Documentation], [Arguments], and [Tags] settings.
package resource

import (
	"regexp"
	"strings"

	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

var (
	sectionRe = regexp.MustCompile(`^\*\*\*\s*([^*]*?)\s*\*\*\*\s*$`)
	docRe     = regexp.MustCompile(`^\[Documentation\]\s*(.*)$`)
	argsRe    = regexp.MustCompile(`^\[Arguments\]\s*(.*)$`)
	tagsRe    = regexp.MustCompile(`^\[Tags\]\s*(.*)$`)
)

// Scan parses resource-file text into keyword definitions in source order.
// Scan never fails: malformed input yields an empty or partial result.
// path is recorded as the source file of every definition; line numbers
// are 0-based.
func Scan(path, text string) []*keyword.Definition {
	var (
		defs       []*keyword.Definition
		current    *keyword.Definition
		inKeywords bool
	)

	commit := func() {
		if current != nil {
			defs = append(defs, current)
			current = nil
		}
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			commit()
			inKeywords = strings.EqualFold(m[1], "Keywords")
			continue
		}
		if !inKeywords {
			continue
		}

		if isIndented(line) {
			if current != nil {
				applySetting(current, strings.TrimSpace(line))
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		commit()
		current = keyword.NewDefinition(trimmed, path, i)
	}

	// A definition still open at end of file is committed with whatever
	// settings were seen before the file ended.
	commit()
	return defs
}

// isIndented reports whether a line belongs to a keyword body: a leading
// tab or a run of at least four spaces.
func isIndented(line string) bool {
	return strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "    ")
}

// applySetting updates d from a recognized settings line. The bracketed
// setting names are case-sensitive; anything else in the body is ignored.
// A repeated [Documentation] overwrites the previous one.
func applySetting(d *keyword.Definition, line string) {
	switch {
	case docRe.MatchString(line):
		d.Doc = strings.TrimSpace(docRe.FindStringSubmatch(line)[1])
	case argsRe.MatchString(line):
		d.Args = strings.Fields(argsRe.FindStringSubmatch(line)[1])
	case tagsRe.MatchString(line):
		d.Tags = strings.Fields(tagsRe.FindStringSubmatch(line)[1])
	}
}
