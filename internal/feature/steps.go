// Package feature extracts step occurrences from Gherkin feature files.
//
// Files are parsed structurally with the cucumber Gherkin parser; when the
// parser fails or reports no document (markdown-flavored features, broken
// syntax), a line-oriented fallback scan produces occurrences of the same
// shape.
package feature

import (
	"regexp"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

// stepLineRe matches a single scenario step line: an optional markdown
// list marker, a Gherkin step keyword, and the step text.
var stepLineRe = regexp.MustCompile(`^\s*(?:-\s+)?(Given|When|Then|And|But)\s+(.+)$`)

// ScanSteps extracts every step in a scenario file as (file, line, text)
// occurrences with 0-based lines and trimmed text. It never fails: input
// the structural parser rejects is handed to the fallback scan instead.
func ScanSteps(path, content string) []keyword.Occurrence {
	if occs, ok := parseSteps(path, content); ok {
		return occs
	}
	return scanLines(path, content)
}

// StepText extracts the step text from a single scenario line, stripping
// the optional markdown marker and the Gherkin keyword. ok is false when
// the line is not a step.
func StepText(line string) (string, bool) {
	m := stepLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[2]), true
}

// parseSteps walks the structurally parsed document. ok is false when the
// parser errored, panicked, or produced no feature, in which case the
// caller falls back to the line scan.
func parseSteps(path, content string) (occs []keyword.Occurrence, ok bool) {
	defer func() {
		if recover() != nil {
			occs, ok = nil, false
		}
	}()

	ids := &messages.Incrementing{}
	doc, err := gherkin.ParseGherkinDocument(strings.NewReader(content), ids.NewId)
	if err != nil || doc == nil || doc.Feature == nil {
		return nil, false
	}

	for _, child := range doc.Feature.Children {
		switch {
		case child.Background != nil:
			occs = append(occs, stepsOf(path, child.Background.Steps)...)
		case child.Scenario != nil:
			occs = append(occs, stepsOf(path, child.Scenario.Steps)...)
		case child.Rule != nil:
			for _, rc := range child.Rule.Children {
				switch {
				case rc.Background != nil:
					occs = append(occs, stepsOf(path, rc.Background.Steps)...)
				case rc.Scenario != nil:
					occs = append(occs, stepsOf(path, rc.Scenario.Steps)...)
				}
			}
		}
	}
	return occs, true
}

func stepsOf(path string, steps []*messages.Step) []keyword.Occurrence {
	out := make([]keyword.Occurrence, 0, len(steps))
	for _, s := range steps {
		line := 0
		if s.Location != nil && s.Location.Line > 0 {
			line = int(s.Location.Line) - 1
		}
		out = append(out, keyword.Occurrence{
			File: path,
			Line: line,
			Text: strings.TrimSpace(s.Text),
		})
	}
	return out
}

// scanLines is the line-oriented fallback. It also handles the
// markdown-flavored feature dialect, where steps carry a "- " prefix.
func scanLines(path, content string) []keyword.Occurrence {
	var occs []keyword.Occurrence
	for i, line := range strings.Split(content, "\n") {
		if text, isStep := StepText(strings.TrimRight(line, "\r")); isStep {
			occs = append(occs, keyword.Occurrence{File: path, Line: i, Text: text})
		}
	}
	return occs
}
