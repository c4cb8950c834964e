// Package filekind classifies the file types handled by the gherkin
// toolchain.
package filekind

import "strings"

// Kind represents the type of a project file.
type Kind string

const (
	// KindResource is a Robot Framework resource file (.resource).
	KindResource Kind = "resource"
	// KindRobot is a Robot Framework suite file (.robot).
	KindRobot Kind = "robot"
	// KindFeature is a Gherkin feature file (.feature).
	KindFeature Kind = "feature"
	// KindMarkdownFeature is a markdown-flavored feature file
	// (.feature.md), with steps prefixed by a list marker.
	KindMarkdownFeature Kind = "feature.md"
	// KindUnknown indicates an unrecognized file type.
	KindUnknown Kind = "unknown"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsKeywordSource reports whether files of this kind define keywords.
func (k Kind) IsKeywordSource() bool {
	return k == KindResource || k == KindRobot
}

// IsScenarioSource reports whether files of this kind contain Gherkin
// steps.
func (k Kind) IsScenarioSource() bool {
	return k == KindFeature || k == KindMarkdownFeature
}

// Detect classifies a file by its name. The .feature.md suffix is checked
// before .feature so markdown-flavored features are not misclassified.
func Detect(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".feature.md"):
		return KindMarkdownFeature
	case strings.HasSuffix(name, ".feature"):
		return KindFeature
	case strings.HasSuffix(name, ".resource"):
		return KindResource
	case strings.HasSuffix(name, ".robot"):
		return KindRobot
	}
	return KindUnknown
}
