package keyword

// Definition is a single keyword definition discovered in a resource file.
// Definitions are immutable once created, owned by the index entry holding
// them, and discarded wholesale when the index is rebuilt.
type Definition struct {
	Name string
	File string
	Line int // 0-based line of the definition's name row
	Doc  string
	Args []string
	Tags []string

	key     string
	hasVars bool
	pattern *Pattern
}

// NewDefinition creates a Definition for name at file:line, computing its
// normalized key and, when the name declares placeholders, its compiled
// pattern.
func NewDefinition(name, file string, line int) *Definition {
	d := &Definition{
		Name: name,
		File: file,
		Line: line,
		key:  Normalize(name),
	}
	if HasVariables(name) {
		d.hasVars = true
		d.pattern = Compile(name)
	}
	return d
}

// Key returns the normalized comparison key of the definition's name.
func (d *Definition) Key() string { return d.key }

// HasVariables reports whether the definition's name declares placeholders.
func (d *Definition) HasVariables() bool { return d.hasVars }

// Pattern returns the compiled matcher, or nil for fixed-text keywords.
func (d *Definition) Pattern() *Pattern { return d.pattern }

// Occurrence is a single step found in a scenario file. Occurrences are
// immutable and discarded wholesale when the step index is rebuilt.
type Occurrence struct {
	File string
	Line int // 0-based
	Text string
}
