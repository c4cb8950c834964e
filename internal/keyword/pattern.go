package keyword

import "regexp"

// Pattern is a compiled matcher derived from a keyword name containing
// ${variable} placeholders. Patterns are inert value objects: compiling
// the same name twice yields matchers with identical accept/reject
// behavior.
type Pattern struct {
	re *regexp.Regexp
}

var varRe = regexp.MustCompile(`\$\{\w+\}`)

// HasVariables reports whether a keyword name declares at least one
// ${variable} placeholder. Fixed-text keywords never need a compiled
// pattern; normalized equality is sufficient and cheaper.
func HasVariables(name string) bool {
	return varRe.MatchString(name)
}

// Rewrite rules applied to the regexp.QuoteMeta form of the keyword name.
// QuoteMeta turns ${user} into \$\{user\} and leaves quote characters
// alone, so both shapes are unambiguous below.
var (
	escapedVarRe    = regexp.MustCompile(`\\\$\\\{\w+\\\}`)
	doubleQuotedVar = regexp.MustCompile(`"\(\.\+\?\)"`)
	singleQuotedVar = regexp.MustCompile(`'\(\.\+\?\)'`)
	literalSpaceRe  = regexp.MustCompile(`\s+`)
)

// Compile turns a keyword name into a Pattern usable against literal step
// text. Placeholders become non-greedy captures, quotes surrounding a
// placeholder become optional so a step value may appear quoted or bare,
// literal whitespace is matched tolerantly, and the result is anchored and
// case-insensitive. Compile never fails; a name without placeholders
// degrades to an escaped exact-text matcher.
func Compile(name string) *Pattern {
	body := regexp.QuoteMeta(name)
	body = escapedVarRe.ReplaceAllString(body, `(.+?)`)
	body = doubleQuotedVar.ReplaceAllString(body, `"?(.+?)"?`)
	body = singleQuotedVar.ReplaceAllString(body, `'?(.+?)'?`)
	body = literalSpaceRe.ReplaceAllString(body, `\s+`)

	re, err := regexp.Compile(`(?i)^` + body + `$`)
	if err != nil {
		// QuoteMeta output always compiles, so this is only reachable if
		// a rewrite above produced something invalid. Fall back to exact
		// literal matching.
		re = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `$`)
	}
	return &Pattern{re: re}
}

// Match reports whether the pattern accepts the raw step text.
func (p *Pattern) Match(step string) bool {
	return p.re.MatchString(step)
}

// String returns the source of the underlying regular expression.
func (p *Pattern) String() string {
	return p.re.String()
}
