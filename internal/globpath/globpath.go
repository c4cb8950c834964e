// Package globpath provides glob-pattern matching and safe recursive file
// discovery for workspace scans.
//
// The glob-to-regexp translation never emits nested quantifiers for the
// globstar ("**"), so hostile patterns cannot trigger catastrophic
// backtracking, and the walker refuses symlinks that escape the scan root.
package globpath

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Pattern is a compiled glob pattern matched against slash-separated
// paths.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// New compiles a glob pattern. Supported syntax: "*" (within a segment),
// "**" (any number of complete segments), "?" (one non-separator
// character), "{a,b}" alternation, and "[...]" character classes.
func New(glob string) (*Pattern, error) {
	re, err := regexp.Compile(translate(glob))
	if err != nil {
		return nil, err
	}
	return &Pattern{glob: glob, re: re}, nil
}

// MustNew is New for patterns known to be valid.
func MustNew(glob string) *Pattern {
	p, err := New(glob)
	if err != nil {
		panic(err)
	}
	return p
}

// Matches reports whether the pattern matches path. Separators are
// normalized first, so platform-native paths match too.
func (p *Pattern) Matches(path string) bool {
	return p.re.MatchString(filepath.ToSlash(path))
}

// String returns the original glob.
func (p *Pattern) String() string { return p.glob }

// Matches is a one-shot convenience for compiling and matching a pattern.
func Matches(glob, path string) (bool, error) {
	p, err := New(glob)
	if err != nil {
		return false, err
	}
	return p.Matches(path), nil
}

// translate converts a glob pattern to an anchored regular expression.
// Globstar segments become a single non-nested "(?:[^/]+/)*" matcher, and
// adjacent "**/" runs are collapsed into one, keeping the expression free
// of expansions that could backtrack catastrophically.
func translate(pattern string) string {
	var b strings.Builder
	b.WriteString("(?ms)^")

	inGroup := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case strings.IndexByte(`\/$^+.()=!|`, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '?':
			b.WriteString("[^/]")
		case c == '[' || c == ']':
			b.WriteByte(c)
		case c == '{':
			inGroup = true
			b.WriteByte('(')
		case c == '}':
			inGroup = false
			b.WriteByte(')')
		case c == ',':
			if inGroup {
				b.WriteByte('|')
			} else {
				b.WriteString(`\,`)
			}
		case c == '*':
			var prev byte
			if i > 0 {
				prev = pattern[i-1]
			}
			stars := 1
			for i+1 < len(pattern) && pattern[i+1] == '*' {
				stars++
				i++
			}
			hasNext := i+1 < len(pattern)
			var next byte
			if hasNext {
				next = pattern[i+1]
			}

			isGlobstar := stars > 1 && (i-stars < 0 || prev == '/') && (!hasNext || next == '/')
			switch {
			case isGlobstar && hasNext:
				i++ // consume the slash
				// Collapse adjacent "**/" runs into a single matcher.
				for i+3 < len(pattern) && pattern[i+1] == '*' && pattern[i+2] == '*' && pattern[i+3] == '/' {
					i += 3
				}
				b.WriteString(`(?:[^/]+/)*`)
			case isGlobstar:
				// Trailing "**" matches any remaining characters.
				b.WriteString(`.*`)
			default:
				b.WriteString(`([^/]*)`)
			}
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('$')
	return b.String()
}

// WalkOptions control IterFiles.
type WalkOptions struct {
	// Ignore patterns are matched against root-relative paths; matching
	// files are skipped and matching directories are not descended into.
	Ignore []*Pattern
	// MaxDepth bounds directory recursion; 0 means unlimited.
	MaxDepth int
	// FollowSymlinks permits file symlinks whose target resolves outside
	// the scan root. Symlinked directories are never descended into.
	FollowSymlinks bool
}

// IterFiles walks root and returns files whose root-relative path matches
// any of patterns (all files when patterns is empty). Unreadable
// directories are skipped silently.
func IterFiles(root string, patterns []*Pattern, opts WalkOptions) []string {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		resolvedRoot = root
	}

	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if matchesAny(opts.Ignore, rel) {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && segmentDepth(rel) >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if matchesAny(opts.Ignore, rel) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				// Broken links and symlinked directories are skipped.
				return nil
			}
			if !opts.FollowSymlinks && escapesRoot(path, resolvedRoot) {
				return nil
			}
		}

		if len(patterns) == 0 || matchesAny(patterns, rel) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func matchesAny(patterns []*Pattern, rel string) bool {
	for _, p := range patterns {
		if p.Matches(rel) {
			return true
		}
	}
	return false
}

func segmentDepth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// escapesRoot reports whether a symlink's target resolves outside the
// scan root. Unresolvable targets count as escaping.
func escapesRoot(path, resolvedRoot string) bool {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(resolvedRoot, target)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
