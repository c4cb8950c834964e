// Package index builds and caches workspace-wide indexes of keyword
// definitions and Gherkin step occurrences.
package index

import (
	"context"
	"log"
	"os"
	"sort"

	"github.com/xoro/robotframework-gherkin-parser/internal/config"
	"github.com/xoro/robotframework-gherkin-parser/internal/feature"
	"github.com/xoro/robotframework-gherkin-parser/internal/filekind"
	"github.com/xoro/robotframework-gherkin-parser/internal/globpath"
	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
	"github.com/xoro/robotframework-gherkin-parser/internal/resource"
)

var (
	// Keyword files under a steps/ directory are discovered first so they
	// lead the index order; the project-wide patterns catch the rest.
	stepsDirPatterns = []*globpath.Pattern{
		globpath.MustNew("**/steps/**/*.resource"),
		globpath.MustNew("**/steps/**/*.robot"),
	}
	keywordFilePatterns = []*globpath.Pattern{
		globpath.MustNew("**/*.resource"),
		globpath.MustNew("**/*.robot"),
	}
	featureFilePatterns = []*globpath.Pattern{
		globpath.MustNew("**/*.feature"),
		globpath.MustNew("**/*.feature.md"),
	}
	hiddenPatterns = []*globpath.Pattern{
		globpath.MustNew("**/.*"),
	}
)

// KeywordIndex maps normalized keyword keys to their definitions.
// Duplicate names across files stay distinct entries. An index is built
// once and never mutated, so concurrent reads need no coordination.
type KeywordIndex struct {
	byKey map[string][]*keyword.Definition
	order []*keyword.Definition
}

// NewKeywordIndex builds an index over defs, preserving their order.
func NewKeywordIndex(defs []*keyword.Definition) *KeywordIndex {
	ix := &KeywordIndex{byKey: make(map[string][]*keyword.Definition)}
	for _, d := range defs {
		if d == nil || d.Name == "" {
			continue
		}
		ix.byKey[d.Key()] = append(ix.byKey[d.Key()], d)
		ix.order = append(ix.order, d)
	}
	return ix
}

// Lookup returns the definitions stored under the normalized key.
func (ix *KeywordIndex) Lookup(key string) []*keyword.Definition {
	return ix.byKey[key]
}

// All returns every definition in discovery order.
func (ix *KeywordIndex) All() []*keyword.Definition { return ix.order }

// Len reports the number of definitions in the index.
func (ix *KeywordIndex) Len() int { return len(ix.order) }

// BuildKeywords scans root for keyword definition files and indexes every
// definition found. An empty root yields an empty index. Unreadable files
// are skipped. Cancellation is checked between files and returns the
// context error with a nil index.
func BuildKeywords(ctx context.Context, root string) (*KeywordIndex, error) {
	if root == "" {
		return NewKeywordIndex(nil), nil
	}

	var defs []*keyword.Definition
	for _, path := range discoverKeywordFiles(root, ignorePatterns(root)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := os.ReadFile(path)
		if err != nil {
			log.Printf("index: skipping %s: %v", path, err)
			continue
		}
		defs = append(defs, resource.Scan(path, string(text))...)
	}
	return NewKeywordIndex(defs), nil
}

// BuildSteps scans root for scenario files and collects every step
// occurrence. Behaves like BuildKeywords with respect to empty roots,
// unreadable files, and cancellation.
func BuildSteps(ctx context.Context, root string) ([]keyword.Occurrence, error) {
	if root == "" {
		return nil, nil
	}

	var occs []keyword.Occurrence
	walk := globpath.WalkOptions{Ignore: ignorePatterns(root)}
	for _, path := range globpath.IterFiles(root, featureFilePatterns, walk) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !filekind.Detect(path).IsScenarioSource() {
			continue
		}
		text, err := os.ReadFile(path)
		if err != nil {
			log.Printf("index: skipping %s: %v", path, err)
			continue
		}
		occs = append(occs, feature.ScanSteps(path, string(text))...)
	}
	return occs, nil
}

// ignorePatterns merges the hidden-path ignores with the workspace's
// configured ones. Bad config or bad globs degrade to the defaults.
func ignorePatterns(root string) []*globpath.Pattern {
	patterns := append([]*globpath.Pattern{}, hiddenPatterns...)
	cfg, err := config.Load(root)
	if err != nil {
		log.Printf("index: %v", err)
		return patterns
	}
	for _, glob := range cfg.Ignore {
		p, err := globpath.New(glob)
		if err != nil {
			log.Printf("index: skipping ignore pattern %q: %v", glob, err)
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// discoverKeywordFiles unions the steps-directory scan with the
// project-wide scan, deduplicated by path so no file is scanned twice.
func discoverKeywordFiles(root string, ignore []*globpath.Pattern) []string {
	walk := globpath.WalkOptions{Ignore: ignore}
	preferred := globpath.IterFiles(root, stepsDirPatterns, walk)
	rest := globpath.IterFiles(root, keywordFilePatterns, walk)
	sort.Strings(preferred)
	sort.Strings(rest)

	seen := make(map[string]bool, len(preferred)+len(rest))
	var files []string
	for _, group := range [][]string{preferred, rest} {
		for _, path := range group {
			if seen[path] || !filekind.Detect(path).IsKeywordSource() {
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}
	return files
}
