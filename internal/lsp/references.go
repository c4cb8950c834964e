package lsp

import (
	"context"
	"encoding/json"
	"log"

	"go.lsp.dev/protocol"

	"github.com/xoro/robotframework-gherkin-parser/internal/filekind"
	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
	"github.com/xoro/robotframework-gherkin-parser/internal/resource"
)

// handleReferences finds the feature-file steps that exercise the
// keyword under the cursor. The request only makes sense from a keyword
// definition file.
func (s *Server) handleReferences(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.ReferenceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	doc := s.document(p.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	path := pathOf(p.TextDocument.URI)
	if !filekind.Detect(path).IsKeywordSource() {
		return nil, nil
	}

	def := definitionAt(resource.Scan(path, doc.Content), int(p.Position.Line))
	if def == nil {
		return nil, nil
	}

	root := s.rootFor(path)
	if root == "" {
		log.Printf("references: no workspace root for %s", path)
		return nil, nil
	}

	occs, err := s.indexCache().Steps(ctx, root)
	if err != nil {
		log.Printf("references: step index unavailable: %v", err)
		return nil, nil
	}

	usages := keyword.ResolveUsages(occs, def)
	log.Printf("references: %q -> %d usage(s)", def.Name, len(usages))
	if len(usages) == 0 {
		return nil, nil
	}

	locations := make([]protocol.Location, 0, len(usages))
	for _, u := range usages {
		locations = append(locations, protocol.Location{
			URI:   fileURI(u.File),
			Range: lineRange(u.Line),
		})
	}
	return locations, nil
}

// definitionAt picks the keyword whose body contains the 0-based cursor
// line: the last definition starting at or before it.
func definitionAt(defs []*keyword.Definition, line int) *keyword.Definition {
	var found *keyword.Definition
	for _, d := range defs {
		if d.Line <= line {
			found = d
		}
	}
	return found
}
