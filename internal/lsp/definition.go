package lsp

import (
	"context"
	"encoding/json"
	"log"

	"go.lsp.dev/protocol"

	"github.com/xoro/robotframework-gherkin-parser/internal/feature"
	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

func (s *Server) handleDefinition(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DefinitionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	matches := s.resolveStepAt(ctx, p.TextDocument.URI, int(p.Position.Line))
	if len(matches) == 0 {
		return nil, nil
	}

	locations := make([]protocol.Location, 0, len(matches))
	for _, m := range matches {
		locations = append(locations, protocol.Location{
			URI:   fileURI(m.Definition.File),
			Range: lineRange(m.Definition.Line),
		})
	}
	return locations, nil
}

// resolveStepAt resolves the step on the given line of an open document
// against the keyword index. Index build failures degrade to no result.
func (s *Server) resolveStepAt(ctx context.Context, u protocol.DocumentURI, line int) []keyword.Match {
	doc := s.document(u)
	if doc == nil {
		return nil
	}

	step, ok := feature.StepText(lineAt(doc.Content, line))
	if !ok {
		return nil
	}

	path := pathOf(u)
	root := s.rootFor(path)
	if root == "" {
		log.Printf("definition: no workspace root for %s", path)
		return nil
	}

	ix, err := s.indexCache().Keywords(ctx, root)
	if err != nil || ix == nil {
		log.Printf("definition: keyword index unavailable: %v", err)
		return nil
	}

	matches := keyword.ResolveStep(ix.All(), step)
	log.Printf("definition: %q -> %d match(es)", step, len(matches))
	return matches
}
