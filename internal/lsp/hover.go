package lsp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

func (s *Server) handleHover(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.HoverParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	matches := s.resolveStepAt(ctx, p.TextDocument.URI, int(p.Position.Line))
	if len(matches) == 0 {
		return nil, nil
	}

	root := s.rootFor(pathOf(p.TextDocument.URI))

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: formatKeywordHover(matches[0].Definition, root),
		},
	}, nil
}

// formatKeywordHover formats a keyword definition as Markdown for hover
// display. Paths are shown relative to root when possible.
func formatKeywordHover(def *keyword.Definition, root string) string {
	var b strings.Builder

	b.WriteString("```robotframework\n")
	b.WriteString(def.Name)
	b.WriteString("\n```\n")

	if len(def.Args) > 0 {
		b.WriteString("\n**Arguments:** ")
		for i, a := range def.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("`")
			b.WriteString(a)
			b.WriteString("`")
		}
		b.WriteString("\n")
	}

	if len(def.Tags) > 0 {
		b.WriteString("\n**Tags:** ")
		b.WriteString(strings.Join(def.Tags, ", "))
		b.WriteString("\n")
	}

	if def.Doc != "" {
		b.WriteString("\n")
		b.WriteString(def.Doc)
		b.WriteString("\n")
	}

	b.WriteString("\n*Defined in ")
	b.WriteString(displayPath(def.File, root))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(def.Line + 1))
	b.WriteString("*\n")

	return b.String()
}

func displayPath(path, root string) string {
	if root == "" {
		return path
	}
	return strings.TrimPrefix(path, strings.TrimRight(root, "/")+"/")
}
