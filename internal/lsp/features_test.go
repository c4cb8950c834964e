package lsp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

func positionParams(u protocol.DocumentURI, line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: u},
		Position:     protocol.Position{Line: line, Character: char},
	}
}

func TestDefinitionResolvesStep(t *testing.T) {
	server, root := newTestServer(t)
	path := filepath.Join(root, "features", "auth.feature")
	u := openDocument(t, server, path, authFeature)

	params, _ := json.Marshal(protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(u, 3, 10),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/definition", Params: params,
	})
	if err != nil {
		t.Fatalf("definition failed: %v", err)
	}

	locations, ok := result.([]protocol.Location)
	if !ok {
		t.Fatalf("result is %T, want []protocol.Location", result)
	}
	if len(locations) != 1 {
		t.Fatalf("got %d locations, want 1", len(locations))
	}
	if got := string(locations[0].URI); !strings.HasSuffix(got, "steps/login.resource") {
		t.Errorf("location URI = %s, want steps/login.resource", got)
	}
	if got, want := locations[0].Range.Start.Line, uint32(1); got != want {
		t.Errorf("location line = %d, want %d", got, want)
	}
}

func TestDefinitionUnresolvedStep(t *testing.T) {
	server, root := newTestServer(t)
	path := filepath.Join(root, "features", "auth.feature")
	u := openDocument(t, server, path, authFeature)

	// "When I press the missing button" has no keyword behind it.
	params, _ := json.Marshal(protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(u, 4, 10),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/definition", Params: params,
	})
	if err != nil {
		t.Fatalf("definition failed: %v", err)
	}
	if result != nil {
		t.Errorf("unresolved step returned %v, want nil", result)
	}
}

func TestDefinitionOnNonStepLine(t *testing.T) {
	server, root := newTestServer(t)
	path := filepath.Join(root, "features", "auth.feature")
	u := openDocument(t, server, path, authFeature)

	params, _ := json.Marshal(protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(u, 0, 2),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/definition", Params: params,
	})
	if err != nil {
		t.Fatalf("definition failed: %v", err)
	}
	if result != nil {
		t.Errorf("non-step line returned %v, want nil", result)
	}
}

func TestHoverRendersKeywordCard(t *testing.T) {
	server, root := newTestServer(t)
	path := filepath.Join(root, "features", "auth.feature")
	u := openDocument(t, server, path, authFeature)

	params, _ := json.Marshal(protocol.HoverParams{
		TextDocumentPositionParams: positionParams(u, 3, 10),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/hover", Params: params,
	})
	if err != nil {
		t.Fatalf("hover failed: %v", err)
	}

	hover, ok := result.(*protocol.Hover)
	if !ok {
		t.Fatalf("result is %T, want *protocol.Hover", result)
	}
	if hover.Contents.Kind != protocol.Markdown {
		t.Errorf("Contents.Kind = %v, want markdown", hover.Contents.Kind)
	}
	for _, want := range []string{
		`the user logs in as "${username}"`,
		"**Arguments:**",
		"${username}",
		"**Tags:** auth",
		"Authenticates as the given user.",
		"steps/login.resource:2",
	} {
		if !strings.Contains(hover.Contents.Value, want) {
			t.Errorf("hover markdown missing %q:\n%s", want, hover.Contents.Value)
		}
	}
}

func TestHoverUnknownDocument(t *testing.T) {
	server, _ := newTestServer(t)

	params, _ := json.Marshal(protocol.HoverParams{
		TextDocumentPositionParams: positionParams("file:///nowhere.feature", 0, 0),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/hover", Params: params,
	})
	if err != nil {
		t.Fatalf("hover failed: %v", err)
	}
	if result != nil {
		t.Errorf("hover on unopened document returned %v, want nil", result)
	}
}

func TestReferencesFindsStepUsages(t *testing.T) {
	server, root := newTestServer(t)
	path := filepath.Join(root, "steps", "login.resource")
	u := openDocument(t, server, path, loginResource)

	// Cursor inside the keyword body.
	params, _ := json.Marshal(protocol.ReferenceParams{
		TextDocumentPositionParams: positionParams(u, 2, 4),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/references", Params: params,
	})
	if err != nil {
		t.Fatalf("references failed: %v", err)
	}

	locations, ok := result.([]protocol.Location)
	if !ok {
		t.Fatalf("result is %T, want []protocol.Location", result)
	}
	if len(locations) != 1 {
		t.Fatalf("got %d locations, want 1", len(locations))
	}
	if got := string(locations[0].URI); !strings.HasSuffix(got, "features/auth.feature") {
		t.Errorf("location URI = %s, want features/auth.feature", got)
	}
	if got, want := locations[0].Range.Start.Line, uint32(3); got != want {
		t.Errorf("location line = %d, want %d", got, want)
	}
}

func TestReferencesRequiresKeywordFile(t *testing.T) {
	server, root := newTestServer(t)
	path := filepath.Join(root, "features", "auth.feature")
	u := openDocument(t, server, path, authFeature)

	params, _ := json.Marshal(protocol.ReferenceParams{
		TextDocumentPositionParams: positionParams(u, 3, 10),
	})
	result, err := server.Handle(context.Background(), &Request{
		JSONRPC: "2.0", ID: rawID(2), Method: "textDocument/references", Params: params,
	})
	if err != nil {
		t.Fatalf("references failed: %v", err)
	}
	if result != nil {
		t.Errorf("references from a feature file returned %v, want nil", result)
	}
}

func TestDefinitionAt(t *testing.T) {
	defs := []*keyword.Definition{
		keyword.NewDefinition("first", "/p/steps/a.resource", 1),
		keyword.NewDefinition("second", "/p/steps/a.resource", 4),
	}
	tests := []struct {
		line int
		want string
	}{
		{1, "first"},
		{3, "first"},
		{4, "second"},
		{9, "second"},
		{0, ""},
	}
	for _, tt := range tests {
		got := ""
		if d := definitionAt(defs, tt.line); d != nil {
			got = d.Name
		}
		if got != tt.want {
			t.Errorf("definitionAt(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
