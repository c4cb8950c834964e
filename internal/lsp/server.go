package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/xoro/robotframework-gherkin-parser/internal/config"
	"github.com/xoro/robotframework-gherkin-parser/internal/index"
	"github.com/xoro/robotframework-gherkin-parser/internal/version"
	"github.com/xoro/robotframework-gherkin-parser/internal/workspace"
)

// Server handles LSP requests for Gherkin feature files and Robot
// Framework keyword files.
type Server struct {
	conn  *Conn
	cache *index.Cache

	// State
	mu          sync.RWMutex
	initialized bool
	shutdown    bool
	documents   map[protocol.DocumentURI]*Document
	rootPath    string

	// Callbacks
	onExit func()
}

// Document represents an open text document.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string
}

// NewServer creates a new LSP server with a default index cache.
func NewServer(onExit func()) *Server {
	return NewServerWithCache(onExit, index.NewCache(index.Options{}))
}

// NewServerWithCache creates a new LSP server backed by the given cache.
func NewServerWithCache(onExit func(), cache *index.Cache) *Server {
	return &Server{
		cache:     cache,
		documents: make(map[protocol.DocumentURI]*Document),
		onExit:    onExit,
	}
}

// SetConn sets the connection the server responds on.
func (s *Server) SetConn(conn *Conn) {
	s.conn = conn
}

// Handle implements Handler interface - routes requests to methods.
func (s *Server) Handle(ctx context.Context, req *Request) (any, error) {
	s.mu.RLock()
	shutdown := s.shutdown
	initialized := s.initialized
	s.mu.RUnlock()

	// Check shutdown state - only allow exit after shutdown
	if shutdown && req.Method != "exit" {
		return nil, &ResponseError{
			Code:    CodeInvalidRequest,
			Message: "server is shutting down",
		}
	}

	// Check initialization - only lifecycle methods allowed before initialize
	if !initialized {
		switch req.Method {
		case "initialize", "initialized", "shutdown", "exit":
			// Allowed before initialization
		default:
			return nil, &ResponseError{
				Code:    CodeInvalidRequest,
				Message: "server not initialized",
			}
		}
	}

	switch req.Method {
	// Lifecycle
	case "initialize":
		return s.handleInitialize(ctx, req.Params)
	case "initialized":
		return s.handleInitialized(ctx, req.Params)
	case "shutdown":
		return s.handleShutdown(ctx)
	case "exit":
		return s.handleExit(ctx)

	// Text document sync
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, req.Params)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, req.Params)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, req.Params)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, req.Params)

	// Language features
	case "textDocument/hover":
		return s.handleHover(ctx, req.Params)
	case "textDocument/definition":
		return s.handleDefinition(ctx, req.Params)
	case "textDocument/references":
		return s.handleReferences(ctx, req.Params)

	default:
		log.Printf("unhandled method: %s", req.Method)
		return nil, ErrMethodNotFound
	}
}

// --- Lifecycle methods ---

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("parsing initialize params: %w", err)
	}

	var rootURI protocol.DocumentURI
	if len(p.WorkspaceFolders) > 0 {
		rootURI = protocol.DocumentURI(p.WorkspaceFolders[0].URI)
	} else if p.RootURI != "" {
		rootURI = p.RootURI
	}

	s.mu.Lock()
	if rootURI != "" {
		s.rootPath = workspace.FindRoot(pathOf(rootURI))
	}
	root := s.rootPath
	s.mu.Unlock()

	// Workspace config may override the cache staleness window.
	if cfg, err := config.Load(root); err != nil {
		log.Printf("initialize: %v", err)
	} else if ttl := time.Duration(cfg.CacheTTL); ttl > 0 {
		s.mu.Lock()
		old := s.cache
		s.cache = index.NewCache(index.Options{TTL: ttl})
		s.mu.Unlock()
		if old != nil {
			old.Close()
		}
	}

	log.Printf("initialize: root=%s", root)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save: &protocol.SaveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			ReferencesProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "gherkinls",
			Version: version.Version,
		},
	}, nil
}

func (s *Server) handleInitialized(ctx context.Context, params json.RawMessage) (any, error) {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	log.Printf("initialized")
	return nil, nil
}

func (s *Server) handleShutdown(ctx context.Context) (any, error) {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	log.Printf("shutdown")
	return nil, nil
}

func (s *Server) handleExit(ctx context.Context) (any, error) {
	log.Printf("exit")
	if c := s.indexCache(); c != nil {
		c.Close()
	}
	if s.onExit != nil {
		s.onExit()
	}
	return nil, nil
}

// --- Text document sync ---

func (s *Server) handleDidOpen(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.documents[p.TextDocument.URI] = &Document{
		URI:     p.TextDocument.URI,
		Version: p.TextDocument.Version,
		Content: p.TextDocument.Text,
	}
	s.mu.Unlock()

	log.Printf("didOpen: %s", p.TextDocument.URI)
	return nil, nil
}

func (s *Server) handleDidChange(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if doc, ok := s.documents[p.TextDocument.URI]; ok {
		doc.Version = p.TextDocument.Version
		// Full sync - take the last change
		if len(p.ContentChanges) > 0 {
			doc.Content = p.ContentChanges[len(p.ContentChanges)-1].Text
		}
	}
	s.mu.Unlock()

	log.Printf("didChange: %s v%d", p.TextDocument.URI, p.TextDocument.Version)
	return nil, nil
}

func (s *Server) handleDidClose(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.documents, p.TextDocument.URI)
	s.mu.Unlock()

	log.Printf("didClose: %s", p.TextDocument.URI)
	return nil, nil
}

func (s *Server) handleDidSave(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	// Saves may carry the full text; keep our copy current when they do.
	if p.Text != "" {
		s.mu.Lock()
		if doc, ok := s.documents[p.TextDocument.URI]; ok {
			doc.Content = p.Text
		}
		s.mu.Unlock()
	}

	log.Printf("didSave: %s", p.TextDocument.URI)
	return nil, nil
}

// --- Shared helpers ---

// indexCache returns the cache the server is currently using.
func (s *Server) indexCache() *index.Cache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

// document returns a snapshot of the open document, or nil.
func (s *Server) document(u protocol.DocumentURI) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[u]
	if !ok {
		return nil
	}
	snapshot := *doc
	return &snapshot
}

// rootFor resolves the workspace root for a query originating in path.
// Falls back to marker search from the file's directory when the client
// supplied no workspace root. Empty means no root is resolvable and the
// query yields no result.
func (s *Server) rootFor(path string) string {
	s.mu.RLock()
	root := s.rootPath
	s.mu.RUnlock()
	if root != "" {
		return root
	}
	if path == "" {
		return ""
	}
	return workspace.FindRoot(filepath.Dir(path))
}

// pathOf converts a document URI to a filesystem path. Non-file URIs
// fall back to a prefix strip rather than panicking.
func pathOf(u protocol.DocumentURI) (path string) {
	defer func() {
		if recover() != nil {
			path = strings.TrimPrefix(string(u), "file://")
		}
	}()
	return uri.URI(u).Filename()
}

// fileURI converts a filesystem path to a document URI.
func fileURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}

// lineRange creates a zero-width Range at the start of a 0-based line.
func lineRange(line int) protocol.Range {
	if line < 0 {
		line = 0
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: 0},
		End:   protocol.Position{Line: uint32(line), Character: 0},
	}
}

// lineAt returns the 0-based line of content, or "" when out of range.
func lineAt(content string, line int) string {
	if line < 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if line >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line], "\r")
}
