// Package lsp implements a diagnostics-only language server: parse,
// lower, and verify a document on every open/change notification and
// republish whatever internal/diagnostics produces. It has no
// completion or semantic-token support; the teacher's LSP handler
// covered both, but LLL's surface is small enough that diagnostics are
// the only IDE feedback worth serving over the protocol for now.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"lll/internal/diagnostics"
	"lll/internal/lower"
	"lll/internal/parser"
	"lll/internal/verify"
)

// Handler implements the LSP server handlers for LLL. It re-reads a
// document's content from disk on every open/change notification rather
// than tracking the protocol's incremental change payloads, the same
// strategy the teacher's handler used.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler creates and returns a new Handler instance.
func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

// Initialize responds to the LSP client's initialize request and advertises
// the server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities
// and completes initialization.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("LLL LSP Initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("LLL LSP Shutdown")
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := h.Load(params.TextDocument.URI)
	if err != nil {
		return err
	}
	sendDiagnosticNotification(ctx, params.TextDocument.URI, toProtocolDiagnostics(h.Diagnose(path)))
	return nil
}

// TextDocumentDidChange handles file change notifications from the editor.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := h.Load(params.TextDocument.URI)
	if err != nil {
		return err
	}
	sendDiagnosticNotification(ctx, params.TextDocument.URI, toProtocolDiagnostics(h.Diagnose(path)))
	return nil
}

// Load reads uri's file content from disk into the handler's tracked set
// of open documents and returns its local path.
func (h *Handler) Load(uri protocol.DocumentUri) (string, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return "", fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	h.mu.Lock()
	h.content[path] = string(source)
	h.mu.Unlock()
	return path, nil
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// Diagnose parses, lowers, and verifies the document at path, returning the
// diagnostics a client should see. An empty, non-nil slice means the
// document is clean and any previously published diagnostics should be
// cleared.
func (h *Handler) Diagnose(path string) []diagnostics.Diagnostic {
	h.mu.RLock()
	source, ok := h.content[path]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	prog, err := parser.ParseSource(path, source)
	if err != nil {
		return []diagnostics.Diagnostic{diagnostics.FromParseError(err)}
	}

	irProg, errs := lower.Lower(prog)
	if len(errs) > 0 {
		return lowerDiagnostics(errs)
	}

	if errs := verify.Program(irProg); len(errs) > 0 {
		return verifyDiagnostics(errs)
	}

	return []diagnostics.Diagnostic{}
}

func lowerDiagnostics(errs []error) []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, 0, len(errs))
	for _, e := range errs {
		if lerr, ok := e.(*lower.Error); ok {
			out = append(out, diagnostics.FromLowerError(lerr))
			continue
		}
		out = append(out, diagnostics.Diagnostic{Level: diagnostics.Error, Message: e.Error()})
	}
	return out
}

func verifyDiagnostics(errs []error) []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, 0, len(errs))
	for _, e := range errs {
		if verr, ok := e.(*verify.Error); ok {
			out = append(out, diagnostics.FromVerifyError(verr))
			continue
		}
		out = append(out, diagnostics.Diagnostic{Level: diagnostics.Error, Message: e.Error()})
	}
	return out
}

// uriToPath converts a file:// URI to a platform-local file path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, ds []protocol.Diagnostic) {
	log.Printf("publishing %d diagnostic(s) for %s\n", len(ds), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: ds,
	})
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
