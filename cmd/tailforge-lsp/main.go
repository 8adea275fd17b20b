// Command tailforge-lsp is the diagnostics server of SPEC_FULL.md §C.6: it
// watches declaration-notation files, re-runs internal/layout on save, and
// publishes the resulting internal/errors.CompilerError values as LSP
// diagnostics. Grounded on the teacher's cmd/kanso-lsp/main.go and
// internal/lsp/handler.go.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserv "github.com/tliron/glsp/server"

	"tailforge/grammar"
	"tailforge/internal/config"
	"tailforge/internal/diagnostics"
	"tailforge/internal/module"
)

const serverName = "tailforge-lsp"

func main() {
	transport := flag.String("transport", "stdio", "transport to serve on: stdio or websocket")
	addr := flag.String("addr", "127.0.0.1:9257", "address to listen on for the websocket transport")
	configPath := flag.String("config", "tailforge.yaml", "path to the cost/heap configuration document")
	flag.Parse()

	commonlog.Configure(1, nil)
	log := commonlog.GetLogger(serverName)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailforge-lsp: loading config: %s\n", err)
		os.Exit(1)
	}

	h := newHandler(cfg, log)

	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	srv := glspserv.NewServer(&handler, serverName, false)

	switch *transport {
	case "stdio":
		if err := srv.RunStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "tailforge-lsp: %s\n", err)
			os.Exit(1)
		}
	case "websocket":
		if err := srv.RunWebSocket(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "tailforge-lsp: %s\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "tailforge-lsp: unknown transport %q (want stdio or websocket)\n", *transport)
		os.Exit(1)
	}
}

// handler implements protocol.Handler's subset this server needs: open,
// change, and close notifications drive a replan through the shared
// diagnostics.Cache and publish its diagnostics back to the client.
type handler struct {
	cache *diagnostics.Cache
	log   commonlog.Logger
}

func newHandler(cfg config.Config, log commonlog.Logger) *handler {
	return &handler{cache: diagnostics.NewCache(cfg), log: log}
}

func (h *handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.log.Info("initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	h.log.Info("initialized")
	return nil
}

func (h *handler) Shutdown(ctx *glsp.Context) error {
	h.log.Info("shutdown")
	return nil
}

func (h *handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.replanAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tailforge-lsp: reading %s: %w", path, err)
	}
	return h.replanAndPublish(ctx, params.TextDocument.URI, string(text))
}

func (h *handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.cache.Forget(path)
	return nil
}

// replanAndPublish parses source, lowers it to the module IR, replans it
// through the shared cache, and publishes whatever diagnostics result. Each
// replan's ksuid session id is logged alongside the URI so a slow or
// looping search on a pathological goal can be correlated across trace
// lines.
func (h *handler) replanAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, source string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	program, err := grammar.ParseString(path, source)
	if err != nil {
		publish(ctx, uri, []protocol.Diagnostic{diagnostics.FromParseError(err)})
		return nil
	}

	m, err := module.FromProgram(program)
	if err != nil {
		publish(ctx, uri, []protocol.Diagnostic{diagnostics.FromParseError(err)})
		return nil
	}

	sessionID, diags := h.cache.Replan(path, m)
	h.log.Infof("replanned %s session=%s diagnostics=%d", path, sessionID, len(diags))
	publish(ctx, uri, diags)
	return nil
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

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

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
