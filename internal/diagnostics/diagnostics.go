// Package diagnostics is the thin presentation layer of SPEC_FULL.md §C.6:
// it turns internal/errors.CompilerError values produced by internal/layout
// into LSP protocol.Diagnostic values, and caches the last layout.Result per
// file behind a deadlock-instrumented lock so concurrent LSP requests (a
// hover or a completion arriving mid-replan) never race the cache.
//
// This is presentation only — it never interprets or debugs the target
// language, per spec.md's Non-goals.
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/sasha-s/go-deadlock"
	"github.com/segmentio/ksuid"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tailforge/internal/config"
	tferrors "tailforge/internal/errors"
	"tailforge/internal/layout"
	"tailforge/internal/module"
)

const source = "tailforge-layout"

// FromCompilerError converts a single internal/errors.CompilerError into an
// LSP Diagnostic, shifting its 1-based line/column to the 0-based
// convention protocol.Position uses.
func FromCompilerError(ce tferrors.CompilerError) protocol.Diagnostic {
	line := uint32(0)
	if ce.Position.Line > 0 {
		line = uint32(ce.Position.Line - 1)
	}
	col := uint32(0)
	if ce.Position.Column > 0 {
		col = uint32(ce.Position.Column - 1)
	}
	length := uint32(ce.Length)
	if length == 0 {
		length = 1
	}

	severity := severityFor(ce.Level)
	message := ce.Message
	if ce.Code != "" {
		message = fmt.Sprintf("[%s] %s", ce.Code, ce.Message)
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + length},
		},
		Severity: ptrSeverity(severity),
		Source:   ptrString(source),
		Message:  message,
	}
}

func severityFor(level tferrors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case tferrors.Warning:
		return protocol.DiagnosticSeverityWarning
	case tferrors.Note:
		return protocol.DiagnosticSeverityInformation
	case tferrors.Help:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

// FromParseError converts a declaration-notation parse failure (a plain
// error, usually a participle.Error) into a single Diagnostic anchored at
// line 1, column 1; the error's own position, if it has one, is not used.
func FromParseError(err error) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("tailforge-parser"),
		Message:  err.Error(),
	}
}

// FromLayoutError converts whatever internal/layout.Build returned on
// failure into the diagnostics it should produce: a wrapped
// tferrors.CompilerError unwraps to exactly one Diagnostic; anything else
// (a malformed module that never reached the planner) becomes a single
// generic Diagnostic so the client always gets feedback.
func FromLayoutError(err error) []protocol.Diagnostic {
	var ce tferrors.CompilerError
	if errors.As(err, &ce) {
		return []protocol.Diagnostic{FromCompilerError(ce)}
	}
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString(source),
		Message:  err.Error(),
	}}
}

// Cache holds the most recent layout.Result (or failure) per file path.
// glsp dispatches each client request on its own goroutine, so every entry
// point into the cache goes through the deadlock-instrumented mutex rather
// than a bare sync.RWMutex, matching the corpus's preference for
// deadlock-instrumented locks on a long-lived shared server cache.
type Cache struct {
	mu      deadlock.RWMutex
	results map[string]*Entry
	cfg     config.Config
}

// Entry is one file's last replan outcome: either a Result, or the
// Diagnostics produced from its failure.
type Entry struct {
	SessionID   string
	Result      *layout.Result
	Diagnostics []protocol.Diagnostic
}

// NewCache builds an empty cache using cfg's weights and bump contract for
// every replan.
func NewCache(cfg config.Config) *Cache {
	return &Cache{results: make(map[string]*Entry), cfg: cfg}
}

// Replan lays out m (already parsed into the module IR by the
// caller), stores the outcome under path, and returns the diagnostics the
// client should be shown (empty on success). Each replan is tagged with a
// fresh ksuid so a slow or looping search can be correlated across
// commonlog trace lines by the caller.
func (c *Cache) Replan(path string, m *module.Module) (sessionID string, diags []protocol.Diagnostic) {
	sessionID = ksuid.New().String()

	result, err := layout.Build(m, layout.CodeStart, c.cfg.BumpContract(), c.cfg.Weights())

	entry := &Entry{SessionID: sessionID}
	if err != nil {
		entry.Diagnostics = FromLayoutError(err)
	} else {
		entry.Result = result
	}

	c.mu.Lock()
	c.results[path] = entry
	c.mu.Unlock()

	return sessionID, entry.Diagnostics
}

// Get returns the last cached entry for path, if any.
func (c *Cache) Get(path string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.results[path]
	return e, ok
}

// Forget drops path's cached entry, used on file close.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, path)
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
