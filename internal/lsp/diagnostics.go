package lsp

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"lll/internal/diagnostics"
)

// toProtocolDiagnostics converts internal/diagnostics.Diagnostic values,
// shared with cmd/lllc's error reporting, into the wire format the LSP
// protocol expects.
func toProtocolDiagnostics(ds []diagnostics.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		length := d.Length
		if length <= 0 {
			length = 1
		}

		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      zeroBased(d.Position.Line),
					Character: zeroBased(d.Position.Column),
				},
				End: protocol.Position{
					Line:      zeroBased(d.Position.Line),
					Character: zeroBased(d.Position.Column) + uint32(length),
				},
			},
			Severity: ptrSeverity(toProtocolSeverity(d.Level)),
			Source:   ptrString("lllc"),
			Message:  formatMessage(d),
		})
	}
	return out
}

// formatMessage folds d.Code into the message text itself, since the LSP
// protocol's own Diagnostic.Code field type varies across glsp versions and
// the teacher's handler never set it either.
func formatMessage(d diagnostics.Diagnostic) string {
	if d.Code == "" {
		return d.Message
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

func zeroBased(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32(n - 1)
}

func toProtocolSeverity(level diagnostics.Level) protocol.DiagnosticSeverity {
	switch level {
	case diagnostics.Error:
		return protocol.DiagnosticSeverityError
	case diagnostics.Warning:
		return protocol.DiagnosticSeverityWarning
	case diagnostics.Note:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
