package loaders

import "fmt"

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

type DiagnosticCode string

/** @brief Recoveries the mesh decoder can apply to damaged input. */
const (
	/** @brief The name ended before its declared length. */
	DiagNameTruncated DiagnosticCode = "name-truncated"
	/** @brief A vertex attribute was shorter than vertexCount required. */
	DiagAttributeTruncated DiagnosticCode = "attribute-truncated"
	/** @brief NaN or infinite floats were replaced by zero. */
	DiagNonFiniteReplaced DiagnosticCode = "non-finite-replaced"
	/** @brief The index buffer was shorter than indexCount required. */
	DiagIndicesTruncated DiagnosticCode = "indices-truncated"
	/** @brief The submesh table ended mid-record or was missing. */
	DiagSubmeshTableTruncated DiagnosticCode = "submesh-table-truncated"
	/** @brief No submesh was stored so one covering all indices was added. */
	DiagSubmeshSynthesized DiagnosticCode = "submesh-synthesized"
)

// Diagnostic records one recovery applied while decoding an asset.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Message  string
	// Count is the number of affected values, or 1 for a single event.
	Count int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s (%d)", d.Severity, d.Code, d.Message, d.Count)
}

type Diagnostics []Diagnostic

func (ds *Diagnostics) add(severity Severity, code DiagnosticCode, count int, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Severity: severity, Code: code, Message: fmt.Sprintf(format, args...), Count: count})
}

// Has reports whether any diagnostic carries code.
func (ds Diagnostics) Has(code DiagnosticCode) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Count sums the counts of every diagnostic carrying code.
func (ds Diagnostics) Count(code DiagnosticCode) int {
	total := 0
	for _, d := range ds {
		if d.Code == code {
			total += d.Count
		}
	}
	return total
}
