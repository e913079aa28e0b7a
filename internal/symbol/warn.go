package symbol

import (
	"fmt"
	"sync"
)

// WarningKind classifies a recoverable issue found during analysis.
type WarningKind uint8

const (
	WarnMalformedLine WarningKind = iota
	WarnUnresolvedSection
	WarnSizeMismatch
	WarnArchiveMember
	WarnNoSymbolTable
)

func (k WarningKind) String() string {
	switch k {
	case WarnMalformedLine:
		return "malformed line"
	case WarnUnresolvedSection:
		return "unresolved section"
	case WarnSizeMismatch:
		return "size mismatch"
	case WarnArchiveMember:
		return "archive member"
	case WarnNoSymbolTable:
		return "no symbol table"
	}
	return "warning"
}

// Warning is one recoverable issue. Warnings accumulate across the run and
// are surfaced alongside the report, never instead of it.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}

// Collector accumulates warnings. It is safe for use from the concurrent
// extraction stages.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

// Add records a warning.
func (c *Collector) Add(kind WarningKind, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// Warnings returns a copy of everything collected so far.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Len returns the number of collected warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}
