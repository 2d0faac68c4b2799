package errors

import (
	"errors"
	"sync"

	"github.com/conneroisu/viewfinder/internal/types"
)

// DiagnosticCollector collects the non-fatal problems found during one
// resolution call so they can be reported next to the output.
type DiagnosticCollector struct {
	diagnostics []types.Diagnostic
	mutex       sync.RWMutex
}

// NewDiagnosticCollector creates a new diagnostic collector
func NewDiagnosticCollector() *DiagnosticCollector {
	return &DiagnosticCollector{
		diagnostics: make([]types.Diagnostic, 0),
	}
}

// Add records a diagnostic
func (dc *DiagnosticCollector) Add(d types.Diagnostic) {
	dc.mutex.Lock()
	defer dc.mutex.Unlock()
	dc.diagnostics = append(dc.diagnostics, d)
}

// AddError converts a ViewError into a diagnostic. Errors that are not
// ViewErrors are recorded as read failures.
func (dc *DiagnosticCollector) AddError(err error) {
	if err == nil {
		return
	}

	d := types.Diagnostic{
		Kind:    types.DiagnosticReadFailure,
		Message: err.Error(),
	}

	var ve *ViewError
	if errors.As(err, &ve) {
		d.Template = ve.Template
		d.Target = ve.Target
		d.Message = ve.Message
		if ve.Cause != nil {
			d.Message += ": " + ve.Cause.Error()
		}
		switch ve.Code {
		case ErrCodeUnresolvedReference:
			d.Kind = types.DiagnosticUnresolvedReference
		case ErrCodeUnresolvedRoute:
			d.Kind = types.DiagnosticUnresolvedRoute
		case ErrCodeTemplateNotFound:
			d.Kind = types.DiagnosticTemplateNotFound
		}
	}

	dc.Add(d)
}

// GetDiagnostics returns all collected diagnostics
func (dc *DiagnosticCollector) GetDiagnostics() []types.Diagnostic {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()
	// Return a copy to avoid race conditions
	result := make([]types.Diagnostic, len(dc.diagnostics))
	copy(result, dc.diagnostics)
	return result
}

// GetByKind returns diagnostics of a specific kind
func (dc *DiagnosticCollector) GetByKind(kind types.DiagnosticKind) []types.Diagnostic {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()
	var matched []types.Diagnostic
	for _, d := range dc.diagnostics {
		if d.Kind == kind {
			matched = append(matched, d)
		}
	}
	return matched
}

// HasDiagnostics returns true if anything was collected
func (dc *DiagnosticCollector) HasDiagnostics() bool {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()
	return len(dc.diagnostics) > 0
}

// Clear clears all diagnostics
func (dc *DiagnosticCollector) Clear() {
	dc.mutex.Lock()
	defer dc.mutex.Unlock()
	dc.diagnostics = dc.diagnostics[:0]
}
