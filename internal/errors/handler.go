package errors

import (
	stderrors "errors"
	"time"
)

// ProcessedError is an error prepared for display in the error pane.
// It decouples the error values of the lower layers from the UI.
type ProcessedError struct {
	Timestamp time.Time
	Message   string
	Code      string
	Details   string
	Severity  ErrorSeverity
	Hints     []RecoveryHint
}

// Handler turns errors into ProcessedError values.
type Handler struct{}

// NewHandler creates a new error handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Process prepares err for display. A nil error yields nil.
func (h *Handler) Process(err error) *ProcessedError {
	if err == nil {
		return nil
	}

	var ctxErr *ContextualError
	if !stderrors.As(err, &ctxErr) {
		return &ProcessedError{
			Timestamp: time.Now(),
			Message:   err.Error(),
			Severity:  SeverityMedium,
			Hints:     []RecoveryHint{{Key: "esc", Description: "dismiss"}},
		}
	}

	processed := &ProcessedError{
		Timestamp: ctxErr.Timestamp,
		Message:   ctxErr.GetUserMessage(),
		Code:      ctxErr.Code,
		Severity:  ctxErr.Severity,
		Hints:     ctxErr.GetRecoveryHints(),
	}
	if ctxErr.UserMessage != "" {
		processed.Details = ctxErr.Message
	}
	if ctxErr.Cause != nil {
		if processed.Details != "" {
			processed.Details += ": "
		}
		processed.Details += ctxErr.Cause.Error()
	}

	return processed
}
