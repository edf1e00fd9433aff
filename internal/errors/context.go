// Package errors provides error context and propagation for the collapse
// viewer. It implements structured errors that keep diagnostic context and
// suggest how the user can recover from them.
package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/universal-console/collapse/internal/logging"
)

// ErrorType categorizes different types of errors for appropriate handling
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeContent       ErrorType = "content"
	ErrorTypeMeasurement   ErrorType = "measurement"
	ErrorTypeRender        ErrorType = "render"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeRuntime       ErrorType = "runtime"
	ErrorTypeUserInterface ErrorType = "ui"
)

// ErrorSeverity indicates the impact level of an error
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// RecoveryHint is a key the user can press to recover, with a description
type RecoveryHint struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// ContextualError provides enhanced error information with diagnostic context
type ContextualError struct {
	Type        ErrorType              `json:"type"`
	Severity    ErrorSeverity          `json:"severity"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage,omitempty"`
	Code        string                 `json:"code,omitempty"`
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	StackTrace  []string               `json:"stackTrace,omitempty"`
	Cause       error                  `json:"-"`
	Recoverable bool                   `json:"recoverable"`
	Hints       []RecoveryHint         `json:"hints,omitempty"`
}

// Error implements the error interface
func (e *ContextualError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Type, e.Message)
}

// Unwrap provides access to the underlying error
func (e *ContextualError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns a user-friendly error message
func (e *ContextualError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// IsRecoverable indicates if the error can potentially be resolved
func (e *ContextualError) IsRecoverable() bool {
	return e.Recoverable
}

// GetRecoveryHints returns suggested keys for error recovery
func (e *ContextualError) GetRecoveryHints() []RecoveryHint {
	if len(e.Hints) > 0 {
		return e.Hints
	}

	// Generate default hints based on error type
	switch e.Type {
	case ErrorTypeConfiguration:
		return []RecoveryHint{
			{Key: "q", Description: "quit and edit the configuration file"},
		}
	case ErrorTypeContent, ErrorTypeValidation:
		return []RecoveryHint{
			{Key: "r", Description: "reload documents"},
			{Key: "q", Description: "quit"},
		}
	default:
		return []RecoveryHint{
			{Key: "esc", Description: "dismiss"},
		}
	}
}

// ErrorBuilder provides a fluent interface for creating contextual errors
type ErrorBuilder struct {
	err          *ContextualError
	logger       *logging.Logger
	captureStack bool
}

// NewErrorBuilder creates a new error builder with default settings
func NewErrorBuilder(errorType ErrorType, component string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &ContextualError{
			Type:        errorType,
			Severity:    SeverityMedium,
			Component:   component,
			Context:     make(map[string]interface{}),
			Timestamp:   time.Now(),
			Recoverable: true,
		},
		logger:       logging.GetGlobalLogger().WithComponent(component),
		captureStack: true,
	}
}

// WithSeverity sets the error severity level
func (eb *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	eb.err.Severity = severity
	return eb
}

// WithMessage sets the technical error message
func (eb *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	eb.err.Message = message
	return eb
}

// WithUserMessage sets a user-friendly error message
func (eb *ErrorBuilder) WithUserMessage(userMessage string) *ErrorBuilder {
	eb.err.UserMessage = userMessage
	return eb
}

// WithCode sets an error code for categorization
func (eb *ErrorBuilder) WithCode(code string) *ErrorBuilder {
	eb.err.Code = code
	return eb
}

// WithOperation sets the operation that failed
func (eb *ErrorBuilder) WithOperation(operation string) *ErrorBuilder {
	eb.err.Operation = operation
	return eb
}

// WithCause sets the underlying error that caused this error
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.err.Cause = cause
	return eb
}

// WithContext adds contextual information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.err.Context[key] = value
	return eb
}

// WithRecoverable sets whether the error is recoverable
func (eb *ErrorBuilder) WithRecoverable(recoverable bool) *ErrorBuilder {
	eb.err.Recoverable = recoverable
	return eb
}

// WithHints sets custom recovery hints
func (eb *ErrorBuilder) WithHints(hints ...RecoveryHint) *ErrorBuilder {
	eb.err.Hints = hints
	return eb
}

// WithLogger overrides the logger used by Build
func (eb *ErrorBuilder) WithLogger(logger *logging.Logger) *ErrorBuilder {
	if logger != nil {
		eb.logger = logger
	}
	return eb
}

// WithoutStackTrace disables stack trace capture
func (eb *ErrorBuilder) WithoutStackTrace() *ErrorBuilder {
	eb.captureStack = false
	return eb
}

// Build creates the contextual error and logs it appropriately
func (eb *ErrorBuilder) Build() *ContextualError {
	if eb.captureStack {
		eb.err.StackTrace = captureStackTrace(3) // Skip Build, caller, and runtime frames
	}

	// Log the error with appropriate level based on severity
	logFields := map[string]interface{}{
		"error_type":  eb.err.Type,
		"severity":    eb.err.Severity,
		"operation":   eb.err.Operation,
		"recoverable": eb.err.Recoverable,
		"error_code":  eb.err.Code,
	}

	for k, v := range eb.err.Context {
		logFields["ctx_"+k] = v
	}

	logMessage := eb.err.Message
	if eb.err.Cause != nil {
		logMessage = fmt.Sprintf("%s: %v", eb.err.Message, eb.err.Cause)
	}

	loggerWithFields := eb.logger.WithFields(logFields)

	switch eb.err.Severity {
	case SeverityCritical, SeverityHigh:
		loggerWithFields.Error(logMessage)
	case SeverityMedium:
		loggerWithFields.Warn(logMessage)
	case SeverityLow:
		loggerWithFields.Info(logMessage)
	}

	return eb.err
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) []string {
	var traces []string
	for i := skip; i < skip+10; i++ { // Capture up to 10 frames
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		funcName := "unknown"
		if fn != nil {
			funcName = fn.Name()
		}

		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}

		traces = append(traces, fmt.Sprintf("%s:%d %s", file, line, funcName))
	}
	return traces
}

// Component-specific error builders
func NewConfigurationError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeConfiguration, component).WithSeverity(SeverityHigh)
}

func NewContentError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeContent, component).WithSeverity(SeverityMedium)
}

func NewMeasurementError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeMeasurement, component).WithSeverity(SeverityLow)
}

func NewRenderError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeRender, component).WithSeverity(SeverityMedium)
}

func NewValidationError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeValidation, component).WithSeverity(SeverityMedium)
}

func NewRuntimeError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeRuntime, component).WithSeverity(SeverityHigh)
}

func NewUIError(component string) *ErrorBuilder {
	return NewErrorBuilder(ErrorTypeUserInterface, component).WithSeverity(SeverityLow)
}

// ErrorChain represents a sequence of related errors
type ErrorChain struct {
	errors []error
	logger *logging.Logger
}

// NewErrorChain creates a new error chain
func NewErrorChain(logger *logging.Logger) *ErrorChain {
	return &ErrorChain{
		errors: make([]error, 0),
		logger: logger,
	}
}

// Add appends an error to the chain
func (ec *ErrorChain) Add(err error) *ErrorChain {
	if err != nil {
		ec.errors = append(ec.errors, err)
		if ec.logger != nil {
			ec.logger.Debug("Error added to chain", "error", err.Error(), "chain_length", len(ec.errors))
		}
	}
	return ec
}

// HasErrors returns true if the chain contains any errors
func (ec *ErrorChain) HasErrors() bool {
	return len(ec.errors) > 0
}

// GetErrors returns all errors in the chain
func (ec *ErrorChain) GetErrors() []error {
	return ec.errors
}

// GetFirst returns the first error in the chain
func (ec *ErrorChain) GetFirst() error {
	if len(ec.errors) > 0 {
		return ec.errors[0]
	}
	return nil
}

// ToCombinedError creates a single error that represents the entire chain
func (ec *ErrorChain) ToCombinedError(errorType ErrorType, component string) *ContextualError {
	if !ec.HasErrors() {
		return nil
	}

	messages := make([]string, len(ec.errors))
	for i, err := range ec.errors {
		messages[i] = err.Error()
	}

	builder := NewErrorBuilder(errorType, component).
		WithMessage(fmt.Sprintf("Multiple errors occurred: %s", strings.Join(messages, "; "))).
		WithUserMessage(fmt.Sprintf("%d errors occurred during operation", len(ec.errors))).
		WithCause(ec.GetFirst()).
		WithContext("error_count", len(ec.errors)).
		WithContext("all_errors", messages)
	if ec.logger != nil {
		builder = builder.WithLogger(ec.logger)
	}
	return builder.Build()
}
