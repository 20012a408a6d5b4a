// Package toolerrors provides a structured error type shared by the action
// pipeline, the LLM invoker and the back-office client. ToolError preserves
// causal chains so that failures surfaced as feedback text to the model can
// still be inspected with errors.Is/As by callers that need to tell a
// transport failure apart from a validation failure.
package toolerrors

import (
	"errors"
	"fmt"
)

// ToolError is a structured failure with an optional underlying cause. The
// cause is itself a *ToolError so the chain survives logging and the
// round-trip through per-task feedback text.
type ToolError struct {
	// Message is the human-readable summary, and what Error() returns.
	Message string
	// Cause links to the underlying tool error, if any.
	Cause *ToolError
	// Kind classifies the failure for callers that branch on it (see the
	// Kind* constants); empty means "unclassified".
	Kind Kind
}

// Kind is the taxonomy from the error-handling design: which of the
// recognized failure categories a ToolError belongs to.
type Kind string

const (
	KindUnclassified       Kind = ""
	KindParseCorruption    Kind = "json_corruption"
	KindParseTruncation    Kind = "json_truncation"
	KindMalformedShape     Kind = "malformed_shape"
	KindUnknownTool        Kind = "unknown_tool"
	KindPlaceholder        Kind = "placeholder_args"
	KindValidation         Kind = "validation"
	KindDispatchFailure    Kind = "dispatch_failure"
	KindBlocked            Kind = "blocked"
	KindTransportTransient Kind = "llm_transient"
	KindTransportFatal     Kind = "llm_fatal"
	KindLoop               Kind = "loop_detected"
	KindBudgetExhausted    Kind = "budget_exhausted"
)

// New constructs a ToolError with the given message and no cause.
func New(message string) *ToolError {
	if message == "" {
		message = "tool error"
	}
	return &ToolError{Message: message}
}

// NewKind constructs a ToolError with the given message and Kind.
func NewKind(kind Kind, message string) *ToolError {
	e := New(message)
	e.Kind = kind
	return e
}

// NewWithCause constructs a ToolError wrapping an underlying error. The
// cause is converted into a ToolError chain via FromError so the chain
// survives serialization while still supporting errors.Is/As via Unwrap.
func NewWithCause(message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{
		Message: message,
		Cause:   FromError(cause),
	}
}

// FromError converts an arbitrary error into a ToolError chain, reusing an
// existing ToolError if err already is (or wraps) one.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{
		Message: err.Error(),
		Cause:   FromError(errors.Unwrap(err)),
	}
}

// Errorf formats a message and returns it as a ToolError.
func Errorf(format string, args ...any) *ToolError {
	return New(fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying cause to support errors.Is/As.
func (e *ToolError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target has the same Kind, when target is itself a
// *ToolError with a non-empty Kind. This lets callers write
// errors.Is(err, toolerrors.NewKind(toolerrors.KindUnknownTool, "")).
func (e *ToolError) Is(target error) bool {
	var te *ToolError
	if !errors.As(target, &te) || te == nil || te.Kind == "" {
		return false
	}
	return e != nil && e.Kind == te.Kind
}
