package memoerrors

import "fmt"

// MemoError is the structured error type returned by store, embed, search,
// and importer operations.
type MemoError struct {
	// Kind is the fixed failure-mode classification.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Details contains additional context as key-value pairs (container
	// tag, record id, offending query fragment, ...).
	Details map[string]string

	// Cause is the underlying error that produced this one, if any.
	Cause error

	// Suggestion is an actionable hint shown to the caller, if any.
	Suggestion string
}

// Error implements the error interface.
func (e *MemoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *MemoError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, &MemoError{Kind: KindNotFound}) match any
// MemoError of the same Kind, independent of message or cause.
func (e *MemoError) Is(target error) bool {
	t, ok := target.(*MemoError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether the failing operation is generally worth
// retrying without caller intervention.
func (e *MemoError) Retryable() bool {
	return e.Kind.retryable()
}

// WithDetail attaches a key-value detail and returns the error for chaining.
func (e *MemoError) WithDetail(key, value string) *MemoError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion attaches an actionable hint and returns the error for
// chaining.
func (e *MemoError) WithSuggestion(suggestion string) *MemoError {
	e.Suggestion = suggestion
	return e
}

// New creates a MemoError of the given Kind.
func New(kind Kind, message string) *MemoError {
	return &MemoError{Kind: kind, Message: message}
}

// Wrap creates a MemoError of the given Kind from an existing error,
// reusing its message. Returns nil if err is nil, so call sites can write
// `return memoerrors.Wrap(KindEmbeddingFailure, err)` unconditionally.
func Wrap(kind Kind, err error) *MemoError {
	if err == nil {
		return nil
	}
	return &MemoError{Kind: kind, Message: err.Error(), Cause: err}
}

// InvalidInput creates a KindInvalidInput error.
func InvalidInput(message string) *MemoError {
	return New(KindInvalidInput, message)
}

// FullyPrivate creates a KindFullyPrivate error.
func FullyPrivate(message string) *MemoError {
	return New(KindFullyPrivate, message)
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *MemoError {
	return New(KindNotFound, message)
}

// WrongContainer creates a KindWrongContainer error.
func WrongContainer(message string) *MemoError {
	return New(KindWrongContainer, message)
}

// ExtensionLoad creates a KindExtensionLoad error wrapping cause.
func ExtensionLoad(message string, cause error) *MemoError {
	return &MemoError{Kind: KindExtensionLoad, Message: message, Cause: cause}
}

// FullTextQueryError creates a KindFullTextQueryError error wrapping cause.
func FullTextQueryError(message string, cause error) *MemoError {
	return &MemoError{Kind: KindFullTextQueryError, Message: message, Cause: cause}
}

// EmbeddingTimeout creates a KindEmbeddingTimeout error.
func EmbeddingTimeout(message string) *MemoError {
	return New(KindEmbeddingTimeout, message)
}

// EmbeddingFailure creates a KindEmbeddingFailure error wrapping cause.
func EmbeddingFailure(message string, cause error) *MemoError {
	return &MemoError{Kind: KindEmbeddingFailure, Message: message, Cause: cause}
}

// IntegrityViolation creates a KindIntegrityViolation error.
func IntegrityViolation(message string) *MemoError {
	return New(KindIntegrityViolation, message)
}

// Is reports whether err is a *MemoError of the given Kind.
func Is(err error, kind Kind) bool {
	me, ok := err.(*MemoError)
	if !ok {
		return false
	}
	return me.Kind == kind
}

// KindOf extracts the Kind from err, returning "" if err is not a
// *MemoError.
func KindOf(err error) Kind {
	if me, ok := err.(*MemoError); ok {
		return me.Kind
	}
	return ""
}
