package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-memo/memo/internal/memoerrors"
)

// Standard JSON-RPC error codes.
const (
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// memo-specific error codes, in the same -320xx range the teacher reserved
// for its indexing tool failures.
const (
	ErrCodeNotFound        = -32001
	ErrCodeWrongContainer  = -32002
	ErrCodeStoreFailure    = -32003
	ErrCodeTimeout         = -32004
	ErrCodeFullyPrivate    = -32005
)

// MCPError is the JSON-RPC error shape every tool handler returns on
// failure instead of a bare error, so a client sees a stable code alongside
// the message.
type MCPError struct {
	Code    int
	Message string
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError builds the error a tool handler returns for a
// malformed or missing required argument.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError builds a method-not-found error for an unknown
// tool name.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: "unknown tool: " + name}
}

// MapError translates an engine error into an MCPError, dispatching on
// *memoerrors.MemoError's Kind when present and falling back to context
// and generic error classification otherwise.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var me *memoerrors.MemoError
	if errors.As(err, &me) {
		return mapMemoError(me)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: err.Error()}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapMemoError(me *memoerrors.MemoError) *MCPError {
	switch me.Kind {
	case memoerrors.KindInvalidInput:
		return &MCPError{Code: ErrCodeInvalidParams, Message: me.Message}
	case memoerrors.KindNotFound:
		return &MCPError{Code: ErrCodeNotFound, Message: me.Message}
	case memoerrors.KindWrongContainer:
		return &MCPError{Code: ErrCodeWrongContainer, Message: me.Message}
	case memoerrors.KindFullyPrivate:
		return &MCPError{Code: ErrCodeFullyPrivate, Message: me.Message}
	case memoerrors.KindEmbeddingTimeout:
		return &MCPError{Code: ErrCodeTimeout, Message: me.Message}
	case memoerrors.KindEmbeddingFailure, memoerrors.KindExtensionLoad,
		memoerrors.KindFullTextQueryError, memoerrors.KindIntegrityViolation:
		return &MCPError{Code: ErrCodeStoreFailure, Message: me.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: me.Message}
	}
}
