package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by who is responsible for it and whether a retry can help.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindEmbedding    Kind = "EMBEDDING"
	KindStore        Kind = "STORE"
	KindUpstream     Kind = "UPSTREAM"
	KindRetrieval    Kind = "RETRIEVAL"
	KindPendingIndex Kind = "PENDING_INDEX"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrEmbedding    = &Error{Kind: KindEmbedding}
	ErrStore        = &Error{Kind: KindStore}
	ErrUpstream     = &Error{Kind: KindUpstream}
	ErrRetrieval    = &Error{Kind: KindRetrieval}
	ErrPendingIndex = &Error{Kind: KindPendingIndex}
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == "" && t.Err == nil
}

// Retryable reports whether the caller may retry the operation with backoff.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindEmbedding, KindStore, KindUpstream, KindRetrieval, KindPendingIndex:
		return true
	}
	return false
}

func Validation(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFound(op string, id interface{}) error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("note %v not found", id)}
}

func Embedding(op string, err error) error {
	return &Error{Kind: KindEmbedding, Op: op, Message: "embedding failed", Err: err}
}

func Store(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Message: "vector store failed", Err: err}
}

func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Message: "completion engine failed", Err: err}
}

func Retrieval(op string, err error) error {
	return &Error{Kind: KindRetrieval, Op: op, Message: "notes could not be searched", Err: err}
}

func PendingIndex(op string, err error) error {
	return &Error{Kind: KindPendingIndex, Op: op, Message: "note left pending for reindex", Err: err}
}

// KindOf returns the Kind of the outermost *Error in the chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
