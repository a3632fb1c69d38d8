package models

import (
	"context"
	"errors"
	"fmt"
)

// Adapter error codes shared by every store.
const (
	CodeItemNotFound = "ItemNotFound"
	CodeTimeout      = "Timeout"
	CodeCanceled     = "RequestCanceled"
	CodeInternal     = "InternalError"
)

// AdapterError is the only error type an EventStore returns.
type AdapterError struct {
	Code    string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *AdapterError) Unwrap() error { return e.Err }

// NewAdapterError wraps err, deriving the code from context errors when
// the caller passes an empty code.
func NewAdapterError(code string, err error) *AdapterError {
	if code == "" {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			code = CodeTimeout
		case errors.Is(err, context.Canceled):
			code = CodeCanceled
		default:
			code = CodeInternal
		}
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &AdapterError{Code: code, Message: msg, Err: err}
}

func IsItemNotFound(err error) bool {
	var ae *AdapterError
	return errors.As(err, &ae) && ae.Code == CodeItemNotFound
}

func errItemNotFound(id string) *AdapterError {
	return &AdapterError{Code: CodeItemNotFound, Message: fmt.Sprintf("item %q does not exist", id)}
}

// ScanFilter restricts a scan to items whose Field equals Value.
type ScanFilter struct {
	Field string
	Value string
}

// EventStore is the boundary over the key-value store holding events.
type EventStore interface {
	// GetItem returns nil, nil when id is absent.
	GetItem(ctx context.Context, id string) (*EventItem, error)
	// PutItem writes item unconditionally, replacing any existing record.
	PutItem(ctx context.Context, item *EventItem) error
	// UpdateItem applies upd atomically and returns the record as stored
	// afterwards. It fails with CodeItemNotFound when id is absent.
	UpdateItem(ctx context.Context, id string, upd UpdateExpr) (*EventItem, error)
	// DeleteItem fails with CodeItemNotFound when id is absent.
	DeleteItem(ctx context.Context, id string) error
	// Scan returns at most limit items, in no particular order.
	Scan(ctx context.Context, filter *ScanFilter, limit int) ([]EventItem, error)
	Ping(ctx context.Context) error
	Name() string
}
