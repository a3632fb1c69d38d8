package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshua-takyi/events-api/internal/models"
)

type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindNotFound
	KindServiceUnavailable
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrStorage            = &Error{Kind: KindStorage}
)

// Error is what the service returns for every failure other than
// models.ValidationErrors. Detail is safe to show to clients; Err is kept
// for logs only.
type Error struct {
	Kind   Kind
	Detail string
	Code   string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

const detailUnavailable = "Database service is unavailable"

func unavailable() *Error {
	return &Error{Kind: KindServiceUnavailable, Detail: detailUnavailable}
}

func invalidArgument(detail string) *Error {
	return &Error{Kind: KindInvalidArgument, Detail: detail}
}

func notFound(id string) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf("Event with ID %s not found", id)}
}

func storageError(code string, err error) *Error {
	return &Error{Kind: KindStorage, Detail: "Database error: " + code, Code: code, Err: err}
}

// classify maps a store failure into the service taxonomy. id is used for
// the not-found detail.
func classify(id string, err error) error {
	if err == nil {
		return nil
	}
	var ae *models.AdapterError
	switch {
	case errors.As(err, &ae) && ae.Code == models.CodeItemNotFound:
		return &Error{Kind: KindNotFound, Detail: notFound(id).Detail, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return storageError(models.CodeTimeout, err)
	case errors.Is(err, context.Canceled):
		return storageError(models.CodeCanceled, err)
	case errors.As(err, &ae):
		return storageError(ae.Code, err)
	default:
		return storageError(models.CodeInternal, err)
	}
}
