package common

import (
	"errors"
	"fmt"

	"github.com/eventops/credenza/logger"
)

// Kind classifies failures into the stable categories the HTTP boundary
// translates into status codes. Services return kinded errors and never
// swallow them; controllers and middleware are the only translation layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindPermissionDenied
	KindValidation
	KindNotFound
	KindConflict
	KindTransaction
)

type kindedError struct {
	kind Kind
	msg  string
	row  int // 0 unless a bulk-import row error
}

func (e *kindedError) Error() string {
	if e.row > 0 {
		return fmt.Sprintf("row %d: %s", e.row, e.msg)
	}
	return e.msg
}

// NewUnauthenticated reports that no actor could be resolved.
func NewUnauthenticated(msg string) error {
	return &kindedError{kind: KindUnauthenticated, msg: msg}
}

// NewPermissionDenied reports a denied module/action check.
func NewPermissionDenied(module, action string) error {
	return &kindedError{
		kind: KindPermissionDenied,
		msg:  fmt.Sprintf("permission denied for module %q action %q", module, action),
	}
}

func NewValidation(msg string) error {
	return &kindedError{kind: KindValidation, msg: msg}
}

// NewRowValidation is a validation error pinned to a spreadsheet row as
// the operator sees it (header is row 1, first data row is row 2).
func NewRowValidation(row int, msg string) error {
	return &kindedError{kind: KindValidation, msg: msg, row: row}
}

func NewNotFound(msg string) error {
	return &kindedError{kind: KindNotFound, msg: msg}
}

func NewConflict(msg string) error {
	return &kindedError{kind: KindConflict, msg: msg}
}

// NewTransaction wraps a storage failure during a multi-statement
// operation. The cause is logged, never sent to clients; the caller may
// safely retry.
func NewTransaction(cause error) error {
	logger.Error("transaction failed:", cause)
	return &kindedError{kind: KindTransaction, msg: "storage transaction failed, retry the request"}
}

// KindOf returns the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var ke *kindedError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}

// RowOf returns the 1-based spreadsheet row a validation error points at,
// or 0 when the error is not row-scoped.
func RowOf(err error) int {
	var ke *kindedError
	if errors.As(err, &ke) {
		return ke.row
	}
	return 0
}

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

func NewError(a ...any) error {
	msg := fmt.Sprintln(a...)
	return errors.New(msg)
}

func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
