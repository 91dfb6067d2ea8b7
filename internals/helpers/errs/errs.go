// file: internals/helpers/errs/errs.go
package errs

import (
	"errors"
	"fmt"
)

// Kind mengelompokkan error domain supaya layer HTTP bisa map ke status code
// tanpa service tahu soal fiber.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation     // input malformed / tidak memenuhi syarat (unenrolled, stale event)
	KindState          // transisi ilegal atau write ke sesi non-Open
	KindNotFound       // sesi/mahasiswa/periode tidak dikenal
	KindConflict       // kalah race compare-and-swap; caller boleh retry
	KindConsistency    // konflik sync ambigu; dipersist sebagai SyncConflict
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

/* ===============================
   Shorthand constructors
=================================*/

func Validation(message string) *Error  { return New(KindValidation, message) }
func State(message string) *Error       { return New(KindState, message) }
func NotFound(message string) *Error    { return New(KindNotFound, message) }
func Conflict(message string) *Error    { return New(KindConflict, message) }
func Consistency(message string) *Error { return New(KindConsistency, message) }

// KindOf: ambil Kind dari error (termasuk yang di-wrap). Error non-domain = internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
