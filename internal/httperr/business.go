package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind groups business errors by how callers must react to them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindGateway    Kind = "gateway"
	KindState      Kind = "state"
	KindSignature  Kind = "signature"
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e BusinessError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error { return e.Err }

func newErr(kind Kind, code, message string) error {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) error { return newErr(KindValidation, code, message) }
func NotFound(code, message string) error   { return newErr(KindNotFound, code, message) }
func Forbidden(code, message string) error  { return newErr(KindForbidden, code, message) }
func Conflict(code, message string) error   { return newErr(KindConflict, code, message) }
func State(code, message string) error      { return newErr(KindState, code, message) }
func Signature(code, message string) error  { return newErr(KindSignature, code, message) }

// Gateway wraps a provider failure. The cause is kept for logs and never
// rendered to clients.
func Gateway(code string, cause error) error {
	return BusinessError{
		Kind:    KindGateway,
		Code:    code,
		Message: "Payment provider unavailable, try again.",
		Err:     cause,
	}
}

func As(err error) (BusinessError, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return BusinessError{}, false
}

func IsBusiness(err error, code string) bool {
	be, ok := As(err)
	return ok && be.Code == code
}

func IsKind(err error, kind Kind) bool {
	be, ok := As(err)
	return ok && be.Kind == kind
}

const pgExclusionViolation = "23P01"

// IsExclusionConflict reports whether postgres rejected a row because of an
// EXCLUDE constraint (overlapping appointment windows).
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}
