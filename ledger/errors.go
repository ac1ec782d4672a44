package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// The engine returns typed errors so callers can map them without
// string matching: validation (fix the input and retry), not found
// (outside the caller's scope), conflict (state moved, re-fetch), and
// integrity (the books are wrong, abort loudly). Any of these returned
// from inside a transaction closure aborts the whole transaction.

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

func integrityf(format string, args ...any) error {
	return &IntegrityError{Msg: fmt.Sprintf(format, args...)}
}

// IsUniqueViolation reports whether err is a unique-constraint breach.
// Postgres surfaces these as SQLSTATE 23505; the sqlite driver used in
// tests reports them by message.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
