package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrNotPending = errors.New("booking is already confirmed")
)

// IsConflict reports an exclusion or unique constraint violation.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505")
}

// IsNotFound reports a missing row, a dangling foreign key or a malformed id.
func IsNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23503" || pgErr.Code == "22P02")
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return ErrNotFound
	case IsConflict(err):
		return ErrConflict
	default:
		return err
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
