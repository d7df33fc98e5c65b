package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), ErrNotFound},
		{"exclusion violation", &pgconn.PgError{Code: "23P01"}, ErrConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, ErrNotFound},
		{"malformed uuid", &pgconn.PgError{Code: "22P02"}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, translate(tc.in))
		})
	}

	other := errors.New("connection refused")
	assert.Same(t, other, translate(other))
}

func TestNonNil(t *testing.T) {
	assert.NotNil(t, nonNil(nil))
	assert.Equal(t, []string{"spa"}, nonNil([]string{"spa"}))
}
