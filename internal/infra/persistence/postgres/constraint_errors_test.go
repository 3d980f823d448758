package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsTransactionConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "serialization failure", err: &pgconn.PgError{Code: pgSerializationFailure}, expected: true},
		{name: "deadlock", err: errors.Wrap(&pgconn.PgError{Code: pgDeadlockDetected}, "update staff"), expected: true},
		{name: "lock timeout", err: &pgconn.PgError{Code: pgLockNotAvailable}, expected: true},
		{name: "deadline exceeded", err: errors.Wrap(context.DeadlineExceeded, "claim"), expected: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgUniqueViolation}, expected: false},
		{name: "not found", err: gorm.ErrRecordNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, isTransactionConflict(tt.err))
		})
	}
}

func TestIsUniqueConstraintViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.WithStack(&pgconn.PgError{Code: pgUniqueViolation})))
	assert.False(t, isUniqueConstraintViolation(&pgconn.PgError{Code: pgCheckViolation}))
	assert.True(t, isCheckConstraintViolation(&pgconn.PgError{Code: pgCheckViolation}))
	assert.True(t, isForeignKeyConstraintViolation(&pgconn.PgError{Code: pgForeignKeyViolation}))
}
