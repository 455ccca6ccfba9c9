package users

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestDuplicateEmailMatchesUniqueConstraint(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: uniqueEmailConstraint,
	})
	require.True(t, duplicateEmail(err))
}

func TestDuplicateEmailIgnoresOtherErrors(t *testing.T) {
	require.False(t, duplicateEmail(errors.New("connection reset")))
	require.False(t, duplicateEmail(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_name"}))
	require.False(t, duplicateEmail(&pgconn.PgError{Code: "23503", ConstraintName: uniqueEmailConstraint}))
}
