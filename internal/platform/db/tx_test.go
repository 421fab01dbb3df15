package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	conflict := fmt.Errorf("update: %w", &pgconn.PgError{Code: "40001"})

	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsUniqueViolation(conflict))
	require.True(t, IsSerializationFailure(conflict))
	require.False(t, IsSerializationFailure(fmt.Errorf("plain")))
}

func TestInTxWithoutTransaction(t *testing.T) {
	require.False(t, InTx(context.Background()))
}
