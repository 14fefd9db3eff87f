package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("load: %w", &pgconn.PgError{Code: CodeUndefinedTable})
	assert.True(t, HasCode(err, CodeUndefinedTable))
	assert.False(t, HasCode(err, CodeUniqueViolation))
	assert.False(t, HasCode(errors.New("plain"), CodeUndefinedTable))
}

func TestReadyCheck(t *testing.T) {
	assert.EqualError(t, ReadyCheck(nil)(context.Background()), "db not configured")
	var empty *Pool
	assert.EqualError(t, ReadyCheck(empty)(context.Background()), "db not configured")

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()
	require.NoError(t, ReadyCheck(mock)(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
