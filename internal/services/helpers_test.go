package services

import (
	"errors"
	"ixadmin/internal/database"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	var domain *Error
	require.True(t, errors.As(err, &domain))
	require.Equal(t, msg, domain.Message)
}

func ptrTo[T any](v T) *T { return &v }
