// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/silvioaquino/Gestao-PDV/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NovoBanco returns a migrated in-memory SQLite database private to t.
func NovoBanco(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "sqlite:file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
