// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"

	"countries/config"
	"countries/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory sqlite database that is closed when
// the test ends.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.ConnectDatabase(&config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   ":memory:",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Country{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Int64(v int64) *int64 { return &v }

func Float64(v float64) *float64 { return &v }

func String(v string) *string { return &v }
