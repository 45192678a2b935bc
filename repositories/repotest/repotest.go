// Package repotest opens throwaway in-memory databases for tests.
package repotest

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"murmur/config"
	"murmur/models"
	"murmur/repositories"
)

var seq atomic.Int64

// Open returns a migrated sqlite database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := repositories.Open(config.Database{Driver: "sqlite", URL: dsn})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// OpenPooled returns a migrated file-backed sqlite database that allows
// several connections at once, so concurrent callers really reach the
// database concurrently. Writers queue on sqlite's lock: BEGIN IMMEDIATE
// plus a busy timeout instead of failing with SQLITE_BUSY.
func OpenPooled(t testing.TB, conns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "murmur.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := repositories.Open(config.Database{Driver: "sqlite", URL: dsn})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}
