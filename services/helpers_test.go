package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hspace-portal/db/sqlite"
	"hspace-portal/models"
)

// newTestDB opens a migrated sqlite database in a temporary directory.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err, "failed to instantiate DB instance")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(), "failed to migrate DB instance")
	return db
}

func createUser(t *testing.T, db *sqlite.Database, name string) models.User {
	t.Helper()
	user := models.User{Username: name, PasswordHash: "hash"}
	require.NoError(t, db.CreateUser(context.Background(), &user))
	return user
}

func int64Ptr(v int64) *int64 { return &v }
