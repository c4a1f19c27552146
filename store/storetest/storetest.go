// Package storetest provides migrated in-memory databases for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-lending/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// DSN returns a private in-memory sqlite DSN
func DSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

// NewDB opens a fresh in-memory sqlite database with every migration
// applied. The returned cleanup closes it.
func NewDB(t testing.TB) (*bun.DB, func()) {
	t.Helper()

	ctx := context.Background()
	db, err := store.Open(ctx, store.Options{Driver: store.DriverSQLite, DSN: DSN()}, nil)
	require.NoError(t, err)

	require.NoError(t, store.Migrate(ctx, db, nil))

	return db, func() {
		_ = db.Close()
	}
}
