package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ezemirmul/estimator/internal/db"
)

// NewTestDB opens a private in-memory SQLite database with all migrations
// applied. The database is closed automatically when the test ends.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
