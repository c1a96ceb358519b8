package market

import (
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/storage"
)

// setupTestDB creates a migrated database in a temp dir
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := storage.InitDB(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func price(v float64) *float64 { return &v }

// countingCalls is embedded by fakes that need to report how often they were hit
type countingCalls struct {
	calls atomic.Int32
}

func (c *countingCalls) hit() { c.calls.Add(1) }

func (c *countingCalls) count() int { return int(c.calls.Load()) }
