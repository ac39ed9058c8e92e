// SPDX-License-Identifier: Apache-2.0

package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshamis85/pgupgrader/pkg/db"
	"github.com/mshamis85/pgupgrader/pkg/options"
	"github.com/mshamis85/pgupgrader/pkg/store"
	"github.com/mshamis85/pgupgrader/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

// holdAdvisoryLock grabs the advisory lock store.InitUpgradersTable
// serializes first-time table creation on, from a separate connection, and
// releases it after d. The literal lock ID must stay in sync with
// store.go's unexported advisoryLockID constant.
func holdAdvisoryLock(t *testing.T, connStr string, d time.Duration) {
	t.Helper()
	ctx := context.Background()

	holderConn, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = holderConn.Close() })

	tx, err := holderConn.Begin()
	require.NoError(t, err)

	_, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(42004200)")
	require.NoError(t, err)

	go func() {
		time.Sleep(d)
		_ = tx.Commit()
	}()
}

// TestInitUpgradersTableRetriesOnAdvisoryLockContention proves that
// store.InitUpgradersTable, now routed through db.RDB.WithRetryableTransaction,
// survives a lock_timeout that trips while two concurrent first-run
// processes race on the advisory lock: db.RDB's retry is what lets the
// second caller converge instead of surfacing 55P03.
func TestInitUpgradersTableRetriesOnAdvisoryLockContention(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(sqlDB *sql.DB, connStr string) {
		ctx := context.Background()

		holdAdvisoryLock(t, connStr, 500*time.Millisecond)

		conn, err := sqlDB.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.ExecContext(ctx, "SET lock_timeout = '100ms'")
		require.NoError(t, err)

		rdb := &db.RDB{DB: conn}
		require.NoError(t, store.InitUpgradersTable(ctx, rdb, ""))

		var exists bool
		row := sqlDB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = '$upgraders$')")
		require.NoError(t, row.Scan(&exists))
		assert.True(t, exists)
	})
}

// TestInitUpgradersTableWhenContextCancelled proves a cancelled context
// aborts db.RDB's retry loop instead of retrying forever.
func TestInitUpgradersTableWhenContextCancelled(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(sqlDB *sql.DB, connStr string) {
		ctx, cancel := context.WithCancel(context.Background())

		holdAdvisoryLock(t, connStr, 2*time.Second)

		conn, err := sqlDB.Conn(context.Background())
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.ExecContext(context.Background(), "SET lock_timeout = '100ms'")
		require.NoError(t, err)

		go time.AfterFunc(300*time.Millisecond, cancel)

		rdb := &db.RDB{DB: conn}
		err = store.InitUpgradersTable(ctx, rdb, "")
		require.Error(t, err)
	})
}

// TestCheckConnectionReportsVersion proves db.CheckConnection, routed
// through db.RDB.QueryContext and db.ScanFirstValue, returns the server
// version string a caller can report instead of silently discarding it.
func TestCheckConnectionReportsVersion(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(_ *sql.DB, connStr string) {
		ctx := context.Background()

		version, err := db.CheckConnection(ctx, connStr, options.NewBuilder().Build())
		require.NoError(t, err)
		assert.Contains(t, version, "PostgreSQL")
	})
}
