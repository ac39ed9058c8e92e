// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/mshamis85/pgupgrader/pkg/options"
	"github.com/mshamis85/pgupgrader/pkg/upgradeerrors"
)

// Connect opens a *sql.DB against dsn, applying the TLS policy from opts,
// and verifies the connection with a ping. dsn may be a postgres:// URL or
// a key='value' DSN.
func Connect(ctx context.Context, dsn string, opts options.Options) (*sql.DB, error) {
	parsed, err := pq.ParseURL(dsn)
	if err != nil {
		parsed = dsn
	}

	switch opts.SSLMode() {
	case options.SSLRequire:
		parsed += " sslmode=require"
	default:
		parsed += " sslmode=disable"
	}

	conn, err := sql.Open("postgres", parsed)
	if err != nil {
		return nil, &upgradeerrors.ConnectionError{Reason: "failed to open connection", Err: err}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &upgradeerrors.ConnectionError{Reason: "failed to ping database", Err: err}
	}

	return conn, nil
}

// CheckConnection is the "check-connection" CLI subcommand's primitive: open
// dsn, ping it, and read back the server version, reporting it on success or
// a *upgradeerrors.ConnectionError on failure.
func CheckConnection(ctx context.Context, dsn string, opts options.Options) (string, error) {
	conn, err := Connect(ctx, dsn, opts)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	rdb := &RDB{DB: conn}
	rows, err := rdb.QueryContext(ctx, "SELECT version()")
	if err != nil {
		return "", &upgradeerrors.ConnectionError{Reason: "failed to query database version", Err: err}
	}
	defer rows.Close()

	var version string
	if err := ScanFirstValue(rows, &version); err != nil {
		return "", &upgradeerrors.ConnectionError{Reason: "failed to read database version", Err: err}
	}

	return version, nil
}
