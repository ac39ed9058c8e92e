// SPDX-License-Identifier: Apache-2.0

// Package store is the PostgreSQL record of which upgraders have already
// been applied: the "$upgraders$" table, its advisory-lock-guarded creation,
// and the per-transaction table lock the apply loop relies on.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mshamis85/pgupgrader/pkg/catalog"
	"github.com/mshamis85/pgupgrader/pkg/db"
	"github.com/mshamis85/pgupgrader/pkg/upgradeerrors"
)

// advisoryLockID serializes first-time CREATE TABLE across racing runners.
// The value is part of the on-database contract: changing it would let two
// versions of this tool race each other during a rolling deploy.
const advisoryLockID int64 = 42_00_42_00

// AppliedUpgrader is one row of the upgraders table: an Upgrader plus the
// timestamp it was recorded at.
type AppliedUpgrader struct {
	catalog.Upgrader
	AppliedOn time.Time
}

// TableName returns the quoted, schema-qualified name of the upgraders
// table, e.g. "myschema"."$upgraders$", or "$upgraders$" with no schema.
func TableName(schema string) string {
	if schema == "" {
		return `"$upgraders$"`
	}
	return fmt.Sprintf("%s.%s", pq.QuoteIdentifier(schema), `"$upgraders$"`)
}

// CreateSchemaIfNeeded issues CREATE SCHEMA IF NOT EXISTS for schema. It is a
// no-op when schema is empty. Routed through conn so lock contention on the
// schema catalog is retried rather than surfaced to the caller.
func CreateSchemaIfNeeded(ctx context.Context, conn db.DB, schema string) error {
	if schema == "" {
		return nil
	}
	sqlText := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", pq.QuoteIdentifier(schema))
	if _, err := conn.ExecContext(ctx, sqlText); err != nil {
		return &upgradeerrors.ExecutionError{Reason: "failed to create schema", Err: err}
	}
	return nil
}

// InitUpgradersTable creates the upgraders table if it does not already
// exist, serialized by a transaction-scoped advisory lock so that concurrent
// first-run processes never race on the CREATE TABLE statement. Runs through
// conn.WithRetryableTransaction so a caller-set lock_timeout that trips while
// waiting on the advisory lock is retried instead of failing the run.
func InitUpgradersTable(ctx context.Context, conn db.DB, schema string) error {
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			file_id INT,
			upgrader_id INT,
			description VARCHAR(500),
			text TEXT,
			applied_on TIMESTAMPTZ,
			PRIMARY KEY (file_id, upgrader_id)
		);
	`, TableName(schema))

	err := conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockID); err != nil {
			return &upgradeerrors.ExecutionError{Reason: "failed to acquire advisory lock", Err: err}
		}
		if _, err := tx.ExecContext(ctx, createSQL); err != nil {
			return &upgradeerrors.ExecutionError{Reason: "failed to create upgraders table", Err: err}
		}
		return nil
	})
	if err != nil {
		return upgradeerrors.WrapTxError(err)
	}

	return nil
}

// LockUpgradersTable takes an EXCLUSIVE lock on the upgraders table for the
// lifetime of tx, serializing the read-applied/decide-next/insert critical
// section across concurrent runners.
func LockUpgradersTable(ctx context.Context, tx *sql.Tx, schema string) error {
	lockSQL := fmt.Sprintf("LOCK TABLE %s IN EXCLUSIVE MODE;", TableName(schema))
	if _, err := tx.ExecContext(ctx, lockSQL); err != nil {
		return &upgradeerrors.ExecutionError{Reason: "failed to lock upgraders table", Err: err}
	}
	return nil
}

// LoadAppliedUpgraders returns every row of the upgraders table, ordered by
// (file_id, upgrader_id).
func LoadAppliedUpgraders(ctx context.Context, tx *sql.Tx, schema string) ([]AppliedUpgrader, error) {
	selectSQL := fmt.Sprintf(
		"SELECT file_id, upgrader_id, description, text, applied_on FROM %s ORDER BY file_id, upgrader_id;",
		TableName(schema),
	)

	rows, err := tx.QueryContext(ctx, selectSQL)
	if err != nil {
		return nil, &upgradeerrors.ExecutionError{Reason: "failed to load applied upgraders", Err: err}
	}
	defer rows.Close()

	var applied []AppliedUpgrader
	for rows.Next() {
		var a AppliedUpgrader
		if err := rows.Scan(&a.FileID, &a.UpgraderID, &a.Description, &a.Text, &a.AppliedOn); err != nil {
			return nil, &upgradeerrors.ExecutionError{Reason: "failed to scan applied upgrader row", Err: err}
		}
		applied = append(applied, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &upgradeerrors.ExecutionError{Reason: "failed to load applied upgraders", Err: err}
	}

	return applied, nil
}

// RecordUpgrader inserts a row marking upgrader as applied, stamped with the
// database's current time.
func RecordUpgrader(ctx context.Context, tx *sql.Tx, schema string, upgrader catalog.Upgrader) error {
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (file_id, upgrader_id, description, text, applied_on) VALUES ($1, $2, $3, $4, now());",
		TableName(schema),
	)

	if _, err := tx.ExecContext(ctx, insertSQL, upgrader.FileID, upgrader.UpgraderID, upgrader.Description, upgrader.Text); err != nil {
		return &upgradeerrors.ExecutionError{
			FileID: upgrader.FileID, UpgraderID: upgrader.UpgraderID, HasID: true,
			Reason: "failed to record upgrader", Err: err,
		}
	}
	return nil
}
