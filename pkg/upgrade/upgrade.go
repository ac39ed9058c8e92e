// SPDX-License-Identifier: Apache-2.0

// Package upgrade is the top-level orchestrator: it loads the catalog,
// initializes the tracking table, and drives the one-step-per-transaction
// apply loop. Both surfaces, the synchronous Apply and the pump-based
// ApplyAsync, share the same control flow and SQL.
package upgrade

import (
	"context"
	"database/sql"

	"github.com/mshamis85/pgupgrader/pkg/catalog"
	"github.com/mshamis85/pgupgrader/pkg/db"
	"github.com/mshamis85/pgupgrader/pkg/integrity"
	"github.com/mshamis85/pgupgrader/pkg/options"
	"github.com/mshamis85/pgupgrader/pkg/store"
	"github.com/mshamis85/pgupgrader/pkg/upgradeerrors"
)

// Apply runs the upgrade to completion on the caller's goroutine, using conn
// for every statement. It is safe to call concurrently from multiple
// goroutines or processes against the same database: contention is resolved
// by the advisory lock and the per-iteration table lock, not by this
// function.
func Apply(ctx context.Context, conn *sql.Conn, upgradersDir string, opts options.Options, logger Logger) error {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return run(ctx, conn, upgradersDir, opts, logger)
}

// run is the shared control flow behind Apply and ApplyAsync:
//  0. create the schema if requested
//  1. initialize the upgraders table (advisory-lock-serialized)
//  2. load the catalog from disk
//  3. loop: one transaction per upgrader, locking the table, checking
//     integrity, applying and recording the next pending upgrader or
//     breaking out once every upgrader is applied.
func run(ctx context.Context, conn *sql.Conn, upgradersDir string, opts options.Options, logger Logger) error {
	var rdb db.DB = &db.RDB{DB: conn}

	if opts.CreateSchema() {
		if !opts.HasSchema() {
			return &upgradeerrors.ConfigurationError{Reason: "create_schema is enabled but no schema name is provided"}
		}
		if err := store.CreateSchemaIfNeeded(ctx, rdb, opts.Schema()); err != nil {
			return err
		}
		logger.LogSchemaCreated(opts.Schema())
	}

	if err := store.InitUpgradersTable(ctx, rdb, opts.Schema()); err != nil {
		return err
	}
	logger.LogTableInitialized(opts.Schema())

	upgraders, err := catalog.Load(upgradersDir)
	if err != nil {
		return err
	}

	for {
		done, err := applyNext(ctx, rdb, upgraders, opts, logger)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// applyNext runs exactly one retryable transaction: it locks the table,
// loads what's already applied, verifies integrity, and then either applies
// the next pending upgrader and commits, or commits an empty transaction and
// reports done=true when everything is already applied. Run through
// rdb.WithRetryableTransaction so a lock_timeout tripped by the table lock
// is retried instead of failing the run.
func applyNext(ctx context.Context, rdb db.DB, upgraders []catalog.Upgrader, opts options.Options, logger Logger) (done bool, err error) {
	var (
		appliedCount int
		next         catalog.Upgrader
		applying     bool
	)

	txErr := rdb.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		appliedCount = 0
		applying = false

		if err := store.LockUpgradersTable(ctx, tx, opts.Schema()); err != nil {
			return err
		}

		applied, err := store.LoadAppliedUpgraders(ctx, tx, opts.Schema())
		if err != nil {
			return err
		}
		appliedCount = len(applied)

		if err := integrity.Verify(upgraders, applied); err != nil {
			return err
		}

		if len(applied) >= len(upgraders) {
			return nil
		}

		next = upgraders[len(applied)]
		applying = true
		logger.LogUpgraderStart(next.FileID, next.UpgraderID, next.Description)

		sqlText := opts.Substitute(next.Text)
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			return &upgradeerrors.ExecutionError{
				FileID: next.FileID, UpgraderID: next.UpgraderID, HasID: true,
				Reason: "failed to execute upgrader", Err: err,
			}
		}

		return store.RecordUpgrader(ctx, tx, opts.Schema(), next)
	})
	if txErr != nil {
		return false, upgradeerrors.WrapTxError(txErr)
	}

	if !applying {
		logger.LogUpToDate(appliedCount)
		return true, nil
	}

	logger.LogUpgraderComplete(next.FileID, next.UpgraderID, next.Description)
	return false, nil
}
