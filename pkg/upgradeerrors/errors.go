// SPDX-License-Identifier: Apache-2.0

// Package upgradeerrors defines the closed set of error kinds the upgrader
// can return: Connection, Execution, Configuration, Loader, Integrity.
package upgradeerrors

import "fmt"

// ConnectionError means the database could not be reached, or a transaction
// could not be started, committed, or rolled back.
type ConnectionError struct {
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection error: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("connection error: %s", e.Reason)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExecutionError means PostgreSQL rejected a statement, including an
// upgrader's own SQL body.
type ExecutionError struct {
	FileID     int32
	UpgraderID int32
	HasID      bool
	Reason     string
	Err        error
}

func (e *ExecutionError) Error() string {
	if e.HasID {
		return fmt.Sprintf("execution error: upgrader %d:%d: %s: %s", e.FileID, e.UpgraderID, e.Reason, e.Err)
	}
	return fmt.Sprintf("execution error: %s: %s", e.Reason, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ConfigurationError means the supplied options are self-contradictory, e.g.
// create_schema set without a schema name.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// LoaderError means the catalog loader rejected the upgraders directory:
// a bad filename, a file ID gap or duplicate, or a malformed header.
type LoaderError struct {
	Reason string
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loader error: %s", e.Reason)
}

// IntegrityError means the drift detector found a disagreement between the
// catalog and the applied rows that is not a simple prefix relation.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error: %s", e.Reason)
}

// WrapTxError normalizes the error a retryable transaction can fail with.
// If err is already one of this package's typed errors it is returned
// unchanged; otherwise it is a transaction lifecycle failure (begin, commit,
// or rollback, or the context ending while waiting to retry) and is wrapped
// as a ConnectionError.
func WrapTxError(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ConnectionError, *ExecutionError, *ConfigurationError, *LoaderError, *IntegrityError:
		return err
	default:
		return &ConnectionError{Reason: "transaction failed", Err: err}
	}
}
