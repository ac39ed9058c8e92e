// SPDX-License-Identifier: Apache-2.0

package upgrade

import "github.com/pterm/pterm"

// Logger reports the progress of an upgrade run.
type Logger interface {
	LogSchemaCreated(schema string)
	LogTableInitialized(schema string)
	LogUpgraderStart(fileID, upgraderID int32, description string)
	LogUpgraderComplete(fileID, upgraderID int32, description string)
	LogUpToDate(appliedCount int)
}

type ptermLogger struct {
	logger pterm.Logger
}

// NewLogger returns a Logger that writes structured, leveled output via
// pterm.
func NewLogger() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

func (l *ptermLogger) LogSchemaCreated(schema string) {
	l.logger.Info("created schema", l.logger.Args("schema", schema))
}

func (l *ptermLogger) LogTableInitialized(schema string) {
	l.logger.Info("initialized upgraders table", l.logger.Args("schema", schema))
}

func (l *ptermLogger) LogUpgraderStart(fileID, upgraderID int32, description string) {
	l.logger.Info("applying upgrader", l.logger.Args(
		"file_id", fileID, "upgrader_id", upgraderID, "description", description,
	))
}

func (l *ptermLogger) LogUpgraderComplete(fileID, upgraderID int32, description string) {
	l.logger.Info("applied upgrader", l.logger.Args(
		"file_id", fileID, "upgrader_id", upgraderID, "description", description,
	))
}

func (l *ptermLogger) LogUpToDate(appliedCount int) {
	l.logger.Info("database is up to date", l.logger.Args("applied_count", appliedCount))
}

type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything, for tests and
// library callers that don't want CLI-style output.
func NewNoopLogger() Logger { return &noopLogger{} }

func (noopLogger) LogSchemaCreated(string)                  {}
func (noopLogger) LogTableInitialized(string)               {}
func (noopLogger) LogUpgraderStart(int32, int32, string)    {}
func (noopLogger) LogUpgraderComplete(int32, int32, string) {}
func (noopLogger) LogUpToDate(int)                          {}
