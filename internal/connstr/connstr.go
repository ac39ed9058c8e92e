// SPDX-License-Identifier: Apache-2.0

// Package connstr assembles a libpq connection string from the CLI's
// discrete connection flags, or passes a caller-supplied one through
// unchanged.
package connstr

import (
	"fmt"
	"strings"
)

// ConnectionArgs holds the discrete connection parameters accepted by the
// CLI's --host/--port/--user/--password/--database flags.
type ConnectionArgs struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Build returns connectionString unchanged if it is non-empty; otherwise it
// assembles a libpq key='value' DSN from args, quoting and escaping every
// value per libpq's connection string grammar.
func Build(connectionString string, args ConnectionArgs) (string, error) {
	if connectionString != "" {
		return connectionString, nil
	}

	if args.Host == "" {
		return "", fmt.Errorf("host is required when --connection-string is not provided")
	}
	if args.User == "" {
		return "", fmt.Errorf("user is required when --connection-string is not provided")
	}
	if args.Database == "" {
		return "", fmt.Errorf("database is required when --connection-string is not provided")
	}

	port := args.Port
	if port == 0 {
		port = 5432
	}

	return fmt.Sprintf(
		"host='%s' port=%d user='%s' password='%s' dbname='%s'",
		escape(args.Host), port, escape(args.User), escape(args.Password), escape(args.Database),
	), nil
}

// escape backslash- and quote-escapes s for embedding in a single-quoted
// libpq connection string parameter value.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}
