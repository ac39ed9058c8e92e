// SPDX-License-Identifier: Apache-2.0

// Package options holds the immutable configuration for an upgrade run:
// target schema, whether to create it, and TLS policy.
package options

import "strings"

// SSLMode is the TLS policy for the PostgreSQL connection.
type SSLMode int

const (
	// SSLDisable connects without TLS. This is the default.
	SSLDisable SSLMode = iota
	// SSLRequire connects with TLS and refuses to fall back to plaintext.
	SSLRequire
)

// SchemaTemplateToken is substituted, literally and without quoting, for the
// configured schema name in every upgrader's SQL body. Authors who want a
// quoted identifier write the quoting themselves.
const SchemaTemplateToken = "{{SCHEMA}}"

// Options is the immutable configuration for one upgrade invocation.
type Options struct {
	schema       string
	createSchema bool
	sslMode      SSLMode
}

// Schema returns the configured schema name, or "" if unset.
func (o Options) Schema() string { return o.schema }

// CreateSchema reports whether the schema should be created if missing.
func (o Options) CreateSchema() bool { return o.createSchema }

// SSLMode returns the configured TLS policy.
func (o Options) SSLMode() SSLMode { return o.sslMode }

// HasSchema reports whether a schema name was configured.
func (o Options) HasSchema() bool { return o.schema != "" }

// Substitute replaces every occurrence of SchemaTemplateToken in sql with the
// configured schema name. If no schema is configured, sql is returned
// unchanged and any literal token reaches PostgreSQL verbatim, which is the
// intended failure mode.
func (o Options) Substitute(sql string) string {
	if o.schema == "" {
		return sql
	}
	return strings.ReplaceAll(sql, SchemaTemplateToken, o.schema)
}

// Builder builds an Options value. The zero Builder is ready to use.
type Builder struct {
	opts Options
}

// NewBuilder returns a new Builder with the documented defaults: no schema,
// create_schema false, TLS disabled.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSchema sets the target schema name.
func (b *Builder) WithSchema(schema string) *Builder {
	b.opts.schema = schema
	return b
}

// WithCreateSchema sets whether the schema should be created if missing.
func (b *Builder) WithCreateSchema(create bool) *Builder {
	b.opts.createSchema = create
	return b
}

// WithSSLMode sets the TLS policy.
func (b *Builder) WithSSLMode(mode SSLMode) *Builder {
	b.opts.sslMode = mode
	return b
}

// Build returns the immutable Options value.
func (b *Builder) Build() Options {
	return b.opts
}
