// SPDX-License-Identifier: Apache-2.0

package options_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mshamis85/pgupgrader/pkg/options"
)

func TestBuilderDefaults(t *testing.T) {
	opts := options.NewBuilder().Build()

	assert.False(t, opts.HasSchema())
	assert.False(t, opts.CreateSchema())
	assert.Equal(t, options.SSLDisable, opts.SSLMode())
}

func TestBuilderCustomValues(t *testing.T) {
	opts := options.NewBuilder().
		WithSchema("my_schema").
		WithCreateSchema(true).
		Build()

	assert.Equal(t, "my_schema", opts.Schema())
	assert.True(t, opts.CreateSchema())
}

func TestSubstituteNoSchema(t *testing.T) {
	opts := options.NewBuilder().Build()
	sql := "CREATE TABLE {{SCHEMA}}.test (id INT)"

	assert.Equal(t, sql, opts.Substitute(sql))
}

func TestSubstituteWithSchema(t *testing.T) {
	opts := options.NewBuilder().WithSchema("my_schema").Build()
	sql := "CREATE TABLE {{SCHEMA}}.test (id INT)"

	assert.Equal(t, "CREATE TABLE my_schema.test (id INT)", opts.Substitute(sql))
}

func TestSubstituteMultipleOccurrences(t *testing.T) {
	opts := options.NewBuilder().WithSchema("public").Build()
	sql := "SELECT * FROM {{SCHEMA}}.users JOIN {{SCHEMA}}.posts ON true"

	assert.Equal(t, "SELECT * FROM public.users JOIN public.posts ON true", opts.Substitute(sql))
}
