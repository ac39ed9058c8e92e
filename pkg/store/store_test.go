// SPDX-License-Identifier: Apache-2.0

package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mshamis85/pgupgrader/pkg/store"
)

func TestTableNameNoSchema(t *testing.T) {
	assert.Equal(t, `"$upgraders$"`, store.TableName(""))
}

func TestTableNameWithSchema(t *testing.T) {
	assert.Equal(t, `"myschema"."$upgraders$"`, store.TableName("myschema"))
}

func TestTableNameQuotesSchema(t *testing.T) {
	assert.Equal(t, `"weird""schema"."$upgraders$"`, store.TableName(`weird"schema`))
}
