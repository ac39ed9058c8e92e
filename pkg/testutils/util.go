// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"strings"

	"github.com/google/uuid"
)

// randomDBName returns a unique, lowercase database name safe to use as an
// unquoted PostgreSQL identifier.
func randomDBName() string {
	return "testdb_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
