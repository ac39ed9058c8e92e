// SPDX-License-Identifier: Apache-2.0

// Package integrity detects drift between the catalog on disk and the rows
// already recorded in the database. The two sequences must be in a prefix
// relation, in either direction: pending upgraders are fine, and a database
// that is ahead of the catalog (older code, newer database) is fine too.
package integrity

import (
	"fmt"
	"strings"

	"github.com/mshamis85/pgupgrader/pkg/catalog"
	"github.com/mshamis85/pgupgrader/pkg/store"
	"github.com/mshamis85/pgupgrader/pkg/upgradeerrors"
)

// Verify compares the catalog against the applied upgraders and returns a
// *upgradeerrors.IntegrityError describing the first disagreement found, or
// nil if the two sequences are in a valid prefix relation. Both slices are
// assumed sorted by (FileID, UpgraderID) ascending.
func Verify(files []catalog.Upgrader, applied []store.AppliedUpgrader) error {
	var prevAppliedOn *store.AppliedUpgrader
	for i := range applied {
		db := &applied[i]
		if prevAppliedOn != nil && db.AppliedOn.Before(prevAppliedOn.AppliedOn) {
			return &upgradeerrors.IntegrityError{Reason: fmt.Sprintf(
				"Upgrader %d:%d was applied at %s, which is before the previous upgrader (%s)",
				db.FileID, db.UpgraderID, db.AppliedOn, prevAppliedOn.AppliedOn,
			)}
		}
		prevAppliedOn = db
	}

	fi, di := 0, 0
	for {
		haveFile := fi < len(files)
		haveDB := di < len(applied)

		switch {
		case haveFile && haveDB:
			f := files[fi]
			d := applied[di]

			if f.FileID != d.FileID || f.UpgraderID != d.UpgraderID {
				if fileTupleLess(f, d.Upgrader) {
					return &upgradeerrors.IntegrityError{Reason: fmt.Sprintf(
						"Gap detected in database migrations. File upgrader %d:%d is missing in database, but later upgrader %d:%d is present.",
						f.FileID, f.UpgraderID, d.FileID, d.UpgraderID,
					)}
				}
				return &upgradeerrors.IntegrityError{Reason: fmt.Sprintf(
					"Database contains an upgrader %d:%d that is missing from the migration files.",
					d.FileID, d.UpgraderID,
				)}
			}

			if strings.TrimSpace(f.Text) != strings.TrimSpace(d.Text) {
				return &upgradeerrors.IntegrityError{Reason: fmt.Sprintf(
					"Upgrader %d:%d. SQL content has changed.", f.FileID, f.UpgraderID,
				)}
			}

			if strings.TrimSpace(f.Description) != strings.TrimSpace(d.Description) {
				return &upgradeerrors.IntegrityError{Reason: fmt.Sprintf(
					"Upgrader %d:%d. Description has changed.\nFile: '%s'\nDB:   '%s'",
					f.FileID, f.UpgraderID, f.Description, d.Description,
				)}
			}

			fi++
			di++

		case haveFile:
			// More files than DB: pending migrations, always valid.
			return nil

		case haveDB:
			// More DB than files: the subset matched perfectly so far, so the
			// files are a strict prefix of the DB. Valid.
			return nil

		default:
			return nil
		}
	}
}

// fileTupleLess reports whether (a.FileID, a.UpgraderID) < (b.FileID, b.UpgraderID).
func fileTupleLess(a, b catalog.Upgrader) bool {
	if a.FileID != b.FileID {
		return a.FileID < b.FileID
	}
	return a.UpgraderID < b.UpgraderID
}
