// SPDX-License-Identifier: Apache-2.0

// Package catalog loads the ordered sequence of upgraders from a directory
// of numbered SQL files. It is pure: filesystem in, sequence out. Only
// regular files with a .sql or .ddl extension (case-insensitive) are
// considered; hidden files are skipped and subdirectories are rejected.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mshamis85/pgupgrader/pkg/upgradeerrors"
)

// Upgrader is one SQL unit of schema change, keyed by (FileID, UpgraderID).
type Upgrader struct {
	FileID      int32
	UpgraderID  int32
	Description string
	Text        string
}

// Key returns the total-order key (FileID, UpgraderID).
func (u Upgrader) Key() (int32, int32) { return u.FileID, u.UpgraderID }

// Less reports whether u sorts strictly before other by (FileID, UpgraderID).
func (u Upgrader) Less(other Upgrader) bool {
	if u.FileID != other.FileID {
		return u.FileID < other.FileID
	}
	return u.UpgraderID < other.UpgraderID
}

const headerPrefix = "--- "

// Load scans dir and returns the flat, ordered list of upgraders, or a
// *upgradeerrors.LoaderError describing the first contract violation found.
func Load(dir string) ([]Upgrader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &upgradeerrors.LoaderError{Reason: "reading upgraders directory: " + err.Error()}
	}

	files, err := collectFiles(dir, entries)
	if err != nil {
		return nil, err
	}

	if err := validateFileOrder(files); err != nil {
		return nil, err
	}

	var upgraders []Upgrader
	for _, f := range files {
		parsed, err := parseFile(f.fileID, f.path)
		if err != nil {
			return nil, err
		}
		upgraders = append(upgraders, parsed...)
	}

	return upgraders, nil
}

type candidateFile struct {
	fileID int32
	path   string
	name   string
}

// collectFiles walks dir's entries, rejecting subdirectories, skipping
// hidden names and names with an unrecognized extension, and parsing the
// leading integer file_id from every surviving name.
func collectFiles(dir string, entries []os.DirEntry) ([]candidateFile, error) {
	var files []candidateFile

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() {
			return nil, &upgradeerrors.LoaderError{Reason: "Nested directory found: " + filepath.Join(dir, name)}
		}

		if strings.HasPrefix(name, ".") {
			continue
		}

		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".sql") && !strings.EqualFold(ext, ".ddl") {
			continue
		}

		prefix, _, _ := strings.Cut(name, "_")
		id, err := strconv.ParseInt(prefix, 10, 32)
		if err != nil {
			return nil, &upgradeerrors.LoaderError{Reason: "File name must start with a number: " + name}
		}

		files = append(files, candidateFile{
			fileID: int32(id),
			path:   filepath.Join(dir, name),
			name:   name,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].fileID < files[j].fileID })

	return files, nil
}

// validateFileOrder enforces that file_ids, after sorting, equal 0..F-1
// exactly: no gaps, no duplicates.
func validateFileOrder(files []candidateFile) error {
	for idx, f := range files {
		if int32(idx) == f.fileID {
			continue
		}
		if f.fileID > int32(idx) {
			return &upgradeerrors.LoaderError{Reason: "Missing file ID " + strconv.Itoa(idx)}
		}
		return &upgradeerrors.LoaderError{Reason: "Duplicate file ID " + strconv.Itoa(int(f.fileID))}
	}
	return nil
}

// parseFile splits one file's contents into "--- <id>: <description>"
// headers and their SQL bodies, returning the non-empty-bodied upgraders it
// contains in header order. Header IDs must start at 0 and increment by 1.
func parseFile(fileID int32, path string) ([]Upgrader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &upgradeerrors.LoaderError{Reason: "reading file " + path + ": " + err.Error()}
	}

	var upgraders []Upgrader

	var (
		haveHeader bool
		curID      int32
		curDesc    string
		curBody    strings.Builder
		expectedID int32
	)

	flush := func() {
		if !haveHeader {
			return
		}
		if body := strings.TrimSpace(curBody.String()); body != "" {
			upgraders = append(upgraders, Upgrader{
				FileID:      fileID,
				UpgraderID:  curID,
				Description: strings.TrimSpace(curDesc),
				Text:        body,
			})
		}
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, headerPrefix) {
			flush()
			curBody.Reset()

			header := line[len(headerPrefix):]
			idStr, desc, ok := strings.Cut(header, ":")
			if !ok {
				return nil, &upgradeerrors.LoaderError{Reason: "Invalid upgrader header format in file " + path + ": " + line}
			}

			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 32)
			if err != nil {
				return nil, &upgradeerrors.LoaderError{Reason: "Invalid upgrader ID format in file " + path + ": " + line}
			}

			if int32(id) != expectedID {
				return nil, &upgradeerrors.LoaderError{Reason: "Invalid upgrader sequence in file " + path +
					". Expected ID " + strconv.Itoa(int(expectedID)) + ", found " + strconv.Itoa(int(id))}
			}

			haveHeader = true
			curID = int32(id)
			curDesc = desc
			expectedID++
			continue
		}

		curBody.WriteString(line)
		curBody.WriteByte('\n')
	}
	flush()

	return upgraders, nil
}
