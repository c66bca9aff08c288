package store

import (
	"fmt"
	"os"
)

// DefaultSQLitePath is used when the sqlite driver is selected without a path.
const DefaultSQLitePath = "datacycle.db"

// FileExists reports whether a sqlite database file exists at path.
// A directory at path is an error rather than a missing store.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat datastore: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("datastore path is a directory, expected file: %s", path)
	}
	return true, nil
}
