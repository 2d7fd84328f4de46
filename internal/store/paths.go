package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const dbFile = "eiken.db"

// DefaultDBPath is $EIKEN_DB if set, else eiken.db in DataDir. The parent
// directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("EIKEN_DB")
	if p == "" {
		dir, err := DataDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(dir, dbFile)
	}
	return p, EnsureDir(p)
}

// DataDir is $XDG_DATA_HOME/eiken, falling back to ~/.local/share/eiken.
func DataDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "eiken"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "eiken"), nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
