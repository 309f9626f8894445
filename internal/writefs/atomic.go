// Package writefs provides crash-safe file replacement for generated files.
//
// Content is written to a sibling temporary file, synced, given its final
// permissions, and renamed onto the target. The rename is atomic at the
// filesystem level: a crash before it leaves the original file untouched, a
// crash after it leaves the new file fully written. A partial file is never
// observable at the target path.
package writefs

import (
	"fmt"
	"os"
	"path/filepath"
)

// GeneratedFileMode is the permission set for generated files: read-only, to
// discourage hand-edits of machine-owned content.
const GeneratedFileMode os.FileMode = 0o444

// rename is swapped out by fault-injection tests.
var rename = os.Rename

// WriteFile atomically replaces the file at path with data, leaving it with
// the given permissions. An existing unwritable target has its permissions
// relaxed first (best-effort; a previous run may have left it read-only).
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil && info.Mode().Perm()&0o200 == 0 {
		// Best-effort: the rename below replaces the file either way on
		// most filesystems, and the write error surfaces if not.
		_ = os.Chmod(path, info.Mode().Perm()|0o200)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	// Write, sync, set final mode, close, rename — in that order. On any
	// failure, remove the temporary file and report the original error.
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary file for %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on temporary file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary file for %s: %w", path, err)
	}

	if err := rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s into place: %w", path, err)
	}

	// Sync the parent directory so the rename survives power loss before
	// the OS flushes directory metadata.
	if parent, err := os.Open(dir); err == nil {
		parent.Sync()
		parent.Close()
	}

	return nil
}
