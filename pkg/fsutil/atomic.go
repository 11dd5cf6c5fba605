package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the default permission mode for newly created files.
const DefaultFileMode os.FileMode = 0o644

// WriteOptions controls how a document is written.
type WriteOptions struct {
	// Mode is the permission for new files; existing files keep their mode.
	Mode os.FileMode

	// Backup copies the previous file content aside before it is replaced.
	Backup BackupConfig

	// Expect, when set, makes the write fail with ErrChangedOnDisk if the
	// file no longer matches it.
	Expect *FileInfo
}

// WriteFile writes a document atomically and returns its new on-disk state.
func WriteFile(ctx context.Context, path string, content []byte, opts WriteOptions) (*FileInfo, error) {
	if opts.Expect != nil {
		changed, err := ChangedOnDisk(ctx, opts.Expect)
		if err != nil {
			return nil, err
		}
		if changed {
			return nil, fmt.Errorf("%w: %s", ErrChangedOnDisk, path)
		}
	}

	mode := opts.Mode
	if stat, err := os.Stat(path); err == nil {
		mode = stat.Mode().Perm()
	}

	if _, err := CreateBackup(ctx, path, opts.Backup); err != nil {
		return nil, err
	}

	if err := WriteAtomic(ctx, path, content, mode); err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return newFileInfo(path, stat, content), nil
}

// WriteAtomic writes content to path atomically using a temp file and rename.
// If mode is 0, DefaultFileMode is used.
//
// The atomic write pattern:
//  1. Create a temp file in the same directory as the target.
//  2. Write all content to the temp file.
//  3. Sync the temp file to ensure durability.
//  4. Set the file mode.
//  5. Rename the temp file to the target path (atomic on POSIX).
//
// On error, the temp file is cleaned up and the original file remains untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
