package fileops

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	statFile   = os.Lstat
	renameFile = os.Rename
)

// ErrTargetExists signals that the destination was occupied at move time.
// Collision resolution runs before the move, so hitting this means an
// external writer raced us; the caller must not overwrite.
var ErrTargetExists = errors.New("move target already exists")

// CrossDeviceError reports a rename that failed with EXDEV. The tool never
// falls back to copy+delete; source and destination must share a filesystem.
type CrossDeviceError struct {
	Source string
	Target string
	Err    error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cannot move %q to %q across filesystems: %v", e.Source, e.Target, e.Err)
}

func (e *CrossDeviceError) Unwrap() error {
	return e.Err
}

// MoveNoClobber renames sourcePath to targetPath, failing instead of
// overwriting an existing target. The existence check and the rename are not
// atomic; a loss of that race surfaces as ErrTargetExists or a rename error.
func MoveNoClobber(sourcePath string, targetPath string) error {
	source := strings.TrimSpace(sourcePath)
	target := strings.TrimSpace(targetPath)
	if source == "" {
		return fmt.Errorf("move source path is empty")
	}
	if target == "" {
		return fmt.Errorf("move target path is empty")
	}
	if source == target {
		return fmt.Errorf("move source and target paths must differ")
	}

	sourceInfo, err := statFile(source)
	if err != nil {
		return fmt.Errorf("stat move source %q: %w", source, err)
	}
	if sourceInfo.IsDir() {
		return fmt.Errorf("move source is a directory: %s", source)
	}

	if _, err := statFile(target); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat move target %q: %w", target, err)
	}

	if err := renameFile(source, target); err != nil {
		if isCrossDevice(err) {
			return &CrossDeviceError{Source: source, Target: target, Err: err}
		}
		return fmt.Errorf("move %q to %q: %w", source, target, err)
	}
	return nil
}
