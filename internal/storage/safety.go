package storage

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/manav03panchal/aircare/internal/errors"
)

// RenderError wraps a failure of the render callback passed to WriteAtomic,
// as opposed to a failure writing the file.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "render: " + e.Err.Error() }
func (e *RenderError) Unwrap() error { return e.Err }

// WriteAtomic streams render's output into a temp file beside path and
// renames it into place. If render or any write fails, path keeps its
// previous contents.
func WriteAtomic(path string, perm os.FileMode, render func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".aircare-*.tmp")
	if err != nil {
		return diskError("create temp file", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := render(w); err != nil {
		return &RenderError{Err: err}
	}
	if err := w.Flush(); err != nil {
		return diskError("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	return os.Rename(tmp.Name(), path)
}

func diskError(op string, err error) error {
	if stderrors.Is(err, syscall.ENOSPC) {
		return errors.NewSystemErrorWithOp(op, "disk full", errors.ErrDiskFull)
	}
	return fmt.Errorf("%s: %w", op, err)
}
