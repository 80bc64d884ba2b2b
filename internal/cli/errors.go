package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/snapshot"
)

const (
	ExitCodeSuccess     = 0
	ExitCodeGeneric     = 1
	ExitCodeUsage       = 2
	ExitCodeNotFound    = 3
	ExitCodeUnavailable = 4
	ExitCodeInvalid     = 5
	ExitCodeIO          = 7
)

type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}
	return e.Code
}

func asExitError(code int, err error) error {
	if err == nil {
		return nil
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}
	return &ExitError{Code: code, Err: err}
}

// mapCommandError assigns an exit code from the storage and model sentinels
func mapCommandError(err error) error {
	if err == nil {
		return nil
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}

	switch {
	case errors.Is(err, db.ErrStorageUnavailable):
		return asExitError(ExitCodeUnavailable, fmt.Errorf("fatal: %w", err))
	case errors.Is(err, db.ErrNotFound):
		return asExitError(ExitCodeNotFound, err)
	case errors.Is(err, models.ErrInvalid),
		errors.Is(err, db.ErrDuplicateKey),
		errors.Is(err, snapshot.ErrMalformedSnapshot):
		return asExitError(ExitCodeInvalid, err)
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return asExitError(ExitCodeIO, err)
	}
	return asExitError(ExitCodeGeneric, err)
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{
		Code: ExitCodeUsage,
		Err:  fmt.Errorf(format, args...),
	}
}
