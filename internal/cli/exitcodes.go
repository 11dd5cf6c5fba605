package cli

import (
	"errors"

	"github.com/yaklabco/mdedit/pkg/fsutil"
	"github.com/yaklabco/mdedit/pkg/loadsave"
	"github.com/yaklabco/mdedit/pkg/snippets"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// ErrInvalidUsage marks errors in the command line itself.
var ErrInvalidUsage = errors.New("invalid usage")

// Exit codes for mdedit.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a failure with no more specific code.
	ExitFailure = 1

	// ExitCanceled indicates the user canceled a save prompt.
	ExitCanceled = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitNoInput indicates a document that could not be opened.
	ExitNoInput = 66

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromError maps a command error to an exit code.
func ExitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, loadsave.ErrCanceled):
		return ExitCanceled
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig),
		errors.Is(err, theme.ErrInvalidTheme),
		errors.Is(err, snippets.ErrInvalidSnippet):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, loadsave.ErrHTMLUnsupported),
		errors.Is(err, loadsave.ErrUnknownEncoding):
		return ExitNoInput
	case errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrChangedOnDisk),
		errors.Is(err, loadsave.ErrNoFileName):
		return ExitIOError
	default:
		return ExitFailure
	}
}
