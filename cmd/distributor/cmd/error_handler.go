package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	apperrors "statement-distributor/pkg/errors"
)

// runFailedError reports a completed run in which some groups failed.
// The details are already in the summary, so it only carries the exit code.
type runFailedError struct {
	failed int
}

func (e *runFailedError) Error() string {
	return fmt.Sprintf("%d account group(s) failed", e.failed)
}

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	out     io.Writer
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(out io.Writer, verbose bool) *CLIErrorHandler {
	return &CLIErrorHandler{out: out, verbose: verbose}
}

// HandleError prints err and returns the exit code for it
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	var runErr *runFailedError
	if errors.As(err, &runErr) {
		fmt.Fprintf(h.out, "Run completed with errors: %v\n", runErr)
		return 1
	}

	if distErr, ok := apperrors.AsDistributorError(err); ok {
		return h.handleDistributorError(distErr)
	}

	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleDistributorError(err *apperrors.DistributorError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found: %v\n", err)
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied: %v\n", err)
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	if !h.verbose {
		fmt.Fprintf(h.out, "\nRun with --verbose for more detail\n")
	}
	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryConfiguration:
		return `Configuration error help:
• Check the configuration file passed with --config
• Verify database_path and account_groups_path point to existing files
• Dates use YYYY-MM-DD and months use YYYY-MM
• Use 'distributor distribute --help' to see all available options`

	case apperrors.CategoryInternal:
		return `Internal error help:
• Re-run with --verbose and check the log file
• Report the problem together with the log output`

	default:
		return `For more help:
• Use 'distributor --help' for general help
• Check the log file configured under logging.log_dir`
	}
}

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) || errors.Is(err, os.ErrPermission) ||
		strings.Contains(err.Error(), "permission denied")
}
