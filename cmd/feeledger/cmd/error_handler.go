package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-facing message and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if ledgerErr, ok := errors.AsLedgerError(err); ok {
		return h.handleLedgerError(ledgerErr)
	}

	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleLedgerError(err *errors.LedgerError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	msg := err.Error()

	switch {
	case os.IsNotExist(err) || strings.Contains(msg, "does not exist"):
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		fmt.Fprintf(os.Stderr, "\nCheck that the file path is correct and the file exists.\n")
		return 2
	case os.IsPermission(err):
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		fmt.Fprintf(os.Stderr, "\nCheck the file permissions and try again.\n")
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		if h.verbose {
			fmt.Fprintf(os.Stderr, "\nRun with --verbose for more detail, or use --help for usage.\n")
		}
		return 1
	}
}

// categoryHelp returns a short follow-up hint per error category
func categoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return "Check that the file path is correct and readable."
	case errors.CategoryParse:
		return "Check the CSV header row and column formats; use --verbose to see skipped lines."
	case errors.CategoryValidation, errors.CategoryNormalization:
		return "Fix the reported rows and upload again; valid rows were not affected."
	case errors.CategoryScope:
		return "Check the --student, --fee-head, --year and --semester values."
	case errors.CategoryRange:
		return "Narrow the --from/--to range or raise --max-range-days."
	case errors.CategoryConfiguration:
		return "Check the configuration file and FEELEDGER_* environment variables."
	case errors.CategoryStorage:
		return "Check that the database is reachable and the DSN is correct."
	default:
		return ""
	}
}
