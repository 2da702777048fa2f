package main

import (
	"errors"
	"os"

	howagent "github.com/yushaw/howagentworks"
	"github.com/yushaw/howagentworks/internal/assets"
	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/dateutil"
	"github.com/yushaw/howagentworks/internal/i18n"
	"github.com/yushaw/howagentworks/internal/preview"
	"github.com/yushaw/howagentworks/internal/printer"
	"github.com/yushaw/howagentworks/internal/site"
)

// Exit codes for the howagent CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, port busy
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, printer.ErrBrowserConnect) ||
		errors.Is(err, printer.ErrPageCreate) ||
		errors.Is(err, printer.ErrPageLoad) ||
		errors.Is(err, printer.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, howagent.ErrConfig) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, i18n.ErrUnknownLanguage) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, site.ErrUnsafeOutputDir) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrIncompleteTemplateSet) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, site.ErrWrite) ||
		errors.Is(err, site.ErrDocUnavailable) ||
		errors.Is(err, preview.ErrListen) {
		return ExitIO
	}

	return ExitGeneral
}
