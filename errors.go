package howagent

import (
	"errors"

	"github.com/yushaw/howagentworks/internal/config"
	"github.com/yushaw/howagentworks/internal/site"
)

// Sentinel errors returned by the facade. Errors from BuildSite wrap the
// underlying package errors, so errors.Is works with both.
var (
	// ErrInternal wraps a recovered panic.
	ErrInternal = errors.New("internal error")

	// ErrConfig covers unreadable or invalid configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrDocUnavailable is reported per language when the lifecycle
	// document cannot be read.
	ErrDocUnavailable = site.ErrDocUnavailable

	// ErrConfigNotFound is returned when a named config cannot be found.
	ErrConfigNotFound = config.ErrConfigNotFound
)
