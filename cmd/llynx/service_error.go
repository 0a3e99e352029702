// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/llynx/llynx/internal/enabled"
	"github.com/llynx/llynx/internal/issue"
	"github.com/llynx/llynx/internal/luarocks"
	"github.com/llynx/llynx/internal/settings"
	"github.com/llynx/llynx/pkg/addon"
)

const (
	// exitCodeNotInstalled is returned when enable/disable names an addon
	// that is not in the rocks tree.
	exitCodeNotInstalled = 2
	// exitCodeLuaRocks is returned when LuaRocks is missing or fails.
	exitCodeLuaRocks = 3
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before the issue catalog entry.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps domain errors to an issue catalog entry and exit code,
// and pre-renders the error with its suggestions. Errors without a catalog
// entry or suggestions are returned unchanged. A verbosity of 1 or more adds
// the error chain.
func classifyError(err error, verbosity int) error {
	if err == nil {
		return nil
	}

	id, code := issue.IssueOf(err), 1
	switch {
	case errors.Is(err, luarocks.ErrNotFound):
		id, code = issue.LuaRocksNotFoundId, exitCodeLuaRocks
	case errors.Is(err, luarocks.ErrFailed):
		id, code = issue.LuaRocksCommandFailedId, exitCodeLuaRocks
	case errors.Is(err, enabled.ErrNotInstalled):
		id, code = issue.AddonNotInstalledId, exitCodeNotInstalled
	case errors.Is(err, settings.ErrMalformed):
		id = issue.SettingsParseFailedId
	case errors.Is(err, settings.ErrWrite):
		id = issue.SettingsWriteFailedId
	case errors.Is(err, addon.ErrNotUTF8):
		id = issue.AddonPathInvalidId
	}

	var ae *issue.ActionableError
	actionable := errors.As(err, &ae) && ae.HasSuggestions()
	if id == 0 && code == 1 && !actionable {
		return err
	}

	styled := fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbosity > 0))
	return &ExitError{Code: code, Err: newServiceError(err, id, styled)}
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
