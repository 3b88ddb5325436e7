// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/minicrates/minicrates/internal/config"
	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/issue"
	"github.com/minicrates/minicrates/internal/materialize"
	"github.com/minicrates/minicrates/internal/overrides"
	"github.com/minicrates/minicrates/internal/workspace"
	"github.com/minicrates/minicrates/pkg/crateids"
	"github.com/minicrates/minicrates/pkg/platform"
	"github.com/minicrates/minicrates/pkg/types"

	"github.com/spf13/cobra"
)

// noIssue marks failures without a catalogue entry.
const noIssue issue.Id = 0

// defaultIssueStyle is the glamour style used before configuration is loaded.
const defaultIssueStyle = "auto"

// classifyError maps a failure to an issue catalogue ID and returns a styled
// message for CLI rendering. An ID of noIssue means only the message is shown.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	issueID = noIssue

	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && ae.Issue != noIssue:
		issueID = ae.Issue
	case errors.Is(err, discovery.ErrBadPattern), errors.Is(err, types.ErrInvalidGlobPattern):
		issueID = issue.BadPatternId
	case errors.Is(err, overrides.ErrInvalidOverride):
		issueID = issue.OverrideParseErrorId
	case errors.Is(err, materialize.ErrTargetOccupied):
		issueID = issue.TargetOccupiedId
	case errors.Is(err, workspace.ErrInvalidManifest):
		issueID = issue.WorkspaceManifestInvalidId
	case errors.Is(err, types.ErrInvalidStrategy):
		issueID = issue.InvalidStrategyId
	case errors.Is(err, platform.ErrReservedName):
		issueID = issue.ReservedNameId
	case errors.Is(err, crateids.ErrNotSet), errors.Is(err, crateids.ErrMalformedTable), errors.Is(err, crateids.ErrUnknownFragment):
		issueID = issue.IdentifierTableInvalidId
	case errors.Is(err, config.ErrInvalidConfig):
		issueID = issue.ConfigLoadFailedId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.SymlinkPermissionId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// formatErrorForDisplay prefers the actionable rendering when one is present.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// fail renders err on the App's stderr, including the matching catalogue
// entry, and returns the ExitError the command should report. Cobra's own
// error printing is silenced since the message was already shown.
func (a *App) fail(cmd *cobra.Command, style string, verbose bool, operation string, err error) error {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		err = issue.WrapWithOperation(err, operation)
	}

	issueID, msg := classifyError(err, verbose)
	if issueID != noIssue {
		if rendered, renderErr := issue.Get(issueID).Render(style); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	fmt.Fprint(a.stderr, msg)

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return exitFailure(err)
}

// failSession is fail with the session's style and verbosity.
func (a *App) failSession(cmd *cobra.Command, s *session, operation string, err error) error {
	return a.fail(cmd, s.issueStyle(), s.verbose, operation, err)
}

// issueStyle maps ui.color_scheme onto a glamour style name.
func (s *session) issueStyle() string {
	if s.cfg.UI.ColorScheme == "" {
		return defaultIssueStyle
	}
	return string(s.cfg.UI.ColorScheme)
}
