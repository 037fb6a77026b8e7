package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

var (
	headerColor = color.New(color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
	issueColors = map[types.IssueKind]*color.Color{
		types.IssueMissingInUsers: color.New(color.FgYellow),
		types.IssueRoleMismatch:   color.New(color.FgCyan),
		types.IssueOrphanedUser:   color.New(color.FgMagenta),
	}
)

func renderAnalysis(w io.Writer, a *model.SyncAnalysis) {
	headerColor.Fprintln(w, "Identity reconciliation")
	fmt.Fprintf(w, "  identities:              %d\n", a.TotalIdentities)
	fmt.Fprintf(w, "  users:                   %d\n", a.TotalUsers)
	fmt.Fprintf(w, "  existence-synchronized:  %d\n", a.ExistenceSynchronized)
	dimColor.Fprintf(w, "  analyzed at:             %s\n", a.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)

	if !a.HasIssues() {
		okColor.Fprintln(w, "No issues found")
		return
	}

	counts := a.CountByKind()
	warnColor.Fprintf(w, "%d issue(s): %d missing in users, %d role mismatch, %d orphaned\n\n",
		len(a.Issues),
		counts[types.IssueMissingInUsers],
		counts[types.IssueRoleMismatch],
		counts[types.IssueOrphanedUser])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tUSER ID\tEMAIL\tDETAIL")
	for _, issue := range a.Issues {
		kind := issue.Kind.String()
		if c, ok := issueColors[issue.Kind]; ok {
			kind = c.Sprint(kind)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kind, issue.UserID, issue.Email, issueDetail(issue))
	}
	_ = tw.Flush()
}

func issueDetail(issue model.SyncIssue) string {
	switch issue.Kind {
	case types.IssueMissingInUsers:
		return fmt.Sprintf("will be created with role %s", model.ExpectedRole(issue.IdentityMetadata))
	case types.IssueRoleMismatch:
		return fmt.Sprintf("role %s, identity says %s", issue.CurrentRole, issue.ExpectedRole)
	case types.IssueOrphanedUser:
		return fmt.Sprintf("role %s, status %s", issue.CurrentRole, issue.Status)
	default:
		return ""
	}
}

func renderFixAll(w io.Writer, result *model.FixAllResult) {
	if result.Success {
		okColor.Fprintf(w, "Fixed %d issue(s)\n", result.Fixed)
		return
	}

	warnColor.Fprintf(w, "Fixed %d issue(s), %d failed\n", result.Fixed, len(result.Errors))
	for _, e := range result.Errors {
		errorColor.Fprintf(w, "  - %s\n", e)
	}
}

func renderFixResult(w io.Writer, action string, id model.UserID, result model.FixResult) {
	if result.Success {
		okColor.Fprintf(w, "%s %s: ok\n", action, id)
		return
	}
	errorColor.Fprintf(w, "%s %s: %s\n", action, id, result.Error)
}
