package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/qtforge/internal/app"
	"github.com/felixgeelhaar/qtforge/internal/domain/pipeline"
	"github.com/felixgeelhaar/qtforge/internal/tui/ui"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// stylesFor returns colored styles for terminals and plain ones otherwise.
func stylesFor(w io.Writer) ui.Styles {
	if isTerminal(w) {
		return ui.DefaultStyles()
	}
	return ui.Plain()
}

// printOutcome prints one line per stage. Failures are left to Execute.
func printOutcome(w io.Writer, out pipeline.Outcome) {
	s := stylesFor(w)

	for _, r := range out.Results {
		line := fmt.Sprintf("%s %s %s", s.Mark(r.Success()), s.Stage.Render(string(r.Stage())),
			s.Muted.Render(r.Duration().Round(time.Millisecond).String()))
		_, _ = fmt.Fprintln(w, line)
	}

	if out.Success() {
		_, _ = fmt.Fprintf(w, "\n%s %s\n", s.Success.Render(ui.MarkOK), s.Title.Render(out.Message))
		if out.Paths.InstallPath != "" {
			_, _ = fmt.Fprintf(w, "  install path: %s\n", out.Paths.InstallPath)
		}
		return
	}

	if len(out.Results) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s aborted at %s\n", s.Error.Render(ui.MarkFailed), out.AbortedAt)
	}
}

// printPlan prints the composed commands of a plan.
func printPlan(w io.Writer, plan *app.Plan) {
	s := stylesFor(w)

	_, _ = fmt.Fprintf(w, "%s\n", s.Title.Render("Build plan for "+plan.Profile.String()))
	_, _ = fmt.Fprintf(w, "  archive:     %s\n", plan.Paths.Archive)
	_, _ = fmt.Fprintf(w, "  destination: %s\n", plan.Paths.Destination)
	_, _ = fmt.Fprintf(w, "  install:     %s\n", plan.Paths.InstallPath)
	_, _ = fmt.Fprintf(w, "  flag set:    %s (%d flags)\n\n", plan.FlagSet.Name, len(plan.FlagSet.Flags))

	for i, step := range plan.Steps {
		_, _ = fmt.Fprintf(w, "%d. %s\n", i+1, s.Stage.Render(string(step.Stage)))
		if step.Command != "" {
			_, _ = fmt.Fprintf(w, "   %s %s\n", ui.MarkArrow, s.Command.Render(step.Command))
		}
		if step.Note != "" {
			_, _ = fmt.Fprintf(w, "   %s\n", s.Muted.Render(step.Note))
		}
	}
}

// printReport prints a doctor report.
func printReport(w io.Writer, report app.Report) {
	s := stylesFor(w)

	for _, c := range report.Checks {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", s.Mark(c.OK), s.Stage.Render(c.Name), c.Detail)
		if !c.OK && c.Suggestion != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", s.Warning.Render(c.Suggestion))
		}
	}

	failed := report.Failed()
	if len(failed) == 0 {
		_, _ = fmt.Fprintln(w, "\nNo issues found. This host can build Qt.")
		return
	}
	names := make([]string, len(failed))
	for i, c := range failed {
		names[i] = c.Name
	}
	_, _ = fmt.Fprintf(w, "\nFound %d issues: %s\n", len(failed), strings.Join(names, ", "))
}
