package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/qtforge/internal/domain/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the commands a build would run",
	Long: `Plan validates the request and prints every command the build would
run, without running any of them.

Examples:
  qtforge plan --qt-sources C:\src\qt-everywhere-src-5.12.2.7z --qt-version 5.12.2 --install-path C:\Qt\5.12.2
  qtforge plan --qt-sources qt.7z --qt-version 5.12.2 --install-path C:\Qt --compile`,
	RunE: runPlan,
}

var planCompile bool

func init() {
	addRequestFlags(planCmd)
	planCmd.Flags().BoolVar(&planCompile, "compile", false, "include the build and install steps")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	req, err := requestFromFlags()
	if err != nil {
		return err
	}

	forge, err := newForge(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := runOptions()
	opts.Compile = planCompile
	plan, err := forge.Plan(context.Background(), req, opts)
	if err != nil {
		return &exitError{code: pipeline.ExitCodeOf(err), err: err}
	}

	printPlan(cmd.OutOrStdout(), plan)
	return nil
}
