package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/qtforge/internal/app"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that this host can build Qt",
	Long: `Doctor checks the platform, the extraction tool, the Windows SDK and
the feature flag set. Nothing is run.

Examples:
  qtforge doctor
  qtforge doctor --extractor builtin
  qtforge doctor --config qtforge.yaml`,
	RunE: runDoctor,
}

var doctorExtractor string

func init() {
	doctorCmd.Flags().StringVar(&doctorExtractor, "extractor", "", "extraction method to check (external, builtin)")

	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	forge, err := newForge(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	report := forge.Doctor(context.Background(), app.Options{ConfigPath: cfgFile, Extractor: doctorExtractor})
	printReport(cmd.OutOrStdout(), report)

	if !report.Healthy() {
		return &exitError{code: 1, err: errors.New("doctor found issues")}
	}
	return nil
}
