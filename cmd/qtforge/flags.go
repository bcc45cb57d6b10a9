package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Print the configure feature flags",
	Long: `Flags prints the feature flag set passed to configure after -prefix.

The set comes from the config file (feature_flags, feature_flags_file or
flag_set) or the built-in default.`,
	RunE: runFlags,
}

var flagsYAML bool

func init() {
	flagsCmd.Flags().BoolVar(&flagsYAML, "yaml", false, "print the flag set as a YAML document")

	rootCmd.AddCommand(flagsCmd)
}

func runFlags(cmd *cobra.Command, _ []string) error {
	forge, err := newForge(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	flags, err := forge.Flags(cfgFile)
	if err != nil {
		return err
	}

	if flagsYAML {
		data, err := yaml.Marshal(flags)
		if err != nil {
			return fmt.Errorf("failed to encode flag set: %w", err)
		}
		_, _ = cmd.OutOrStdout().Write(data)
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), flags.String())
	return nil
}
