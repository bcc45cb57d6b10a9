package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/qtforge/internal/app"
	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/pipeline"
	"github.com/felixgeelhaar/qtforge/internal/domain/target"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Unpack, configure and optionally build Qt",
	Long: `Build unpacks the source archive next to itself, sets up the SDK
environment for the target architecture and runs Qt's configure.

By default the configure command is only logged. Pass --execute-configure
to run it, and --compile to also run the build and install steps.

Examples:
  qtforge build --qt-sources C:\src\qt-everywhere-src-5.12.2.7z --qt-version 5.12.2 --install-path C:\Qt\5.12.2
  qtforge build --qt-sources qt.7z --qt-version 5.12.2 --target x86 --install-path C:\Qt\x86 --execute-configure
  qtforge build --qt-sources qt.tar.xz --qt-version 5.12.2 --install-path C:\Qt --extractor builtin --execute-configure --compile`,
	RunE: runBuild,
}

var (
	qtSources        string
	qtVersion        string
	targetArch       string
	installPath      string
	executeConfigure bool
	compileQt        bool
	extractorMethod  string
)

func init() {
	addRequestFlags(buildCmd)
	buildCmd.Flags().BoolVar(&executeConfigure, "execute-configure", false, "run configure and build commands instead of only logging them")
	buildCmd.Flags().BoolVar(&compileQt, "compile", false, "run the build and install steps after configure")

	rootCmd.AddCommand(buildCmd)
}

// addRequestFlags registers the flags that describe a build request.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&qtSources, "qt-sources", "", "path to the Qt source archive")
	cmd.Flags().StringVar(&qtVersion, "qt-version", "", "Qt version as MAJOR.MINOR.PATCH")
	cmd.Flags().StringVar(&targetArch, "target", string(target.Default), "target architecture (x86, x64)")
	cmd.Flags().StringVar(&installPath, "install-path", "", "install prefix for the built Qt")
	cmd.Flags().StringVar(&extractorMethod, "extractor", "", "extraction method (external, builtin); overrides the config file")

	_ = cmd.MarkFlagRequired("qt-sources")
	_ = cmd.MarkFlagRequired("qt-version")
	_ = cmd.MarkFlagRequired("install-path")

	_ = cmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"x64\t64-bit",
			"x86\t32-bit",
		}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("extractor", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"external\t7-Zip found on PATH",
			"builtin\tIn-process zip and tar extraction",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

// requestFromFlags validates the request flags.
func requestFromFlags() (pipeline.Request, error) {
	arch, err := target.Parse(targetArch)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.NewRequest(qtSources, qtVersion, arch, installPath)
}

// runOptions collects the app options from the flags.
func runOptions() app.Options {
	mode := configure.ModeLogOnly
	if executeConfigure {
		mode = configure.ModeExecute
	}
	return app.Options{
		ConfigPath:    cfgFile,
		Extractor:     extractorMethod,
		ConfigureMode: mode,
		Compile:       compileQt,
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	req, err := requestFromFlags()
	if err != nil {
		return err
	}

	forge, err := newForge(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := forge.Build(ctx, req, runOptions())
	if err != nil {
		return err
	}

	printOutcome(cmd.OutOrStdout(), out)
	if !out.Success() {
		return &exitError{code: out.ExitCode, err: out.Failed}
	}
	return nil
}
