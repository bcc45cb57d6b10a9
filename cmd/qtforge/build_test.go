package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/domain/target"
)

func setRequestFlags(t *testing.T, sources, ver, arch, install string) {
	t.Helper()
	qtSources, qtVersion, targetArch, installPath = sources, ver, arch, install
	t.Cleanup(func() {
		qtSources, qtVersion, targetArch, installPath = "", "", string(target.Default), ""
		executeConfigure, compileQt, extractorMethod = false, false, ""
	})
}

func TestBuildCmd_Flags(t *testing.T) {
	for _, name := range []string{"qt-sources", "qt-version", "target", "install-path", "execute-configure", "compile", "extractor"} {
		assert.NotNil(t, buildCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "x64", buildCmd.Flags().Lookup("target").DefValue)
	assert.Equal(t, "false", buildCmd.Flags().Lookup("execute-configure").DefValue)
}

func TestRequestFromFlags(t *testing.T) {
	setRequestFlags(t, "/src/qt-5.12.2.7z", "5.12.2", "amd64", "/opt/qt")

	req, err := requestFromFlags()
	require.NoError(t, err)
	assert.Equal(t, target.X64, req.Arch())
	assert.Equal(t, "5.12.2", req.Version())
}

func TestRequestFromFlags_Invalid(t *testing.T) {
	setRequestFlags(t, "/src/qt.7z", "5.12.2", "arm", "/opt/qt")
	_, err := requestFromFlags()
	assert.ErrorIs(t, err, stage.ErrUnsupportedArchitecture)

	setRequestFlags(t, "/src/qt.7z", "5.12", "x86", "/opt/qt")
	_, err = requestFromFlags()
	assert.ErrorIs(t, err, stage.ErrInvalidVersion)
}

func TestRunOptions(t *testing.T) {
	setRequestFlags(t, "", "", "x64", "")

	opts := runOptions()
	assert.Equal(t, configure.ModeLogOnly, opts.ConfigureMode)
	assert.False(t, opts.Compile)

	executeConfigure, compileQt, extractorMethod = true, true, "builtin"
	opts = runOptions()
	assert.Equal(t, configure.ModeExecute, opts.ConfigureMode)
	assert.True(t, opts.Compile)
	assert.Equal(t, "builtin", opts.Extractor)
}

func TestBuildCmd_MissingArchive(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"build", "--qt-sources", t.TempDir() + "/missing.7z", "--qt-version", "5.12.2", "--install-path", t.TempDir()})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	t.Cleanup(func() {
		qtSources, qtVersion, targetArch, installPath = "", "", string(target.Default), ""
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	code := exitCode(err)
	assert.Contains(t, []int{1, -1}, code)
}
