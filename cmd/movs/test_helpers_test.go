package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movs/internal/config"
	"movs/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	stub       *testsupport.TMDBStub
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")

	stub := testsupport.NewTMDBStub(t)
	opts = append([]testsupport.ConfigOption{testsupport.WithTMDBBaseURL(stub.URL())}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	return &cliTestEnv{
		cfg:        cfg,
		stub:       stub,
		configPath: testsupport.WriteConfig(t, cfg),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
