package matrix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-matrix/flags"
)

// newTestConfig runs NewConfig through a real cli.App so flag parsing,
// defaults and env var handling behave as they do in production.
func newTestConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var cfg *Config
	var cfgErr error
	app := &cli.App{
		Name:  "op-matrix",
		Flags: flags.Flags,
		Action: func(ctx *cli.Context) error {
			cfg, cfgErr = NewConfig(ctx, log.New())
			return nil
		},
	}

	err := app.Run(append([]string{"op-matrix"}, args...))
	require.NoError(t, err)
	return cfg, cfgErr
}

func TestNewConfig_NoTestsWithoutAll(t *testing.T) {
	_, err := newTestConfig(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tests specified")
}

func TestNewConfig_ExplicitTestsPassThrough(t *testing.T) {
	cfg, err := newTestConfig(t, "test-foo.sh", "test-bar.sh")
	require.NoError(t, err)

	assert.Equal(t, []string{"test-foo.sh", "test-bar.sh"}, cfg.Tests)
	// With no format flags a single default format is used
	require.Len(t, cfg.Formats, 1)
	assert.Equal(t, "default", cfg.Formats[0].Name)
	assert.True(t, cfg.RunOnce)
}

func TestNewConfig_DirectoryExpansion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"test-a.sh", "test-b.sh", "other.sh"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	cfg, err := newTestConfig(t, dir)
	require.NoError(t, err)

	require.Len(t, cfg.Tests, 2)
	assert.Equal(t, filepath.Join(dir, "test-a.sh"), cfg.Tests[0])
	assert.Equal(t, filepath.Join(dir, "test-b.sh"), cfg.Tests[1])
}

func TestNewConfig_FormatNames(t *testing.T) {
	cfg, err := newTestConfig(t, "--format", "make, ninja", "test-a.sh")
	require.NoError(t, err)

	require.Len(t, cfg.Formats, 2)
	assert.Equal(t, "make", cfg.Formats[0].Name)
	assert.Equal(t, "ninja", cfg.Formats[1].Name)
	assert.Empty(t, cfg.Formats[0].Env)
}

func TestNewConfig_FormatsConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "formats.yaml")
	content := `
formats:
  - name: make
    description: Makefile generator
    env:
      GENERATOR_FLAVOR: make
  - name: ninja
    env:
      GENERATOR_FLAVOR: ninja
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	t.Run("all formats when no names given", func(t *testing.T) {
		cfg, err := newTestConfig(t, "--formats-config", configPath, "test-a.sh")
		require.NoError(t, err)

		require.Len(t, cfg.Formats, 2)
		assert.Equal(t, "make", cfg.Formats[0].Name)
		assert.Equal(t, "make", cfg.Formats[0].Env["GENERATOR_FLAVOR"])
	})

	t.Run("names select from the config", func(t *testing.T) {
		cfg, err := newTestConfig(t, "--formats-config", configPath, "--format", "ninja", "test-a.sh")
		require.NoError(t, err)

		require.Len(t, cfg.Formats, 1)
		assert.Equal(t, "ninja", cfg.Formats[0].Name)
	})

	t.Run("unknown name is an error", func(t *testing.T) {
		_, err := newTestConfig(t, "--formats-config", configPath, "--format", "xcode", "test-a.sh")
		require.Error(t, err)
	})
}

func TestNewConfig_Chdir(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(orig))
	})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test-a.sh"), []byte("#!/bin/sh\n"), 0o755))

	cfg, cfgErr := newTestConfig(t, "--chdir", dir, "--all")
	require.NoError(t, cfgErr)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, resolveSymlinks(t, dir), resolveSymlinks(t, wd))

	// The default "test" directory does not exist here, so the argument
	// passes through verbatim.
	assert.Equal(t, []string{"test"}, cfg.Tests)
}

func TestNewConfig_Path(t *testing.T) {
	origPath := os.Getenv("PATH")
	t.Cleanup(func() {
		require.NoError(t, os.Setenv("PATH", origPath))
	})

	dir := t.TempDir()
	_, err := newTestConfig(t, "--path", dir, "test-a.sh")
	require.NoError(t, err)

	assert.Contains(t, os.Getenv("PATH"), dir)
}

func TestNewConfig_Modes(t *testing.T) {
	cfg, err := newTestConfig(t,
		"--no-exec", "--quiet", "--passed", "--list",
		"--interpreter", "python3",
		"--run-interval", "1h",
		"test-a.sh")
	require.NoError(t, err)

	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.ReportPassed)
	assert.True(t, cfg.ListOnly)
	assert.Equal(t, "python3", cfg.Interpreter)
	assert.False(t, cfg.RunOnce)
}

func TestNewConfig_LogDirAbsolute(t *testing.T) {
	cfg, err := newTestConfig(t, "test-a.sh")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.LogDir))
}

func resolveSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
