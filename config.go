package matrix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-matrix/discovery"
	"github.com/ethereum-optimism/infra/op-matrix/flags"
	"github.com/ethereum-optimism/infra/op-matrix/registry"
	"github.com/ethereum-optimism/infra/op-matrix/types"
	"github.com/ethereum/go-ethereum/log"
)

// Config holds the application configuration
type Config struct {
	Tests        []string       // Test programs to run, after directory expansion
	Formats      []types.Format // Formats each test runs under
	Interpreter  string         // Interpreter tests are launched with; empty runs them directly
	TestPrefix   string         // File name prefix used during directory expansion
	TestSuffix   string         // File name suffix used during directory expansion
	RunInterval  time.Duration  // Interval between matrix runs
	RunOnce      bool           // Indicates if the service should exit after one matrix run
	ListOnly     bool           // List the discovered tests and exit
	DryRun       bool           // Print command lines without executing anything
	Quiet        bool           // Suppress command lines and the results table
	ReportPassed bool           // Include passed tests in the summary
	LogDir       string         // Directory to store test logs
	Log          log.Logger
}

// NewConfig creates a new Config from cli context. Changing directory and
// extending $PATH happen here so that test discovery below sees their effect,
// the same way the flags are applied on the command line.
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	// Parse flags
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	if chdir := ctx.String(flags.Chdir.Name); chdir != "" {
		if err := os.Chdir(chdir); err != nil {
			return nil, fmt.Errorf("failed to change directory to '%s': %w", chdir, err)
		}
	}

	if extra := ctx.StringSlice(flags.Path.Name); len(extra) > 0 {
		if err := extendPath(extra); err != nil {
			return nil, err
		}
	}

	prefix := ctx.String(flags.TestPrefix.Name)
	suffix := ctx.String(flags.TestSuffix.Name)

	args := ctx.Args().Slice()
	if len(args) == 0 {
		if !ctx.Bool(flags.All.Name) {
			return nil, errors.New("no tests specified; pass test paths or use --all")
		}
		args = []string{"test"}
	}

	tests, err := discovery.ExpandTests(args, prefix, suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to expand test arguments: %w", err)
	}
	if len(tests) == 0 {
		return nil, errors.New("no tests found")
	}

	formats, err := resolveFormats(ctx, log)
	if err != nil {
		return nil, err
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	// Get log directory, default to "logs" if not specified
	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	return &Config{
		Tests:        tests,
		Formats:      formats,
		Interpreter:  ctx.String(flags.Interpreter.Name),
		TestPrefix:   prefix,
		TestSuffix:   suffix,
		RunInterval:  runInterval,
		RunOnce:      runOnce,
		ListOnly:     ctx.Bool(flags.List.Name),
		DryRun:       ctx.Bool(flags.NoExec.Name),
		Quiet:        ctx.Bool(flags.Quiet.Name),
		ReportPassed: ctx.Bool(flags.ReportPassed.Name),
		LogDir:       logDir,
		Log:          log,
	}, nil
}

// resolveFormats determines the format list for the run. When a formats config
// file is given the names from --format select from it (all of them when the
// flag is empty); otherwise each name becomes a bare format with no extra
// environment, and with no names at all the run uses a single default format.
func resolveFormats(ctx *cli.Context, log log.Logger) ([]types.Format, error) {
	names := splitFormatNames(ctx.String(flags.Format.Name))

	if configFile := ctx.String(flags.FormatsConfig.Name); configFile != "" {
		reg, err := registry.NewRegistry(registry.Config{
			Log:               log,
			FormatsConfigFile: configFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load formats config: %w", err)
		}
		if len(names) == 0 {
			return reg.Formats(), nil
		}
		return reg.Select(names)
	}

	if len(names) == 0 {
		return []types.Format{{Name: "default"}}, nil
	}

	formats := make([]types.Format, 0, len(names))
	for _, name := range names {
		formats = append(formats, types.Format{Name: name})
	}
	return formats, nil
}

func splitFormatNames(csv string) []string {
	var names []string
	for _, name := range strings.Split(csv, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func extendPath(dirs []string) error {
	path := os.Getenv("PATH")
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path for '%s': %w", dir, err)
		}
		path = path + string(os.PathListSeparator) + abs
	}
	return os.Setenv("PATH", path)
}
