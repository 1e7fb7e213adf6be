package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_MATRIX"

var (
	Format = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FORMAT"),
		Usage:   "Comma-separated list of formats to run the tests under (eg. 'make,ninja')",
	}
	FormatsConfig = &cli.StringFlag{
		Name:    "formats-config",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FORMATS_CONFIG"),
		Usage:   "Path to a YAML file describing the available formats (eg. 'formats.yaml')",
	}
	All = &cli.BoolFlag{
		Name:    "all",
		Aliases: []string{"a"},
		Usage:   "Run all tests when no test arguments are given",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "ALL"),
	}
	Chdir = &cli.StringFlag{
		Name:    "chdir",
		Aliases: []string{"C"},
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CHDIR"),
		Usage:   "Change to the specified directory before running tests",
	}
	List = &cli.BoolFlag{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List the discovered tests and exit",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LIST"),
	}
	NoExec = &cli.BoolFlag{
		Name:    "no-exec",
		Aliases: []string{"n"},
		Usage:   "Don't execute anything, just print the command lines",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "NO_EXEC"),
	}
	ReportPassed = &cli.BoolFlag{
		Name:    "passed",
		Usage:   "Report passed tests in the summary",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PASSED"),
	}
	Path = &cli.StringSliceFlag{
		Name:    "path",
		Usage:   "Additional $PATH directory (repeatable)",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PATH"),
	}
	Quiet = &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "Quiet, don't print test command lines or the results table",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "QUIET"),
	}
	Interpreter = &cli.StringFlag{
		Name:    "interpreter",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "INTERPRETER"),
		Usage:   "Interpreter to run each test with; tests execute directly when unset",
	}
	TestPrefix = &cli.StringFlag{
		Name:    "test-prefix",
		Value:   "test",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TEST_PREFIX"),
		Usage:   "File name prefix used when discovering tests in a directory",
	}
	TestSuffix = &cli.StringFlag{
		Name:    "test-suffix",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TEST_SUFFIX"),
		Usage:   "File name suffix used when discovering tests in a directory",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOGDIR"),
		Usage:   "Directory to store test logs",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between matrix runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Format,
	FormatsConfig,
	All,
	Chdir,
	List,
	NoExec,
	ReportPassed,
	Path,
	Quiet,
	Interpreter,
	TestPrefix,
	TestSuffix,
	LogDir,
	RunInterval,
}

var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
