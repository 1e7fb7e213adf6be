// Package executor uniformly executes polymorphic commands: shell-style
// command strings, argv vectors spawned as child processes, and in-process
// function calls. Every command yields an integer exit status; by convention
// 0 is success and the orchestrator layers above assign meaning to the rest.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// Config holds the knobs for an Executor.
type Config struct {
	// Subst is the default substitution context applied to shell command
	// strings. Empty means no substitution is performed.
	Subst map[string]string
	// Verbose enables command announcement before execution.
	Verbose bool
	// DryRun announces commands but never executes them; every command
	// reports success.
	DryRun bool
	// Out receives announcements. Defaults to os.Stdout. Every write is
	// flushed immediately so announcements interleave deterministically with
	// child process output directed at the same stream.
	Out io.Writer
	Log log.Logger
}

// Executor runs Commands one at a time. It is strictly sequential: Execute
// blocks until the command completes, and the captured-output buffer holds
// the output of the most recent capture only.
type Executor struct {
	subst    map[string]string
	verbose  bool
	active   bool
	out      io.Writer
	log      log.Logger
	captured []byte
}

// New creates an Executor from cfg.
func New(cfg Config) *Executor {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &Executor{
		subst:   cfg.Subst,
		verbose: cfg.Verbose,
		active:  !cfg.DryRun,
		out:     cfg.Out,
		log:     cfg.Log,
	}
}

// Substitute interpolates the substitution context into template. override,
// when non-nil, replaces the executor's default context for this call. An
// empty context and a placeholder-free template both pass through unchanged.
// A template using positional verbs against the map context falls back to
// the unmodified template; a missing key or malformed template is an error.
func (e *Executor) Substitute(template string, override map[string]string) (string, error) {
	dict := e.subst
	if override != nil {
		dict = override
	}
	if len(dict) == 0 {
		return template, nil
	}
	out, err := interpolate(template, dict)
	if errors.Is(err, errNotMapping) {
		return template, nil
	}
	if err != nil {
		return template, err
	}
	return out, nil
}

// Announce renders cmd to the announcement writer when verbosity is enabled.
// Shell commands are substituted first; the rendered line always carries
// exactly one trailing newline and is flushed immediately.
func (e *Executor) Announce(cmd Command) error {
	if !e.verbose {
		return nil
	}
	s := cmd.String()
	if cmd.Kind() == KindShell {
		var err error
		s, err = e.Substitute(s, nil)
		if err != nil {
			return err
		}
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	writeAndFlush(e.out, s)
	return nil
}

// Execute runs a single command and returns its exit status.
//
// stdout and stderr name the sinks for a spawned child's streams. A nil
// stdout captures the child's output for later inspection via Output; a nil
// stderr folds stderr into stdout.
//
// In dry-run mode Execute short-circuits to success without side effects.
// Shell strings are substituted and split on whitespace — the tokenizer does
// not handle quoting, a known limitation — and a leading "cd" verb becomes an
// in-process directory change so it affects the orchestrator itself. Spawn
// failures and in-process call errors propagate unmodified; a child's
// nonzero exit is not an error, it is the returned status.
func (e *Executor) Execute(ctx context.Context, cmd Command, stdout, stderr io.Writer) (int, error) {
	if !e.active {
		return 0, nil
	}
	switch cmd.Kind() {
	case KindShell:
		s, err := e.Substitute(cmd.text, nil)
		if err != nil {
			return 0, err
		}
		tokens := strings.Fields(s)
		if len(tokens) == 0 {
			return 0, fmt.Errorf("empty command")
		}
		if tokens[0] == "cd" {
			return e.Execute(ctx, chdirCall(tokens[1:]), stdout, stderr)
		}
		return e.Execute(ctx, Process(tokens...), stdout, stderr)
	case KindCall:
		return cmd.fn(cmd.args...)
	default:
		return e.spawn(ctx, cmd.argv, stdout, stderr)
	}
}

// Run announces cmd and then executes it. When display commands are given,
// the first one is announced in place of cmd, mirroring a run that wants to
// show something other than what it executes.
func (e *Executor) Run(ctx context.Context, cmd Command, stdout, stderr io.Writer, display ...Command) (int, error) {
	shown := cmd
	if len(display) > 0 {
		shown = display[0]
	}
	if err := e.Announce(shown); err != nil {
		return 0, err
	}
	return e.Execute(ctx, cmd, stdout, stderr)
}

// Output returns the output captured from the most recent command that ran
// without an explicit stdout sink. The buffer is overwritten by each capture;
// callers relying on it must consume it before the next Execute.
func (e *Executor) Output() []byte {
	return e.captured
}

func (e *Executor) spawn(ctx context.Context, argv []string, stdout, stderr io.Writer) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty argv")
	}
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var capture *TailBuffer
	if stdout != nil {
		c.Stdout = stdout
	} else {
		capture = NewTailBuffer(0)
		c.Stdout = capture
	}
	if stderr != nil {
		c.Stderr = stderr
	} else {
		c.Stderr = c.Stdout
	}

	e.log.Debug("Spawning command", "argv", strings.Join(argv, " "))
	runErr := c.Run()
	if capture != nil {
		e.captured = capture.Bytes()
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		// Launch failure (missing executable, permission denied): propagate.
		return 0, fmt.Errorf("failed to spawn %q: %w", argv[0], runErr)
	}
	return 0, nil
}

// chdirCall translates a tokenized "cd" into an in-process directory change;
// spawning a child for it would have no lasting effect on the orchestrator.
func chdirCall(args []string) Command {
	return Call("chdir", func(a ...string) (int, error) {
		if len(a) != 1 {
			return 0, fmt.Errorf("cd: want exactly one argument, got %d", len(a))
		}
		if err := os.Chdir(a[0]); err != nil {
			return 0, err
		}
		return 0, nil
	}, args...)
}

// writeAndFlush writes s and forces it out immediately. Orchestrator
// commentary and child process output often share a sink; unbuffered writes
// keep their interleaving deterministic.
func writeAndFlush(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
	switch f := w.(type) {
	case interface{ Flush() error }:
		_ = f.Flush()
	case interface{ Sync() error }:
		_ = f.Sync()
	}
}
