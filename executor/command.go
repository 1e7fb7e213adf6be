package executor

import (
	"fmt"
	"strings"
)

// CommandKind discriminates the three shapes a Command can take.
type CommandKind int

const (
	// KindShell is a single command string, substituted and tokenized at
	// execution time.
	KindShell CommandKind = iota
	// KindProcess is an argv vector spawned as a child process.
	KindProcess
	// KindCall is an in-process function invocation.
	KindCall
)

// CallFunc is the signature for in-process commands. The returned int is the
// command's exit status. Errors returned by a CallFunc propagate to the
// caller unmodified; the executor performs no recovery.
type CallFunc func(args ...string) (int, error)

// Command is an immutable, polymorphic command value. Construct one with
// Shell, Process or Call and dispatch on Kind.
type Command struct {
	kind CommandKind
	text string
	argv []string
	name string
	fn   CallFunc
	args []string
}

// Shell returns a command holding a single command string. The string is
// substituted against the executor's context and split on whitespace when
// executed.
func Shell(text string) Command {
	return Command{kind: KindShell, text: text}
}

// Process returns a command holding an argv vector to spawn as a child
// process.
func Process(argv ...string) Command {
	return Command{kind: KindProcess, argv: argv}
}

// Call returns a command that invokes fn in-process with the given arguments.
// name is only used when rendering the command for announcement.
func Call(name string, fn CallFunc, args ...string) Command {
	return Command{kind: KindCall, name: name, fn: fn, args: args}
}

// Kind returns the command's shape.
func (c Command) Kind() CommandKind {
	return c.kind
}

// String renders the command without substitution. Call commands render as
// funcname(arg1, arg2) with quoted arguments; argv vectors are joined with
// single spaces and embedded spaces are not quoted.
func (c Command) String() string {
	switch c.kind {
	case KindCall:
		quoted := make([]string, len(c.args))
		for i, arg := range c.args {
			quoted[i] = fmt.Sprintf("%q", arg)
		}
		return fmt.Sprintf("%s(%s)", c.name, strings.Join(quoted, ", "))
	case KindProcess:
		return strings.Join(c.argv, " ")
	default:
		return c.text
	}
}
