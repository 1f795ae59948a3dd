// Package executor prints an execution plan and, in apply mode, runs its
// commands one at a time, stopping at the first failure.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Yates-Labs/gitmeup/internal/plan"
	"github.com/Yates-Labs/gitmeup/internal/runner"
	"github.com/Yates-Labs/gitmeup/internal/ui"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	// ExitCommandNotFound follows the shell convention for a missing program.
	ExitCommandNotFound = 127

	// ExitRunFailed is used when a command could not be started for another reason.
	ExitRunFailed = 1

	DryRunNotice = "Dry run: not executing commands. Re-run with --apply to execute."
)

// ExitError reports the command that stopped an apply run.
type ExitError struct {
	Code    int
	Command plan.Command
	// Index is the zero-based position of the command in the plan
	Index int
	// Err is set when the command could not be started at all
	Err error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %d (%s) could not be run: %v", e.Index+1, e.Command, e.Err)
	}
	return fmt.Sprintf("command %d (%s) failed with exit code %d", e.Index+1, e.Command, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Executor renders and runs plans.
type Executor struct {
	runner runner.Runner
	out    io.Writer
	errOut io.Writer
	styles ui.Styles
	logger *zap.Logger
}

// NewExecutor creates an executor that writes progress to out and failures to
// errOut. Nil writers default to the process streams; a nil logger disables
// logging.
func NewExecutor(r runner.Runner, out, errOut io.Writer, styles ui.Styles, logger *zap.Logger) *Executor {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{runner: r, out: out, errOut: errOut, styles: styles, logger: logger}
}

// Execute prints the plan. In apply mode it then runs every command in order
// and returns an *ExitError for the first one that does not succeed. Commands
// that already ran are left as they are.
func (e *Executor) Execute(ctx context.Context, p plan.Plan) error {
	e.printf("%s\n\n", e.styles.Header.Render("Proposed commands:"))
	for _, line := range p.Lines() {
		e.printf("%s\n", e.styles.Command.Render(line))
	}

	if !p.Apply {
		e.printf("\n%s\n", e.styles.Muted.Render(DryRunNotice))
		return nil
	}

	e.printf("\n%s\n\n", e.styles.Header.Render("Executing commands..."))
	for i, cmd := range p.Commands {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "execution cancelled")
		}

		e.printf("%s\n", e.styles.Command.Render("+ "+cmd.String()))
		e.logger.Debug("Running command", zap.Int("index", i), zap.Strings("argv", cmd))

		exitErr := e.run(ctx, i, cmd)
		if exitErr != nil {
			if exitErr.Err != nil {
				fmt.Fprintf(e.errOut, "gitmeup: %v\n", exitErr.Err)
			}
			fmt.Fprintln(e.errOut, e.styles.Error.Render(
				fmt.Sprintf("Command failed with exit code %d. Aborting.", exitErr.Code)))
			e.logger.Debug("Command failed",
				zap.Int("index", i),
				zap.Int("exit_code", exitErr.Code),
				zap.Error(exitErr.Err))
			return exitErr
		}
	}

	e.printf("\n%s\n\n", e.styles.Success.Render("Commands executed."))
	return nil
}

func (e *Executor) run(ctx context.Context, i int, cmd plan.Command) *ExitError {
	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		code := ExitRunFailed
		if errors.Is(err, runner.ErrCommandNotFound) {
			code = ExitCommandNotFound
		}
		return &ExitError{Code: code, Command: cmd, Index: i, Err: err}
	}
	if !res.Success() {
		return &ExitError{Code: res.ExitCode, Command: cmd, Index: i}
	}
	return nil
}

func (e *Executor) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}
