// Package runner starts programs from argument vectors, without a shell, and
// reports how they exited. The git context collector and the command executor
// both run through it; tests use Fake.
package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	ErrEmptyCommand    = errors.New("empty command")
	ErrCommandNotFound = errors.New("command not found")
)

// Result describes a finished child process.
type Result struct {
	// ExitCode is the process exit status (0 on success)
	ExitCode int

	// Stdout holds captured standard output. Empty when output was streamed.
	Stdout string

	// Stderr holds captured standard error. Empty when output was streamed.
	Stderr string
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Runner runs a program described by an argument vector.
// A non-zero exit is reported through Result.ExitCode, not as an error;
// the error return is reserved for processes that could not be run at all.
type Runner interface {
	Run(ctx context.Context, argv []string) (*Result, error)
}

// ExecRunner runs commands as real child processes without a shell.
type ExecRunner struct {
	// Dir is the working directory; empty means the current directory.
	Dir string

	// Stdout and Stderr, when set, receive the child's streams directly and
	// nothing is captured. When nil, output is captured into the Result.
	Stdout io.Writer
	Stderr io.Writer

	// Stdin is connected to the child when set
	Stdin io.Reader

	Logger *zap.Logger
}

// NewCapturing returns a runner that captures output, used for read-only queries.
func NewCapturing(dir string, logger *zap.Logger) *ExecRunner {
	return &ExecRunner{Dir: dir, Logger: logger}
}

// NewInheriting returns a runner that streams child output to the given writers
// and gives the child the process's standard input.
func NewInheriting(dir string, stdout, stderr io.Writer, logger *zap.Logger) *ExecRunner {
	return &ExecRunner{Dir: dir, Stdout: stdout, Stderr: stderr, Stdin: os.Stdin, Logger: logger}
}

// Run starts argv[0] with the remaining arguments and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin

	var stdout, stderr bytes.Buffer
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	} else {
		cmd.Stdout = &stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stderr = &stderr
	}

	logger.Debug("Starting process", zap.Strings("argv", argv), zap.String("dir", r.Dir))

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		logger.Debug("Process exited with non-zero status",
			zap.Strings("argv", argv),
			zap.Int("exit_code", result.ExitCode))
		return result, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, errors.Mark(errors.Wrapf(err, "run %s", argv[0]), ErrCommandNotFound)
	}
	return nil, errors.Wrapf(err, "run %s", strings.Join(argv, " "))
}
