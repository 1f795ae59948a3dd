package runner

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zaptest"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX sh")
	}
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	skipWithoutShell(t)
	r := NewCapturing("", zaptest.NewLogger(t))

	res, err := r.Run(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got exit code %d", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("unexpected stdout: %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("unexpected stderr: %q", res.Stderr)
	}
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	skipWithoutShell(t)
	r := NewCapturing("", nil)

	res, err := r.Run(context.Background(), []string{"sh", "-c", "exit 3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.Success() {
		t.Error("result should not report success")
	}
}

func TestExecRunner_StreamsWhenWritersSet(t *testing.T) {
	skipWithoutShell(t)
	var stdout, stderr bytes.Buffer
	r := NewInheriting("", &stdout, &stderr, nil)

	res, err := r.Run(context.Background(), []string{"sh", "-c", "echo streamed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "" {
		t.Errorf("streamed output should not be captured, got %q", res.Stdout)
	}
	if strings.TrimSpace(stdout.String()) != "streamed" {
		t.Errorf("unexpected streamed stdout: %q", stdout.String())
	}
}

func TestExecRunner_WorkingDirectory(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	r := NewCapturing(dir, nil)

	res, err := r.Run(context.Background(), []string{"pwd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(res.Stdout), lastElem(dir)) {
		t.Errorf("expected pwd inside %s, got %q", dir, res.Stdout)
	}
}

func TestExecRunner_NotFound(t *testing.T) {
	r := NewCapturing("", nil)

	_, err := r.Run(context.Background(), []string{"gitmeup-no-such-binary-7f3a"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	r := NewCapturing("", nil)

	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestFake(t *testing.T) {
	boom := errors.New("boom")
	f := NewFake().
		On([]string{"git", "status"}, &Result{Stdout: "clean"}).
		Fail([]string{"git", "push"}, boom)

	ctx := context.Background()

	res, err := f.Run(ctx, []string{"git", "status"})
	if err != nil || res.Stdout != "clean" {
		t.Fatalf("unexpected response: %+v, %v", res, err)
	}

	if _, err := f.Run(ctx, []string{"git", "push"}); !errors.Is(err, boom) {
		t.Errorf("expected scripted error, got %v", err)
	}

	res, err = f.Run(ctx, []string{"echo", "hi"})
	if err != nil || !res.Success() {
		t.Errorf("unknown commands should succeed, got %+v, %v", res, err)
	}

	if len(f.Calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(f.Calls))
	}
	if strings.Join(f.Calls[2], " ") != "echo hi" {
		t.Errorf("unexpected call record: %v", f.Calls[2])
	}
}

func lastElem(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
