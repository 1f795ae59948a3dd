package gitctx

import (
	"context"
	"strings"
	"testing"

	"github.com/Yates-Labs/gitmeup/internal/runner"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zaptest"
)

func TestDiffArgs(t *testing.T) {
	args := DiffArgs()
	want := "diff -- . :(exclude)*.png :(exclude)*.jpg :(exclude)*.jpeg :(exclude)*.gif :(exclude)*.svg :(exclude)*.webp"
	if got := strings.Join(args, " "); got != want {
		t.Errorf("DiffArgs() = %q, want %q", got, want)
	}
}

func TestCollector_Collect(t *testing.T) {
	fake := runner.NewFake().
		On([]string{"git", "diff", "--stat"}, &runner.Result{Stdout: " a.go | 2 +-\n"}).
		On([]string{"git", "status", "--short"}, &runner.Result{Stdout: " M a.go\n?? b.go\n"}).
		On(append([]string{"git"}, DiffArgs()...), &runner.Result{Stdout: "diff --git a/a.go b/a.go\n"})

	c := NewCollector(fake, zaptest.NewLogger(t))
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.DiffStat != " a.go | 2 +-\n" {
		t.Errorf("unexpected diff stat: %q", snap.DiffStat)
	}
	if snap.Status != " M a.go\n?? b.go\n" {
		t.Errorf("unexpected status: %q", snap.Status)
	}
	if !strings.HasPrefix(snap.Diff, "diff --git") {
		t.Errorf("unexpected diff: %q", snap.Diff)
	}
	if len(fake.Calls) != 3 {
		t.Errorf("expected 3 git calls, got %d", len(fake.Calls))
	}
}

func TestCollector_CollectToleratesNonZeroExit(t *testing.T) {
	fake := runner.NewFake().
		On([]string{"git", "diff", "--stat"}, &runner.Result{ExitCode: 128, Stdout: "", Stderr: "fatal: bad revision"})

	c := NewCollector(fake, zaptest.NewLogger(t))
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("non-zero exit should not fail collection: %v", err)
	}
	if snap.DiffStat != "" {
		t.Errorf("expected empty diff stat, got %q", snap.DiffStat)
	}
}

func TestCollector_CollectGitMissing(t *testing.T) {
	fake := runner.NewFake().
		Fail([]string{"git", "diff", "--stat"}, runner.ErrCommandNotFound)

	c := NewCollector(fake, nil)
	_, err := c.Collect(context.Background())
	if !errors.Is(err, ErrGitUnavailable) {
		t.Fatalf("expected ErrGitUnavailable, got %v", err)
	}
}

func TestCollector_HasChanges(t *testing.T) {
	tests := []struct {
		name    string
		result  *runner.Result
		want    bool
		wantErr error
	}{
		{name: "clean", result: &runner.Result{Stdout: ""}, want: false},
		{name: "whitespace only", result: &runner.Result{Stdout: "\n  \n"}, want: false},
		{name: "dirty", result: &runner.Result{Stdout: " M a.go\n"}, want: true},
		{name: "git fails", result: &runner.Result{ExitCode: 128, Stderr: "fatal: not a git repository"}, wantErr: ErrQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := runner.NewFake().On([]string{"git", "status", "--porcelain"}, tt.result)
			c := NewCollector(fake, nil)

			got, err := c.HasChanges(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !strings.Contains(err.Error(), "not a git repository") {
					t.Errorf("error should carry git's stderr: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollector_IsWorkTree(t *testing.T) {
	fake := runner.NewFake().
		On([]string{"git", "rev-parse", "--is-inside-work-tree"}, &runner.Result{Stdout: "true\n"})
	c := NewCollector(fake, nil)

	ok, err := c.IsWorkTree(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected work tree, got %v, %v", ok, err)
	}

	fake = runner.NewFake().
		On([]string{"git", "rev-parse", "--is-inside-work-tree"}, &runner.Result{ExitCode: 128})
	c = NewCollector(fake, nil)

	ok, err = c.IsWorkTree(context.Background())
	if err != nil || ok {
		t.Fatalf("expected no work tree, got %v, %v", ok, err)
	}
}

func TestCollector_FinalStatus(t *testing.T) {
	fake := runner.NewFake().
		On([]string{"git", "status", "-sb"}, &runner.Result{Stdout: "## main\n"})
	c := NewCollector(fake, nil)

	out, err := c.FinalStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "## main\n" {
		t.Errorf("unexpected status: %q", out)
	}
}
