package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Yates-Labs/gitmeup/internal/config"
	"github.com/Yates-Labs/gitmeup/internal/executor"
	"github.com/Yates-Labs/gitmeup/internal/gitctx"
	"github.com/Yates-Labs/gitmeup/internal/orchestrator"
	"github.com/Yates-Labs/gitmeup/internal/plan"
	"github.com/Yates-Labs/gitmeup/internal/proposal"
	"github.com/Yates-Labs/gitmeup/internal/ui"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

// isolateEnv points every configuration layer at empty locations.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GITMEUP_PROVIDER", "")
	t.Setenv("GITMEUP_MODEL", "")
	t.Chdir(t.TempDir())
}

func TestRoot_MissingAPIKey(t *testing.T) {
	resetFlags(t)
	isolateEnv(t)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"--apply"})

	err := rootCmd.Execute()
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("exit code = %d, want 1", ExitCode(err))
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed before configuration succeeds: %q", out.String())
	}
}

func TestRoot_ExplicitEmptyAPIKeyOverridesEnv(t *testing.T) {
	resetFlags(t)
	isolateEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--api-key", ""})

	if err := rootCmd.Execute(); !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey for an explicitly empty key, got %v", err)
	}
}

func TestFlagOverride(t *testing.T) {
	resetFlags(t)
	if err := rootCmd.Flags().Parse([]string{"--model", ""}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := flagOverride(rootCmd, "model", modelName); got == nil || *got != "" {
		t.Errorf("explicit empty flag should override, got %v", got)
	}
	if got := flagOverride(rootCmd, "api-key", apiKey); got != nil {
		t.Errorf("unset flag should not override, got %q", *got)
	}
}

func TestRoot_UnknownProvider(t *testing.T) {
	resetFlags(t)
	isolateEnv(t)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--provider", "mystery", "--api-key", "k"})

	if err := rootCmd.Execute(); !errors.Is(err, proposal.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestRoot_RejectsArguments(t *testing.T) {
	resetFlags(t)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"unexpected"})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error for positional arguments")
	}
}

func TestRoot_Version(t *testing.T) {
	resetFlags(t)
	rootCmd.Version = "1.2.3"
	t.Cleanup(func() { rootCmd.Version = Version })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "1.2.3") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "generic", err: errors.New("boom"), want: 1},
		{name: "child exit", err: &executor.ExitError{Code: 3, Command: plan.Command{"git", "commit"}}, want: 3},
		{name: "wrapped child exit", err: errors.Wrap(&executor.ExitError{Code: 128}, "apply"), want: 128},
		{name: "signal", err: &executor.ExitError{Code: -1}, want: 1},
		{name: "no block", err: orchestrator.ErrNoCommandBlock, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "already reported exit", err: &executor.ExitError{Code: 2}, want: ""},
		{name: "already reported extraction", err: orchestrator.ErrNoCommandBlock, want: ""},
		{
			name: "not a repository",
			err:  errors.WithHint(gitctx.ErrNotRepository, "cd somewhere"),
			want: "gitmeup: not inside a git repository.\n",
		},
		{
			name: "missing key",
			err:  errors.Mark(errors.New("Missing Gemini API key. Set GEMINI_API_KEY or use --api-key."), config.ErrMissingAPIKey),
			want: "Missing Gemini API key. Set GEMINI_API_KEY or use --api-key.\n",
		},
		{
			name: "generic with hint",
			err:  errors.WithHint(errors.New("boom"), "try again"),
			want: "gitmeup: boom\nhint: try again\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, ui.PlainStyles(), tt.err)
			if buf.String() != tt.want {
				t.Errorf("reportError() wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
