// Package gitctx reads the state of the working tree: whether it is a git
// repository, whether anything changed, and the text views the model needs.
// All queries are read-only.
package gitctx

import (
	"context"
	"strings"

	"github.com/Yates-Labs/gitmeup/internal/runner"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	ErrGitUnavailable = errors.New("git could not be run")
	ErrQueryFailed    = errors.New("git query failed")
)

// ExcludedExtensions are left out of the textual diff sent to the model.
var ExcludedExtensions = []string{"png", "jpg", "jpeg", "gif", "svg", "webp"}

// Collector runs read-only git queries through a Runner.
type Collector struct {
	runner runner.Runner
	logger *zap.Logger
}

// NewCollector creates a collector. A nil logger disables logging.
func NewCollector(r runner.Runner, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{runner: r, logger: logger}
}

// DiffArgs returns the git arguments for the textual diff query.
func DiffArgs() []string {
	args := []string{"diff", "--", "."}
	for _, ext := range ExcludedExtensions {
		args = append(args, ":(exclude)*."+ext)
	}
	return args
}

// git runs a git subcommand. When strict is set a non-zero exit is an error;
// otherwise whatever was printed on stdout is used.
func (c *Collector) git(ctx context.Context, strict bool, args ...string) (string, error) {
	argv := append([]string{"git"}, args...)

	res, err := c.runner.Run(ctx, argv)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "git %s", strings.Join(args, " ")), ErrGitUnavailable)
	}
	if !res.Success() {
		if strict {
			return "", errors.Mark(
				errors.Newf("git %s failed with exit code %d: %s",
					strings.Join(args, " "), res.ExitCode, strings.TrimSpace(res.Stderr)),
				ErrQueryFailed)
		}
		c.logger.Warn("git query exited non-zero; using its output as-is",
			zap.Strings("args", args),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", strings.TrimSpace(res.Stderr)))
	}
	return res.Stdout, nil
}

// IsWorkTree asks git whether the current directory is inside a work tree.
func (c *Collector) IsWorkTree(ctx context.Context) (bool, error) {
	out, err := c.git(ctx, false, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

// HasChanges reports whether git status --porcelain prints anything.
func (c *Collector) HasChanges(ctx context.Context) (bool, error) {
	out, err := c.git(ctx, true, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Collect gathers the diff stat, short status and textual diff.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	stat, err := c.git(ctx, false, "diff", "--stat")
	if err != nil {
		return nil, err
	}
	status, err := c.git(ctx, false, "status", "--short")
	if err != nil {
		return nil, err
	}
	diff, err := c.git(ctx, false, DiffArgs()...)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Collected working tree context",
		zap.Int("diff_stat_bytes", len(stat)),
		zap.Int("status_bytes", len(status)),
		zap.Int("diff_bytes", len(diff)))

	return &Snapshot{DiffStat: stat, Status: status, Diff: diff}, nil
}

// FinalStatus returns git status -sb, shown once the plan has run.
func (c *Collector) FinalStatus(ctx context.Context) (string, error) {
	return c.git(ctx, false, "status", "-sb")
}
