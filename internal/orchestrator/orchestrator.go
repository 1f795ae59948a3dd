// Package orchestrator runs one gitmeup invocation end to end: probe the
// repository, collect context, ask the model, extract and parse the command
// block, review it against the policy, then print or apply the plan.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Yates-Labs/gitmeup/internal/config"
	"github.com/Yates-Labs/gitmeup/internal/executor"
	"github.com/Yates-Labs/gitmeup/internal/gitctx"
	"github.com/Yates-Labs/gitmeup/internal/plan"
	"github.com/Yates-Labs/gitmeup/internal/policy"
	"github.com/Yates-Labs/gitmeup/internal/proposal"
	"github.com/Yates-Labs/gitmeup/internal/runner"
	"github.com/Yates-Labs/gitmeup/internal/ui"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	ErrNoCommandBlock  = errors.New("failed to extract bash command block from model output")
	ErrInvalidPipeline = errors.New("invalid pipeline configuration")
)

const (
	CleanTreeMessage = "Working tree clean. Nothing to commit."
	LogHint          = "  git log --oneline --graph --decorate -n 10"

	// newCommitScanLimit bounds the history walk used to list commits created
	// by an apply run.
	newCommitScanLimit = 50
)

// Dependencies are the collaborators a pipeline talks to. Tests substitute
// fakes for the runners and the LLM.
type Dependencies struct {
	// GitRunner captures the output of read-only git queries
	GitRunner runner.Runner

	// CommandRunner runs proposed commands with the terminal's streams
	CommandRunner runner.Runner

	LLM proposal.LLM

	// Dir is the working tree directory; defaults to "."
	Dir string

	Out    io.Writer
	Err    io.Writer
	Styles ui.Styles
	Logger *zap.Logger
}

// Outcome summarizes a finished run.
type Outcome struct {
	// Clean is set when there was nothing to commit and no model call was made
	Clean bool

	Repo        *gitctx.RepoInfo
	Proposal    *proposal.Proposal
	Plan        plan.Plan
	Report      policy.Report
	NewCommits  []gitctx.Commit
	FinalStatus string
}

// Pipeline wires the components for one run.
type Pipeline struct {
	config    *config.Config
	deps      Dependencies
	collector *gitctx.Collector
	generator *proposal.Generator
	policy    *policy.Policy
	executor  *executor.Executor
	logger    *zap.Logger
}

// NewPipeline validates the dependencies and builds a pipeline.
func NewPipeline(cfg *config.Config, deps Dependencies) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.Wrap(ErrInvalidPipeline, "config is required")
	}
	if deps.GitRunner == nil || deps.CommandRunner == nil {
		return nil, errors.Wrap(ErrInvalidPipeline, "runners are required")
	}
	if deps.LLM == nil {
		return nil, errors.Wrap(ErrInvalidPipeline, "LLM is required")
	}
	if deps.Dir == "" {
		deps.Dir = "."
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	pol := policy.Default()
	pol.Unrestricted = cfg.Unrestricted

	return &Pipeline{
		config:    cfg,
		deps:      deps,
		collector: gitctx.NewCollector(deps.GitRunner, deps.Logger.Named("gitctx")),
		generator: proposal.NewGenerator(deps.LLM, cfg.LLMConfig(), deps.Logger.Named("proposal")),
		policy:    pol,
		executor:  executor.NewExecutor(deps.CommandRunner, deps.Out, deps.Err, deps.Styles, deps.Logger.Named("executor")),
		logger:    deps.Logger,
	}, nil
}

// Run executes the pipeline. Errors are returned unprinted except for the
// extraction failure, whose raw model output is shown to the user.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{}

	// Step 1: make sure we are in a working tree
	ok, err := p.collector.IsWorkTree(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WithHint(gitctx.ErrNotRepository, "run gitmeup from inside a git working tree")
	}

	_, info, err := gitctx.Probe(p.deps.Dir)
	if err != nil {
		// git itself accepted the tree; go-git is only used for HEAD details
		p.logger.Warn("Could not inspect repository with go-git", zap.Error(err))
	} else {
		outcome.Repo = info
		p.logger.Debug("Repository detected",
			zap.String("branch", info.Branch),
			zap.String("head", info.HeadHash),
			zap.Bool("detached", info.Detached))
	}

	// Step 2: nothing to do on a clean tree
	dirty, err := p.collector.HasChanges(ctx)
	if err != nil {
		return nil, err
	}
	if !dirty {
		p.println(p.deps.Styles.Success.Render(CleanTreeMessage))
		outcome.Clean = true
		return outcome, nil
	}

	// Step 3: collect context and ask the model
	snap, err := p.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	prop, err := p.generator.Generate(ctx, proposal.AssembleSnapshotPrompt(snap))
	if err != nil {
		return nil, err
	}
	outcome.Proposal = prop

	// Step 4: extract and parse the command block
	block := plan.Extract(prop.Text)
	if block == "" {
		for _, b := range plan.Blocks(prop.Text) {
			p.logger.Debug("Fenced block not usable as commands",
				zap.String("tag", b.Tag),
				zap.Int("lines", len(b.Lines)),
				zap.Bool("terminated", b.Terminated))
		}
		fmt.Fprintln(p.deps.Err, p.deps.Styles.Error.Render("gitmeup: "+ErrNoCommandBlock.Error()+"."))
		fmt.Fprintf(p.deps.Out, "Raw output:\n %s\n", prop.Text)
		return outcome, ErrNoCommandBlock
	}

	entries, err := plan.ParseEntries(block)
	if err != nil {
		return outcome, err
	}

	outcome.Plan = plan.Plan{Apply: p.config.Apply, Commands: make([]plan.Command, len(entries))}
	for i, e := range entries {
		outcome.Plan.Commands[i] = e.Command
	}

	// Step 5: review against the command policy
	outcome.Report = p.policy.Review(entries)
	p.printFindings(outcome.Report)
	if p.config.Apply {
		if err := outcome.Report.Err(); err != nil {
			return outcome, err
		}
	}

	if p.config.ExportPath != "" {
		if err := p.export(outcome.Plan, prop); err != nil {
			return outcome, err
		}
	}

	// Step 6: print or apply
	if err := p.executor.Execute(ctx, outcome.Plan); err != nil {
		return outcome, err
	}

	if p.config.Apply && info != nil {
		outcome.NewCommits = p.newCommits(info.HeadHash)
		p.printNewCommits(outcome.NewCommits)
	}

	// Step 7: show where the tree ended up
	status, err := p.collector.FinalStatus(ctx)
	if err != nil {
		return outcome, err
	}
	outcome.FinalStatus = status

	p.printf("\n%s\n\n", p.deps.Styles.Header.Render("Final git status:"))
	p.printf("%s\n", status)
	p.println("Review your history with:")
	p.println(p.deps.Styles.Command.Render(LogHint))

	return outcome, nil
}

// export writes the parsed plan as JSON to the configured path.
func (p *Pipeline) export(pl plan.Plan, prop *proposal.Proposal) error {
	f, err := os.Create(p.config.ExportPath)
	if err != nil {
		return errors.Wrapf(err, "create export file %s", p.config.ExportPath)
	}
	defer f.Close()

	meta := plan.ExportMetadata{
		Provider:    prop.Generation.Provider,
		Model:       prop.Generation.Model,
		GeneratedAt: prop.GeneratedAt,
	}
	if err := plan.ExportPlan(pl, meta, string(plan.FormatJSON), f); err != nil {
		return errors.Wrap(err, "export plan")
	}

	p.logger.Debug("Exported plan", zap.String("path", p.config.ExportPath))
	return nil
}

// newCommits lists the commits made since oldHead. Failures are logged and
// yield no commits; the run itself already succeeded.
func (p *Pipeline) newCommits(oldHead string) []gitctx.Commit {
	repo, err := gitctx.OpenRepository(p.deps.Dir)
	if err != nil {
		p.logger.Warn("Could not reopen repository", zap.Error(err))
		return nil
	}

	recent, err := gitctx.RecentCommits(repo, newCommitScanLimit)
	if err != nil {
		p.logger.Warn("Could not read recent commits", zap.Error(err))
		return nil
	}

	return commitsSince(recent, oldHead)
}
