package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Yates-Labs/gitmeup/internal/config"
	"github.com/Yates-Labs/gitmeup/internal/executor"
	"github.com/Yates-Labs/gitmeup/internal/gitctx"
	"github.com/Yates-Labs/gitmeup/internal/logging"
	"github.com/Yates-Labs/gitmeup/internal/orchestrator"
	"github.com/Yates-Labs/gitmeup/internal/proposal"
	"github.com/Yates-Labs/gitmeup/internal/runner"
	"github.com/Yates-Labs/gitmeup/internal/ui"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

var (
	modelName    string
	apiKey       string
	providerName string
	exportPath   string
	apply        bool
	unrestricted bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "gitmeup",
	Short: "Generate Conventional Commits from current git changes",
	Long: `gitmeup reads the changes in the current git working tree, asks a language
model to group them into Conventional Commits, and prints the proposed
git add/rm/mv and git commit commands.

Nothing is executed unless --apply is given. Commands run one at a time
without a shell and the run stops at the first failure.

Configuration is read from the environment, ~/.gitmeup.env and ./.env, in
that order of precedence. Flags override all three.

Environment variables:
  GEMINI_API_KEY     - API key for the gemini provider (default)
  OPENAI_API_KEY     - API key for the openai provider
  GITMEUP_MODEL      - Model name
  GITMEUP_PROVIDER   - gemini or openai

Examples:
  gitmeup
  gitmeup --apply
  gitmeup --provider openai --model gpt-4o-mini
  gitmeup --export plan.json`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGitmeup,
}

func init() {
	rootCmd.Flags().StringVar(&modelName, "model", "", "Model name (default: $GITMEUP_MODEL or the provider's default)")
	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "API key (default: $GEMINI_API_KEY or $OPENAI_API_KEY)")
	rootCmd.Flags().StringVar(&providerName, "provider", "", "Model provider: gemini or openai (default: $GITMEUP_PROVIDER or gemini)")
	rootCmd.Flags().BoolVar(&apply, "apply", false, "Execute generated git commands. Without this flag, just print them.")
	rootCmd.Flags().BoolVar(&unrestricted, "unrestricted", false, "Allow commands other than git add/rm/mv/commit/restore --staged")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Show diagnostic logging")
	rootCmd.Flags().StringVar(&exportPath, "export", "", "Write the parsed plan as JSON to this file")
}

func runGitmeup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sources, err := config.LoadDefaultSources()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(sources, config.Overrides{
		Provider: flagOverride(cmd, "provider", providerName),
		Model:    flagOverride(cmd, "model", modelName),
		APIKey:   flagOverride(cmd, "api-key", apiKey),
	})
	if err != nil {
		return err
	}
	cfg.Apply = apply
	cfg.Unrestricted = unrestricted
	cfg.Verbose = verbose
	cfg.ExportPath = exportPath

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	defer func() { _ = logger.Sync() }()

	logger.Debug("Configuration resolved",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.Model),
		zap.Bool("apply", cfg.Apply),
		zap.Bool("unrestricted", cfg.Unrestricted))

	llm, err := proposal.NewLLM(ctx, cfg.LLMConfig())
	if err != nil {
		return err
	}

	dir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "get working directory")
	}

	pipeline, err := orchestrator.NewPipeline(cfg, orchestrator.Dependencies{
		GitRunner:     runner.NewCapturing(dir, logger.Named("git")),
		CommandRunner: runner.NewInheriting(dir, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger.Named("exec")),
		LLM:           llm,
		Dir:           dir,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
		Styles:        ui.DefaultStyles(),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	_, err = pipeline.Run(ctx)
	return err
}

// flagOverride returns value when the flag was given on the command line,
// even as an empty string, and nil otherwise.
func flagOverride(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// ExitCode maps a run error to the process exit status. A failed command
// passes its own exit code through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *executor.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

// reportError prints err for the user unless the pipeline already did.
func reportError(w io.Writer, styles ui.Styles, err error) {
	var exitErr *executor.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr), errors.Is(err, orchestrator.ErrNoCommandBlock):
	case errors.Is(err, config.ErrMissingAPIKey), errors.Is(err, config.ErrMissingModel):
		fmt.Fprintln(w, styles.Error.Render(err.Error()))
	case errors.Is(err, gitctx.ErrNotRepository):
		fmt.Fprintln(w, styles.Error.Render("gitmeup: not inside a git repository."))
	default:
		fmt.Fprintf(w, "%s %v\n", styles.Error.Render("gitmeup:"), err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(w, styles.Muted.Render("hint: "+hint))
		}
	}
}

// Execute runs the root command and exits with the mapped status.
func Execute() {
	rootCmd.Version = Version

	err := rootCmd.Execute()
	reportError(rootCmd.ErrOrStderr(), ui.DefaultStyles(), err)
	os.Exit(ExitCode(err))
}
