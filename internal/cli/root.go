package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/prloop/prloop/internal/config"
	"github.com/prloop/prloop/internal/gh"
	"github.com/prloop/prloop/internal/logging"
	"github.com/prloop/prloop/internal/pr"
)

var (
	verbose       bool
	jsonOutput    bool
	repoFlag      string
	prNumberFlag  int
	includeChecks []string
	excludeChecks []string
	requireChecks bool
	pollInterval  time.Duration
	settleDelay   time.Duration

	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "prloop",
		Short: "Drive a pull request through review to a mergeable state",
		Long: `Prloop polls a pull request for CI check results and review threads and
classifies it as happy (nothing to do), actionable (a check failed or a
human commented), or waiting (checks still running). An automated coding
agent runs it between iterations to decide what to do next.

Prloop observes and classifies only: it never runs CI, never pushes
commits, and never resolves merge conflicts on its own.`,
		Example: `  prloop --repo octo/widgets --pr 42
  prloop wait --repo octo/widgets --pr 42 --happy --maintain-status
  prloop reply --repo octo/widgets --pr 42 --in-reply-to PRRC_abc --message "Fixed in latest revision" --resolve
  prloop ready --repo octo/widgets --pr 42`,
	}
)

func init() {
	rootCmd.RunE = runReport

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	pf.BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON instead of human output")
	pf.StringVar(&repoFlag, "repo", "", "Repository in owner/name form (required)")
	pf.IntVar(&prNumberFlag, "pr", 0, "Pull request number (required)")
	pf.StringSliceVar(&includeChecks, "include-checks", nil, "Only consider checks matching these glob patterns (env: PRLOOP_INCLUDE_CHECKS)")
	pf.StringSliceVar(&excludeChecks, "exclude-checks", nil, "Ignore checks matching these glob patterns (env: PRLOOP_EXCLUDE_CHECKS)")
	pf.BoolVar(&requireChecks, "require-checks", false, "Treat a PR with no checks as waiting rather than happy")
	pf.DurationVar(&pollInterval, "poll-interval", pr.DefaultPollInterval, "Delay between polls in wait mode")
	pf.DurationVar(&settleDelay, "settle-delay", pr.MinSettleDelay, "How long a green state must hold after a push before it is trusted")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	}

	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(checksCmd)
	rootCmd.AddCommand(cleanThreadsCmd)
	rootCmd.AddCommand(configCmd)
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolveRef builds the explicit PR reference from the required flags.
// Every command threads it through — there is no branch-derived default.
func resolveRef() (pr.PRRef, error) {
	if repoFlag == "" {
		return pr.PRRef{}, &pr.ConfigError{Field: "repo", Detail: "the --repo flag is required (owner/name)"}
	}
	return pr.ParsePRRef(repoFlag, prNumberFlag)
}

// classifyOptions merges the check filter and policy from config with flag
// overrides. Flags win over environment, environment over config files.
func classifyOptions() (pr.ClassifyOptions, error) {
	pf := rootCmd.PersistentFlags()

	filter := pr.CheckFilter{
		Include: appConfig.Checks.Include,
		Exclude: appConfig.Checks.Exclude,
	}
	if pf.Changed("include-checks") {
		filter.Include = includeChecks
	}
	if pf.Changed("exclude-checks") {
		filter.Exclude = excludeChecks
	}
	if err := filter.Validate(); err != nil {
		return pr.ClassifyOptions{}, err
	}

	require := appConfig.Checks.Require
	if pf.Changed("require-checks") {
		require = requireChecks
	}

	return pr.ClassifyOptions{Filter: filter, RequireChecks: require}, nil
}

// buildHost creates the GitHub collaborator from the configured token.
func buildHost() pr.Host {
	return gh.NewClient(appConfig.GitHub.Token)
}

// pollTimings returns the poll interval and settle delay, with flag
// overrides winning over config file values.
func pollTimings() (interval, settle time.Duration) {
	pf := rootCmd.PersistentFlags()
	interval = appConfig.Poll.ParseInterval()
	settle = appConfig.Poll.ParseSettleDelay()
	if pf.Changed("poll-interval") {
		interval = pollInterval
	}
	if pf.Changed("settle-delay") {
		settle = settleDelay
	}
	return interval, settle
}
