package identityctl

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/identity-core/internal/app"
	"github.com/sandeepkv93/identity-core/internal/di"
	"github.com/sandeepkv93/identity-core/internal/observability"
	"github.com/sandeepkv93/identity-core/internal/tools/common"
	"github.com/sandeepkv93/identity-core/internal/tools/ui"
)

const toolName = "identityctl"

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           toolName,
		Short:         "Operate the identity store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newMigrateCommand(opts),
		newUserCommand(opts),
		newFederatedCommand(opts),
		newLocalCredentialCommand(opts),
		newStatusCommand(opts),
	)
	return cmd
}

// execute runs fn interactively or, with --ci, directly and prints a JSON result.
func (o *options) execute(cmd *cobra.Command, title string, fn ui.Action) error {
	if !o.ci {
		_, err := ui.Run(title, o.timeout, fn)
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()
	details, err := fn(ctx)
	common.PrintCIResult(cmd.OutOrStdout(), err == nil, title, details, err)
	return err
}

// withApp builds the full runtime for fn and tears it down afterwards. Command metrics are
// recorded before shutdown so they are flushed with the rest of the telemetry.
func (o *options) withApp(command string, fn func(context.Context, *app.App) ([]string, error)) ui.Action {
	return func(ctx context.Context) ([]string, error) {
		if err := common.LoadEnvFile(o.envFile); err != nil {
			return nil, err
		}
		a, err := di.InitializeApp()
		if err != nil {
			return nil, err
		}
		start := time.Now()
		details, err := fn(ctx, a)
		recordCommand(ctx, command, err, time.Since(start))

		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if closeErr := a.Close(closeCtx); closeErr != nil {
			a.Logger.Warn("runtime shutdown failed", "error", closeErr)
		}
		return details, err
	}
}

func recordCommand(ctx context.Context, command string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
	}
	observability.RecordToolCommandRun(ctx, toolName, command, outcome)
	observability.RecordToolCommandDuration(ctx, toolName, command, outcome, elapsed)
}
