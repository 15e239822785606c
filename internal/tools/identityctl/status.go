package identityctl

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/identity-core/internal/app"
)

var errNotReady = errors.New("identity dependencies not ready")

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check store and cache connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "status", opts.withApp("status", func(ctx context.Context, a *app.App) ([]string, error) {
				ready, results := a.Readiness.Ready(ctx)
				details := []string{"cache backend: " + a.Config.UserCacheBackend}
				for _, r := range results {
					line := fmt.Sprintf("%s: ok (%dms)", r.Name, r.LatencyMS)
					if !r.Healthy {
						line = fmt.Sprintf("%s: %s", r.Name, r.Error)
					}
					details = append(details, line)
				}
				if !ready {
					return details, errNotReady
				}
				return details, nil
			}))
		},
	}
}
