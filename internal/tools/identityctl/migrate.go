package identityctl

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/identity-core/internal/di"
	"github.com/sandeepkv93/identity-core/internal/tools/common"
)

func newMigrateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Identity schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Create missing identity tables and indexes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.execute(cmd, "migrate up", opts.withMigrations("migrate_up", func(ctx context.Context, m *di.MigrationRunner) ([]string, error) {
					created, err := m.Up(ctx)
					if err != nil {
						return nil, err
					}
					if len(created) == 0 {
						return []string{"schema up to date"}, nil
					}
					return prefixed("created table: ", created), nil
				}))
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report which identity tables are missing",
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.execute(cmd, "migrate status", opts.withMigrations("migrate_status", func(ctx context.Context, m *di.MigrationRunner) ([]string, error) {
					if err := m.Ping(ctx); err != nil {
						return nil, err
					}
					pending, err := m.Pending(ctx)
					if err != nil {
						return nil, err
					}
					details := []string{"database reachable"}
					if len(pending) == 0 {
						return append(details, "migrations: applied"), nil
					}
					return append(details, prefixed("pending table: ", pending)...), nil
				}))
			},
		},
		&cobra.Command{
			Use:   "plan",
			Short: "Show what migrate up would do without changing anything",
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.execute(cmd, "migrate plan", opts.withMigrations("migrate_plan", func(ctx context.Context, m *di.MigrationRunner) ([]string, error) {
					if err := m.Ping(ctx); err != nil {
						return nil, err
					}
					pending, err := m.Pending(ctx)
					if err != nil {
						return nil, err
					}
					details := []string{"would auto-migrate users, local_credentials, federated_credentials"}
					details = append(details, prefixed("would create table: ", pending)...)
					return append(details, "no mutation executed in plan mode"), nil
				}))
			},
		},
	)
	return cmd
}

func (o *options) withMigrations(command string, fn func(context.Context, *di.MigrationRunner) ([]string, error)) func(context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		if err := common.LoadEnvFile(o.envFile); err != nil {
			return nil, err
		}
		m, err := di.InitializeMigrationRunner()
		if err != nil {
			return nil, err
		}
		defer func() { _ = m.Close() }()
		start := time.Now()
		details, err := fn(ctx, m)
		recordCommand(ctx, command, err, time.Since(start))
		return details, err
	}
}

func prefixed(prefix string, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, prefix+v)
	}
	return out
}
