package identityctl

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/identity-core/internal/app"
	"github.com/sandeepkv93/identity-core/internal/domain"
)

func newLocalCredentialCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local-credential",
		Short: "Password credentials",
	}
	var id, userID string
	get := &cobra.Command{
		Use:   "get",
		Short: "Look up a local credential by id or owning user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "local-credential get", opts.withApp("local_credential_get", func(ctx context.Context, a *app.App) ([]string, error) {
				var (
					cred *domain.LocalCredential
					err  error
				)
				switch {
				case id != "":
					cred, err = a.Users.FetchLocalCredentialByID(ctx, id)
				case userID != "":
					cred, err = a.Users.FetchLocalCredentialByUserID(ctx, userID)
				default:
					return nil, errors.New("one of --id or --user-id is required")
				}
				if err != nil {
					return nil, err
				}
				if cred == nil {
					return []string{"no local credential " + id}, nil
				}
				return localCredentialDetails(cred), nil
			}))
		},
	}
	get.Flags().StringVar(&id, "id", "", "credential id")
	get.Flags().StringVar(&userID, "user-id", "", "owning user id")
	get.MarkFlagsMutuallyExclusive("id", "user-id")
	cmd.AddCommand(get)
	return cmd
}
