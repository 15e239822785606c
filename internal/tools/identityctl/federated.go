package identityctl

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/sandeepkv93/identity-core/internal/app"
	"github.com/sandeepkv93/identity-core/internal/domain"
	"github.com/sandeepkv93/identity-core/internal/service"
)

func newFederatedCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "federated",
		Short: "Third-party login credentials",
	}
	cmd.AddCommand(newFederatedResolveCommand(opts), newFederatedGetCommand(opts))
	return cmd
}

func newFederatedResolveCommand(opts *options) *cobra.Command {
	var (
		provider, authID, name, imageURL, token string
		expiresIn                               time.Duration
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Replay a completed provider login, creating the user on first sight",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "federated resolve", opts.withApp("federated_resolve", func(ctx context.Context, a *app.App) ([]string, error) {
				p, err := domain.ParseAuthProvider(provider)
				if err != nil {
					return nil, err
				}
				now := time.Now()
				tok := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
				if expiresIn > 0 {
					tok.Expiry = now.Add(expiresIn)
				}
				assertion, err := service.FederatedAssertionFromToken(authID, name, imageURL, tok, now)
				if err != nil {
					return nil, err
				}
				cred, err := a.Users.ResolveFederatedLogin(ctx, p, assertion)
				if err != nil {
					return nil, err
				}
				return federatedDetails(cred), nil
			}))
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "github, google, weibo or qq")
	cmd.Flags().StringVar(&authID, "auth-id", "", "provider account id")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the account id")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "avatar URL")
	cmd.Flags().StringVar(&token, "token", "", "provider access token")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("auth-id")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newFederatedGetCommand(opts *options) *cobra.Command {
	var provider, authID string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up a federated credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "federated get", opts.withApp("federated_get", func(ctx context.Context, a *app.App) ([]string, error) {
				p, err := domain.ParseAuthProvider(provider)
				if err != nil {
					return nil, err
				}
				cred, err := a.Users.FetchFederatedCredential(ctx, p, authID)
				if err != nil {
					return nil, err
				}
				if cred == nil {
					return []string{"no credential for " + provider + "/" + authID}, nil
				}
				return federatedDetails(cred), nil
			}))
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "auth provider")
	cmd.Flags().StringVar(&authID, "auth-id", "", "provider account id")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("auth-id")
	return cmd
}
