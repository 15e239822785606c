package identityctl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/identity-core/internal/app"
	"github.com/sandeepkv93/identity-core/internal/domain"
	"github.com/sandeepkv93/identity-core/internal/repository"
)

func newUserCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect and manage user records",
	}
	cmd.AddCommand(
		newUserCreateLocalCommand(opts),
		newUserGetCommand(opts),
		newUserListCommand(opts),
		newUserFindByEmailCommand(opts),
		newUserSetRoleCommand(opts),
		newUserLockCommand(opts),
		newUserEvictCommand(opts),
	)
	return cmd
}

func newUserCreateLocalCommand(opts *options) *cobra.Command {
	var email, password, name, imageURL string
	cmd := &cobra.Command{
		Use:   "create-local",
		Short: "Create a user with a password credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user create-local", opts.withApp("user_create_local", func(ctx context.Context, a *app.App) ([]string, error) {
				u, err := a.Users.CreateLocalUser(ctx, email, password, name, imageURL)
				if err != nil {
					return nil, err
				}
				return userDetails(u), nil
			}))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "avatar URL, defaults to the configured image")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUserGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID [ID...]",
		Short: "Read users through the cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user get", opts.withApp("user_get", func(ctx context.Context, a *app.App) ([]string, error) {
				if len(args) == 1 {
					u, err := a.Users.GetUser(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return userDetails(u), nil
				}
				found, err := a.Users.GetUsers(ctx, args...)
				if err != nil {
					return nil, err
				}
				ids := make([]string, 0, len(found))
				for id := range found {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				var details []string
				for _, id := range ids {
					u := found[id]
					details = append(details, fmt.Sprintf("%s %s %s", u.ID, u.Email, u.Role))
				}
				for _, id := range args {
					if _, ok := found[id]; !ok && id != "" {
						details = append(details, "missing: "+id)
					}
				}
				return details, nil
			}))
		},
	}
}

func newUserListCommand(opts *options) *cobra.Command {
	var page, pageSize int
	var role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user list", opts.withApp("user_list", func(ctx context.Context, a *app.App) ([]string, error) {
				res, err := a.Users.ListUsersPage(ctx, repository.PageRequest{Page: page, PageSize: pageSize, Role: domain.Role(strings.ToLower(strings.TrimSpace(role)))})
				if err != nil {
					return nil, err
				}
				details := []string{fmt.Sprintf("page %d/%d, %d users", res.Page, res.TotalPages, res.Total)}
				for _, u := range res.Items {
					details = append(details, fmt.Sprintf("%s %s %s", u.ID, u.Email, u.Role))
				}
				return details, nil
			}))
		},
	}
	cmd.Flags().IntVar(&page, "page", repository.DefaultPage, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", repository.DefaultPageSize, "page size")
	cmd.Flags().StringVar(&role, "role", "", "only list users with this role")
	return cmd
}

func newUserFindByEmailCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "find-by-email EMAIL",
		Short: "Look up a user by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user find-by-email", opts.withApp("user_find_by_email", func(ctx context.Context, a *app.App) ([]string, error) {
				u, err := a.Users.FetchUserByEmail(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if u == nil {
					return []string{"no user with email " + args[0]}, nil
				}
				return userDetails(u), nil
			}))
		},
	}
}

func newUserSetRoleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role ID ROLE",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user set-role", opts.withApp("user_set_role", func(ctx context.Context, a *app.App) ([]string, error) {
				role, err := domain.ParseRole(args[1])
				if err != nil {
					return nil, err
				}
				u, err := a.Users.GetUser(ctx, args[0])
				if err != nil {
					return nil, err
				}
				previous := u.Role
				if err := a.Users.SetRole(ctx, u, role); err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("%s: %s -> %s", u.ID, previous, u.Role)}, nil
			}))
		},
	}
}

func newUserLockCommand(opts *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "lock ID",
		Short: "Lock a user for a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user lock", opts.withApp("user_lock", func(ctx context.Context, a *app.App) ([]string, error) {
				u, err := a.Users.GetUser(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if err := a.Users.LockUser(ctx, u, days); err != nil {
					return nil, err
				}
				return []string{u.ID + " locked until " + formatMillis(u.LockedUntil)}, nil
			}))
		},
	}
	cmd.Flags().IntVar(&days, "days", 1, "lock duration in days")
	return cmd
}

func newUserEvictCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "evict ID",
		Short: "Drop a user's cached copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, "user evict", opts.withApp("user_evict", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Users.InvalidateUser(ctx, args[0]); err != nil {
					return nil, err
				}
				return []string{"evicted " + args[0]}, nil
			}))
		},
	}
}
