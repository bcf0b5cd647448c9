package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Cowspump/some-diploma-stuff/client"
)

func printUser(w io.Writer, u *client.User) {
	if u == nil {
		fmt.Fprintln(w, "Signed in (user details unknown, run whoami)")
		return
	}
	fmt.Fprintf(w, "Signed in as %s <%s>\n", u.FullName, u.Email)
	fmt.Fprintf(w, "  id:   %d\n", u.ID)
	fmt.Fprintf(w, "  role: %s\n", u.Role)
}

func (a *app) newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "login", func(ctx context.Context, c *client.Client) error {
				res, err := c.Login(ctx, email, password)
				if err != nil {
					return err
				}
				return a.emit(cmd, res.User, func(w io.Writer) { printUser(w, res.User) })
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) newRegisterCmd() *cobra.Command {
	var fullName, email, password, role, birthDate string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.RegisterRequest{
				FullName: fullName,
				Email:    email,
				Password: password,
				Role:     client.Role(role),
			}
			if birthDate != "" {
				req.BirthDate = &birthDate
			}
			return a.run(cmd, "register", func(ctx context.Context, c *client.Client) error {
				res, err := c.Register(ctx, req)
				if err != nil {
					return err
				}
				return a.emit(cmd, res.User, func(w io.Writer) { printUser(w, res.User) })
			})
		},
	}

	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&role, "role", string(client.RoleWorker), "Role: worker, therapist or admin")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "Birth date as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("full-name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "logout", func(ctx context.Context, c *client.Client) error {
				if err := c.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "whoami", func(ctx context.Context, c *client.Client) error {
				if !c.Session().Authenticated() {
					return fmt.Errorf("not signed in: %w", client.ErrNoSession)
				}
				u, err := c.CurrentUser(ctx)
				if err != nil {
					return err
				}
				return a.emit(cmd, u, func(w io.Writer) { printUser(w, u) })
			})
		},
	}
}

func (a *app) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "refresh", func(ctx context.Context, c *client.Client) error {
				res, err := c.Refresh(ctx)
				if err != nil {
					return err
				}
				return a.emit(cmd, res.User, func(w io.Writer) {
					fmt.Fprintln(w, "Session renewed")
				})
			})
		},
	}
}
