package commands

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/iristrack/core/internal/domain/entities"
)

// NewSignUpCommand creates the signup command
func NewSignUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a remote account and sign in",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			runAuth(func(ctx context.Context, a *app) (entities.AuthResult, error) {
				return a.session.SignUp(ctx, entities.Credentials{Username: username, Password: password})
			})
		},
	}

	cmd.Flags().String("username", "", "Account username (required)")
	cmd.Flags().String("password", "", "Account password (required)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

// NewSignInCommand creates the signin command
func NewSignInCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with an existing account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			runAuth(func(ctx context.Context, a *app) (entities.AuthResult, error) {
				return a.session.SignIn(ctx, entities.Credentials{Username: username, Password: password})
			})
		},
	}

	cmd.Flags().String("username", "", "Account username (required)")
	cmd.Flags().String("password", "", "Account password (required)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

// NewSignOutCommand creates the signout command
func NewSignOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Drop the local session, keeping remote account and local data",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp()
			if err != nil {
				log.Fatal(err)
			}
			defer a.close()

			if err := a.session.SignOut(); err != nil {
				a.logger.Fatalw("Sign out failed", "error", err)
			}
			fmt.Println("Signed out.")
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp()
			if err != nil {
				log.Fatal(err)
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.RequestTimeout)
			defer cancel()

			result, err := a.session.Authenticate(ctx)
			if err != nil {
				a.logger.Fatalw("Authentication check failed", "error", err)
			}

			if result != entities.AuthSuccess {
				fmt.Println("Not signed in.")
				return
			}

			fmt.Printf("Signed in as user %s\n", a.session.CurrentUserID())
			if exp, err := a.tokens.ExpiresAt(); err == nil {
				fmt.Printf("Token expires %s\n", exp.Format(time.RFC1123))
			}
		},
	}
}

// NewDeleteAccountCommand creates the delete-account command
func NewDeleteAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete the remote account and all local data for it",
		Run: func(cmd *cobra.Command, args []string) {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				log.Fatal("Refusing to delete the account without --yes")
			}

			a, err := newApp()
			if err != nil {
				log.Fatal(err)
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.RequestTimeout)
			defer cancel()

			if _, err := a.session.Authenticate(ctx); err != nil {
				a.logger.Fatalw("Authentication check failed", "error", err)
			}

			result, err := a.session.DeleteAccount(ctx)
			if err != nil {
				a.logger.Fatalw("Account deletion failed", "error", err)
			}

			switch result {
			case entities.AuthSuccess:
				fmt.Println("Account and local data deleted.")
			case entities.AuthUnauthorized:
				fmt.Println("Unauthorized: the account could not be deleted.")
			}
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm account deletion")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Iris version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Iris Core v1.0.0")
		},
	}
}

// runAuth wires the app, runs one auth operation and reports its outcome.
// Unauthorized is an outcome, not an error.
func runAuth(op func(context.Context, *app) (entities.AuthResult, error)) {
	a, err := newApp()
	if err != nil {
		log.Fatal(err)
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.RequestTimeout)
	defer cancel()

	result, err := op(ctx, a)
	if err != nil {
		a.logger.Fatalw("Authentication failed", "error", err)
	}

	switch result {
	case entities.AuthSuccess:
		fmt.Printf("Success. Signed in as user %s\n", a.session.CurrentUserID())
	case entities.AuthUnauthorized:
		fmt.Println("Unauthorized: check your credentials.")
	}
}
