package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/iristrack/core/cmd/iris/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "iris",
		Short: "Iris academic tracker",
		Long:  `Iris tracks subjects, grades and assignments against a remote account, and runs a pomodoro study timer.`,
	}

	rootCmd.AddCommand(commands.NewSignUpCommand())
	rootCmd.AddCommand(commands.NewSignInCommand())
	rootCmd.AddCommand(commands.NewSignOutCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewDeleteAccountCommand())
	rootCmd.AddCommand(commands.NewSubjectsCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewTimerCommand())
	rootCmd.AddCommand(commands.NewPurgeCommand())
	rootCmd.AddCommand(commands.NewDevServerCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
