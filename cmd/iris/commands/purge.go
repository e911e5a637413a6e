package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/iristrack/core/internal/application/services"
)

// NewPurgeCommand creates the purge command
func NewPurgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all local subjects and tasks for the current user",
		Run: func(cmd *cobra.Command, args []string) {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				log.Fatal("Refusing to purge local data without --yes")
			}

			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				if err := subjects.PurgeAll(ctx); err != nil {
					return err
				}
				fmt.Println("Purged.")
				return nil
			})
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm purging all local data")
	return cmd
}
