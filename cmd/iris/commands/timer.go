package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/iristrack/core/internal/tui"
)

// NewTimerCommand creates the timer command
func NewTimerCommand() *cobra.Command {
	var (
		studyMinutes int
		breakMinutes int
	)

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Run the study timer",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp()
			if err != nil {
				log.Fatal(err)
			}
			defer a.close()

			timer := a.newTimerService()
			if cmd.Flags().Changed("study") {
				if err := timer.SetStudyMinutes(studyMinutes); err != nil {
					a.logger.Fatalw("Invalid study length", "error", err)
				}
			}
			if cmd.Flags().Changed("break") {
				if err := timer.SetBreakMinutes(breakMinutes); err != nil {
					a.logger.Fatalw("Invalid break length", "error", err)
				}
			}

			if err := tui.Run(timer); err != nil {
				a.logger.Fatalw("Timer exited with error", "error", err)
			}
		},
	}

	cmd.Flags().IntVar(&studyMinutes, "study", 0, "Study phase length in minutes")
	cmd.Flags().IntVar(&breakMinutes, "break", 0, "Break phase length in minutes")
	return cmd
}
