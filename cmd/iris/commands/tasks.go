package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iristrack/core/internal/application/services"
	"github.com/iristrack/core/internal/domain/entities"
)

// NewTasksCommand creates the tasks command group
func NewTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage per-subject tasks",
	}

	cmd.AddCommand(newTasksListCommand())
	cmd.AddCommand(newTasksAddCommand())
	cmd.AddCommand(newTasksDoneCommand())
	cmd.AddCommand(newTasksRemoveCommand())
	cmd.AddCommand(newTasksReorderCommand())

	return cmd
}

func newTasksListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <subject>",
		Short: "List a subject's tasks",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			completed, _ := cmd.Flags().GetBool("completed")

			withSubjects(func(ctx context.Context, subjects *services.SubjectService, tasks *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}

				var list []*entities.Assignment
				if completed {
					list, err = tasks.Completed(ctx, subject.ID)
				} else {
					list, err = tasks.Pending(ctx, subject.ID)
				}
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Println("No tasks.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "#\tID\tTITLE\tPRIORITY\tEXAM DATE")
				for i, t := range list {
					date := "-"
					if t.Priority == entities.PriorityExam && !t.ExamDate.IsZero() {
						date = t.ExamDate.Format("2006-01-02")
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, t.ID, t.Title, t.Priority, date)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Bool("completed", false, "Show completed tasks instead of pending ones")
	return cmd
}

func newTasksAddCommand() *cobra.Command {
	var (
		title    string
		priority string
		examDate string
	)

	cmd := &cobra.Command{
		Use:   "add <subject>",
		Short: "Add a task to a subject",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, tasks *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}

				var due *time.Time
				if examDate != "" {
					when, err := time.Parse("2006-01-02", examDate)
					if err != nil {
						return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", examDate)
					}
					due = &when
				}

				task, err := tasks.CreatePlaceholder(ctx, subject.ID, entities.AssignmentPriority(priority))
				if err != nil {
					return err
				}
				if err := tasks.FinishEditing(ctx, task.ID, title, due); err != nil {
					return err
				}
				if title == "" {
					fmt.Println("Empty title, task discarded.")
					return nil
				}
				fmt.Printf("Added task %s to %s.\n", task.ID, subject.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title; empty discards the task")
	cmd.Flags().StringVar(&priority, "priority", string(entities.PriorityNormal), "Task priority: normal or exam")
	cmd.Flags().StringVar(&examDate, "exam-date", "", "Exam date as YYYY-MM-DD, for exam tasks")
	return cmd
}

func newTasksDoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Toggle a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, _ *services.SubjectService, tasks *services.AssignmentService) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid task id %q", args[0])
				}
				if err := tasks.ToggleCompleted(ctx, id); err != nil {
					return err
				}
				fmt.Println("Toggled.")
				return nil
			})
		},
	}
}

func newTasksRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, _ *services.SubjectService, tasks *services.AssignmentService) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid task id %q", args[0])
				}
				if err := tasks.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Println("Deleted.")
				return nil
			})
		},
	}
}

func newTasksReorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <subject> <task-id>...",
		Short: "Reorder a subject's pending tasks",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, tasks *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}

				ids := make([]uuid.UUID, 0, len(args)-1)
				for _, raw := range args[1:] {
					id, err := uuid.Parse(raw)
					if err != nil {
						return fmt.Errorf("invalid task id %q", raw)
					}
					ids = append(ids, id)
				}

				if err := tasks.Reorder(ctx, subject.ID, ids); err != nil {
					return err
				}
				fmt.Println("Reordered.")
				return nil
			})
		},
	}
}
