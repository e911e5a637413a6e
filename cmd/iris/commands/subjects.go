package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iristrack/core/internal/application/services"
	"github.com/iristrack/core/internal/domain/entities"
)

// NewSubjectsCommand creates the subjects command group
func NewSubjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Manage tracked subjects",
	}

	cmd.AddCommand(newSubjectsCatalogCommand())
	cmd.AddCommand(newSubjectsTakeCommand())
	cmd.AddCommand(newSubjectsListCommand())
	cmd.AddCommand(newSubjectsPassCommand())
	cmd.AddCommand(newSubjectsDeleteCommand())
	cmd.AddCommand(newSubjectsGradeCommand())
	cmd.AddCommand(newSubjectsFinalCommand())
	cmd.AddCommand(newSubjectsExamDateCommand())

	return cmd
}

func newSubjectsCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List subjects available in the remote catalog",
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				entries, err := subjects.Catalog(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tYEAR\tEXAMS")
				for _, e := range entries {
					exams := 2
					if e.HasThreeExams {
						exams = 3
					}
					fmt.Fprintf(w, "%s\t%s\t%d\n", e.Name, e.Year, exams)
				}
				return w.Flush()
			})
		},
	}
}

func newSubjectsTakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "take <name>",
		Short: "Start tracking a catalog subject",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				entries, err := subjects.Catalog(ctx)
				if err != nil {
					return err
				}

				for _, e := range entries {
					if e.Name == args[0] {
						subject, err := subjects.TakeSubject(ctx, e)
						if err != nil {
							return err
						}
						fmt.Printf("Now taking %s (%s)\n", subject.Name, subject.ID)
						return nil
					}
				}
				return fmt.Errorf("subject %q is not in the catalog", args[0])
			})
		},
	}
}

func newSubjectsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked subjects",
		Run: func(cmd *cobra.Command, args []string) {
			passed, _ := cmd.Flags().GetBool("passed")

			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				var (
					list []*entities.Subject
					err  error
				)
				if passed {
					list, err = subjects.ListPassed(ctx)
				} else {
					list, err = subjects.ListCurrentlyTaking(ctx)
				}
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Println("No subjects.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tYEAR\tGRADES\tAVERAGE")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%s\t%v\t%.2f\n", s.Name, s.Year, append(append([]int{}, s.ExamGrades...), s.FinalGrades...), s.GradeAverage())
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Bool("passed", false, "Show passed subjects instead of current ones")
	return cmd
}

func newSubjectsPassCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pass <name>",
		Short: "Mark a subject as passed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if err := subjects.MarkPassed(ctx, subject.ID); err != nil {
					return err
				}
				fmt.Printf("Marked %s as passed.\n", subject.Name)
				return nil
			})
		},
	}
}

func newSubjectsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Stop tracking a subject and drop its tasks",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if err := subjects.Delete(ctx, subject.ID); err != nil {
					return err
				}
				fmt.Printf("Deleted %s.\n", subject.Name)
				return nil
			})
		},
	}
}

func newSubjectsGradeCommand() *cobra.Command {
	var grade int

	cmd := &cobra.Command{
		Use:   "grade <name>",
		Short: "Record a partial exam grade",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if err := subjects.AddExamGrade(ctx, subject.ID, grade); err != nil {
					return err
				}
				fmt.Printf("Recorded grade %d for %s.\n", grade, subject.Name)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&grade, "grade", 0, "Grade to record (required)")
	cmd.MarkFlagRequired("grade")
	return cmd
}

func newSubjectsFinalCommand() *cobra.Command {
	var grade int

	cmd := &cobra.Command{
		Use:   "final <name>",
		Short: "Record the final exam grade",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if err := subjects.SetFinalGrade(ctx, subject.ID, grade); err != nil {
					return err
				}
				fmt.Printf("Recorded final grade %d for %s.\n", grade, subject.Name)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&grade, "grade", 0, "Grade to record (required)")
	cmd.MarkFlagRequired("grade")
	return cmd
}

func newSubjectsExamDateCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "examdate <name>",
		Short: "Record a final exam date",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withSubjects(func(ctx context.Context, subjects *services.SubjectService, _ *services.AssignmentService) error {
				when, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
				subject, err := subjects.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				if err := subjects.AddFinalExamDate(ctx, subject.ID, when); err != nil {
					return err
				}
				fmt.Printf("Recorded exam date %s for %s.\n", date, subject.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Exam date as YYYY-MM-DD (required)")
	cmd.MarkFlagRequired("date")
	return cmd
}

// withSubjects wires the app, authenticates and hands per-user services to fn.
func withSubjects(fn func(context.Context, *services.SubjectService, *services.AssignmentService) error) {
	a, err := newApp()
	if err != nil {
		log.Fatal(err)
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.RequestTimeout)
	defer cancel()

	subjects, assignments, err := a.requireUser(ctx)
	if err != nil {
		a.logger.Fatalw("Command failed", "error", err)
	}

	if err := fn(ctx, subjects, assignments); err != nil {
		a.logger.Fatalw("Command failed", "error", err)
	}
}
