package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// SubjectService tracks the currently-taking and passed subject collections
// for one authenticated user. Instances are built against the bound per-user
// store after authentication.
type SubjectService struct {
	subjects    ports.SubjectRepository
	assignments ports.AssignmentRepository
	catalog     ports.CatalogClient
	logger      *logger.Logger
	listeners   []func()
}

// NewSubjectService creates a new subject service
func NewSubjectService(subjects ports.SubjectRepository, assignments ports.AssignmentRepository, catalog ports.CatalogClient, logger *logger.Logger) *SubjectService {
	return &SubjectService{
		subjects:    subjects,
		assignments: assignments,
		catalog:     catalog,
		logger:      logger,
	}
}

// RegisterListener adds a callback invoked after each successful mutation.
func (s *SubjectService) RegisterListener(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *SubjectService) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Catalog fetches the remote subjects catalog.
func (s *SubjectService) Catalog(ctx context.Context) ([]ports.SubjectDTO, error) {
	return s.catalog.FetchSubjects(ctx)
}

// TakeSubject copies a catalog entry into the local store, stripped of
// remote-only grade history. Taking a course already in the currently-taking
// collection is a no-op returning the tracked subject.
func (s *SubjectService) TakeSubject(ctx context.Context, dto ports.SubjectDTO) (*entities.Subject, error) {
	subject := dto.ToSubject()

	current, err := s.ListCurrentlyTaking(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range current {
		if existing.SameCourse(subject) {
			return existing, nil
		}
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}

	s.logger.Infow("Subject taken", "name", subject.Name, "id", subject.ID)
	s.notify()
	return subject, nil
}

// ListCurrentlyTaking returns the unfinished subjects.
func (s *SubjectService) ListCurrentlyTaking(ctx context.Context) ([]*entities.Subject, error) {
	finished := false
	return s.subjects.List(ctx, ports.SubjectFilter{IsFinished: &finished})
}

// ListPassed returns the finished subjects.
func (s *SubjectService) ListPassed(ctx context.Context) ([]*entities.Subject, error) {
	finished := true
	return s.subjects.List(ctx, ports.SubjectFilter{IsFinished: &finished})
}

// GetByName resolves a tracked subject by course name.
func (s *SubjectService) GetByName(ctx context.Context, name string) (*entities.Subject, error) {
	return s.subjects.GetByName(ctx, name)
}

// MarkPassed moves a subject from the currently-taking collection into the
// passed one.
func (s *SubjectService) MarkPassed(ctx context.Context, id uuid.UUID) error {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	subject.MarkFinished()
	if err := s.subjects.Update(ctx, subject); err != nil {
		return err
	}

	s.logger.Infow("Subject passed", "name", subject.Name)
	s.notify()
	return nil
}

// Delete removes a subject and, with it, its assignments.
func (s *SubjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.assignments.DeleteBySubject(ctx, id); err != nil {
		return err
	}
	if err := s.subjects.Delete(ctx, id); err != nil {
		return err
	}

	s.notify()
	return nil
}

// AddExamGrade records a partial exam grade.
func (s *SubjectService) AddExamGrade(ctx context.Context, id uuid.UUID, grade int) error {
	return s.mutate(ctx, id, func(subject *entities.Subject) error {
		return subject.AddExamGrade(grade)
	})
}

// SetFinalGrade records the final exam grade.
func (s *SubjectService) SetFinalGrade(ctx context.Context, id uuid.UUID, grade int) error {
	return s.mutate(ctx, id, func(subject *entities.Subject) error {
		return subject.SetFinalGrade(grade)
	})
}

// AddFinalExamDate schedules a final exam date.
func (s *SubjectService) AddFinalExamDate(ctx context.Context, id uuid.UUID, date time.Time) error {
	return s.mutate(ctx, id, func(subject *entities.Subject) error {
		subject.AddFinalExamDate(date)
		return nil
	})
}

func (s *SubjectService) mutate(ctx context.Context, id uuid.UUID, fn func(*entities.Subject) error) error {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(subject); err != nil {
		return err
	}

	if err := s.subjects.Update(ctx, subject); err != nil {
		return err
	}

	s.notify()
	return nil
}

// PurgeAll wipes every subject and assignment from the bound store. A
// development affordance.
func (s *SubjectService) PurgeAll(ctx context.Context) error {
	if err := s.subjects.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge store: %w", err)
	}

	s.logger.Warnw("All local data purged")
	s.notify()
	return nil
}
