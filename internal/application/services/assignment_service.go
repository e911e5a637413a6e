package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// AssignmentService manages the assignments owned by a subject: placeholder
// creation, the delete-if-left-empty editing rule, completion toggling and
// manual ordering.
type AssignmentService struct {
	assignments ports.AssignmentRepository
	subjects    ports.SubjectRepository
	logger      *logger.Logger
	listeners   []func()
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(assignments ports.AssignmentRepository, subjects ports.SubjectRepository, logger *logger.Logger) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		subjects:    subjects,
		logger:      logger,
	}
}

// RegisterListener adds a callback invoked after each successful mutation.
func (s *AssignmentService) RegisterListener(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *AssignmentService) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// CreatePlaceholder inserts an empty-titled assignment awaiting user input.
// Its sort order lands after every existing assignment of the subject.
func (s *AssignmentService) CreatePlaceholder(ctx context.Context, subjectID uuid.UUID, priority entities.AssignmentPriority) (*entities.Assignment, error) {
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	max, err := s.assignments.MaxSortOrder(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	assignment := entities.NewAssignment(subjectID, priority)
	assignment.SortOrder = max + 1

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.notify()
	return assignment, nil
}

// FinishEditing commits the edited title. An assignment left with an empty
// title is deleted rather than kept as a blank row.
func (s *AssignmentService) FinishEditing(ctx context.Context, id uuid.UUID, title string, examDate *time.Time) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if strings.TrimSpace(title) == "" {
		if err := s.assignments.Delete(ctx, id); err != nil {
			return err
		}
		s.notify()
		return nil
	}

	assignment.Title = strings.TrimSpace(title)
	if examDate != nil {
		assignment.ExamDate = *examDate
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return err
	}

	s.notify()
	return nil
}

// ToggleCompleted flips the completion flag.
func (s *AssignmentService) ToggleCompleted(ctx context.Context, id uuid.UUID) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	assignment.IsCompleted = !assignment.IsCompleted
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return err
	}

	s.notify()
	return nil
}

// Pending returns the subject's open assignments, exam priority first, then
// by manual sort order.
func (s *AssignmentService) Pending(ctx context.Context, subjectID uuid.UUID) ([]*entities.Assignment, error) {
	completed := false
	return s.assignments.ListBySubject(ctx, subjectID, ports.AssignmentFilter{IsCompleted: &completed})
}

// Completed returns the subject's finished assignments.
func (s *AssignmentService) Completed(ctx context.Context, subjectID uuid.UUID) ([]*entities.Assignment, error) {
	completed := true
	return s.assignments.ListBySubject(ctx, subjectID, ports.AssignmentFilter{IsCompleted: &completed})
}

// Reorder renumbers the given assignments densely in the order received.
// Every id must belong to the subject.
func (s *AssignmentService) Reorder(ctx context.Context, subjectID uuid.UUID, orderedIDs []uuid.UUID) error {
	for position, id := range orderedIDs {
		assignment, err := s.assignments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if assignment.SubjectID != subjectID {
			return fmt.Errorf("assignment %s does not belong to subject %s", id, subjectID)
		}

		assignment.SortOrder = position
		if err := s.assignments.Update(ctx, assignment); err != nil {
			return err
		}
	}

	s.notify()
	return nil
}

// Delete removes an assignment outright.
func (s *AssignmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}
	s.notify()
	return nil
}
