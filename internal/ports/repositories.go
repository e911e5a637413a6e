package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/iristrack/core/internal/domain/entities"
)

// SubjectRepository defines the interface for subject data operations against
// the per-user store.
type SubjectRepository interface {
	Create(ctx context.Context, subject *entities.Subject) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Subject, error)
	GetByName(ctx context.Context, name string) (*entities.Subject, error)
	Update(ctx context.Context, subject *entities.Subject) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter SubjectFilter) ([]*entities.Subject, error)
	PurgeAll(ctx context.Context) error
}

// AssignmentRepository defines the interface for assignment data operations.
// Assignments live and die with their owning subject.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entities.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error)
	Update(ctx context.Context, assignment *entities.Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID, filter AssignmentFilter) ([]*entities.Assignment, error)
	MaxSortOrder(ctx context.Context, subjectID uuid.UUID) (int, error)
	DeleteBySubject(ctx context.Context, subjectID uuid.UUID) error
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	IsFinished *bool
	Search     *string
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	IsCompleted *bool
	Priority    *entities.AssignmentPriority
}
