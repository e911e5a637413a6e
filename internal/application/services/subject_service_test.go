package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

type memSubjectRepo struct {
	rows map[uuid.UUID]*entities.Subject
}

func newMemSubjectRepo() *memSubjectRepo {
	return &memSubjectRepo{rows: make(map[uuid.UUID]*entities.Subject)}
}

func (r *memSubjectRepo) Create(ctx context.Context, subject *entities.Subject) error {
	cp := *subject
	r.rows[subject.ID] = &cp
	return nil
}

func (r *memSubjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Subject, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, entities.ErrSubjectNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memSubjectRepo) GetByName(ctx context.Context, name string) (*entities.Subject, error) {
	for _, row := range r.rows {
		if row.Name == name {
			cp := *row
			return &cp, nil
		}
	}
	return nil, entities.ErrSubjectNotFound
}

func (r *memSubjectRepo) Update(ctx context.Context, subject *entities.Subject) error {
	if _, ok := r.rows[subject.ID]; !ok {
		return entities.ErrSubjectNotFound
	}
	cp := *subject
	r.rows[subject.ID] = &cp
	return nil
}

func (r *memSubjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return entities.ErrSubjectNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memSubjectRepo) List(ctx context.Context, filter ports.SubjectFilter) ([]*entities.Subject, error) {
	var out []*entities.Subject
	for _, row := range r.rows {
		if filter.IsFinished != nil && row.IsFinished != *filter.IsFinished {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memSubjectRepo) PurgeAll(ctx context.Context) error {
	r.rows = make(map[uuid.UUID]*entities.Subject)
	return nil
}

type memAssignmentRepo struct {
	rows map[uuid.UUID]*entities.Assignment
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{rows: make(map[uuid.UUID]*entities.Assignment)}
}

func (r *memAssignmentRepo) Create(ctx context.Context, assignment *entities.Assignment) error {
	cp := *assignment
	r.rows[assignment.ID] = &cp
	return nil
}

func (r *memAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, entities.ErrAssignmentNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memAssignmentRepo) Update(ctx context.Context, assignment *entities.Assignment) error {
	if _, ok := r.rows[assignment.ID]; !ok {
		return entities.ErrAssignmentNotFound
	}
	cp := *assignment
	r.rows[assignment.ID] = &cp
	return nil
}

func (r *memAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return entities.ErrAssignmentNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memAssignmentRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID, filter ports.AssignmentFilter) ([]*entities.Assignment, error) {
	var out []*entities.Assignment
	for _, row := range r.rows {
		if row.SubjectID != subjectID {
			continue
		}
		if filter.IsCompleted != nil && row.IsCompleted != *filter.IsCompleted {
			continue
		}
		if filter.Priority != nil && row.Priority != *filter.Priority {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority == entities.PriorityExam
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (r *memAssignmentRepo) MaxSortOrder(ctx context.Context, subjectID uuid.UUID) (int, error) {
	max := -1
	for _, row := range r.rows {
		if row.SubjectID == subjectID && row.SortOrder > max {
			max = row.SortOrder
		}
	}
	return max, nil
}

func (r *memAssignmentRepo) DeleteBySubject(ctx context.Context, subjectID uuid.UUID) error {
	for id, row := range r.rows {
		if row.SubjectID == subjectID {
			delete(r.rows, id)
		}
	}
	return nil
}

type staticCatalog struct {
	entries []ports.SubjectDTO
}

func (c *staticCatalog) FetchSubjects(ctx context.Context) ([]ports.SubjectDTO, error) {
	return c.entries, nil
}

func newSubjectFixture() (*SubjectService, *memSubjectRepo, *memAssignmentRepo) {
	subjects := newMemSubjectRepo()
	assignments := newMemAssignmentRepo()
	catalog := &staticCatalog{entries: []ports.SubjectDTO{
		{Name: "Calculus", Year: "first", ShortName: "calc", HasThreeExams: true},
		{Name: "Philosophy", Year: "second", ShortName: "phil"},
	}}
	svc := NewSubjectService(subjects, assignments, catalog, logger.NewNop())
	return svc, subjects, assignments
}

func TestTakeSubjectStripsRemoteHistory(t *testing.T) {
	svc, _, _ := newSubjectFixture()

	dto := ports.SubjectDTO{
		Name:          "Calculus",
		Year:          "first",
		HasThreeExams: true,
		ExamGrades:    []int{9, 8},
		FinalGrades:   []int{7},
		IsFinished:    true,
	}

	subject, err := svc.TakeSubject(context.Background(), dto)
	require.NoError(t, err)
	assert.Equal(t, "Calculus", subject.Name)
	assert.True(t, subject.HasThreeExams)
	assert.Empty(t, subject.ExamGrades)
	assert.Empty(t, subject.FinalGrades)
	assert.False(t, subject.IsFinished)
	assert.NotEqual(t, uuid.Nil, subject.ID)
}

func TestTakeSubjectTwiceIsANoOp(t *testing.T) {
	svc, repo, _ := newSubjectFixture()

	dto := ports.SubjectDTO{Name: "Calculus", Year: "first"}
	first, err := svc.TakeSubject(context.Background(), dto)
	require.NoError(t, err)

	second, err := svc.TakeSubject(context.Background(), dto)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rows, 1)
}

func TestTakeSubjectMatchesPassedCopySeparately(t *testing.T) {
	svc, repo, _ := newSubjectFixture()

	dto := ports.SubjectDTO{Name: "Calculus", Year: "first"}
	first, err := svc.TakeSubject(context.Background(), dto)
	require.NoError(t, err)
	require.NoError(t, svc.MarkPassed(context.Background(), first.ID))

	// Retaking a passed course tracks a fresh copy.
	second, err := svc.TakeSubject(context.Background(), dto)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.rows, 2)
}

func TestMarkPassedMovesBetweenCollections(t *testing.T) {
	svc, _, _ := newSubjectFixture()

	subject, err := svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Calculus", Year: "first"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPassed(context.Background(), subject.ID))

	current, err := svc.ListCurrentlyTaking(context.Background())
	require.NoError(t, err)
	assert.Empty(t, current)

	passed, err := svc.ListPassed(context.Background())
	require.NoError(t, err)
	require.Len(t, passed, 1)
	assert.Equal(t, "Calculus", passed[0].Name)
}

func TestDeleteSubjectDropsItsAssignments(t *testing.T) {
	svc, subjectRepo, assignmentRepo := newSubjectFixture()

	subject, err := svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Calculus", Year: "first"})
	require.NoError(t, err)

	task := entities.NewAssignment(subject.ID, entities.PriorityNormal)
	require.NoError(t, assignmentRepo.Create(context.Background(), task))

	require.NoError(t, svc.Delete(context.Background(), subject.ID))
	assert.Empty(t, subjectRepo.rows)
	assert.Empty(t, assignmentRepo.rows)
}

func TestGradeRecordingRespectsExamCount(t *testing.T) {
	svc, _, _ := newSubjectFixture()

	subject, err := svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Philosophy", Year: "second"})
	require.NoError(t, err)

	require.NoError(t, svc.AddExamGrade(context.Background(), subject.ID, 8))
	require.NoError(t, svc.AddExamGrade(context.Background(), subject.ID, 9))
	// Two-exam schema: a third partial grade is rejected.
	assert.Error(t, svc.AddExamGrade(context.Background(), subject.ID, 10))

	stored, err := svc.GetByName(context.Background(), "Philosophy")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, stored.ExamGrades)
}

func TestFinalGradeAndExamDate(t *testing.T) {
	svc, _, _ := newSubjectFixture()

	subject, err := svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Calculus", Year: "first"})
	require.NoError(t, err)

	when := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SetFinalGrade(context.Background(), subject.ID, 9))
	require.NoError(t, svc.AddFinalExamDate(context.Background(), subject.ID, when))

	stored, err := svc.GetByName(context.Background(), "Calculus")
	require.NoError(t, err)
	assert.Equal(t, []int{9}, stored.FinalGrades)
	require.Len(t, stored.FinalExamDates, 1)
	assert.True(t, stored.FinalExamDates[0].Equal(when))
}

func TestPurgeAllEmptiesTheStore(t *testing.T) {
	svc, repo, _ := newSubjectFixture()

	_, err := svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Calculus", Year: "first"})
	require.NoError(t, err)
	_, err = svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Philosophy", Year: "second"})
	require.NoError(t, err)

	require.NoError(t, svc.PurgeAll(context.Background()))
	assert.Empty(t, repo.rows)
}

func TestSubjectListenersFireOnMutations(t *testing.T) {
	svc, _, _ := newSubjectFixture()

	fired := 0
	svc.RegisterListener(func() { fired++ })

	subject, err := svc.TakeSubject(context.Background(), ports.SubjectDTO{Name: "Calculus", Year: "first"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkPassed(context.Background(), subject.ID))

	assert.Equal(t, 2, fired)
}
