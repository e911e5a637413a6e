package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/logger"
)

func newAssignmentFixture(t *testing.T) (*AssignmentService, *memAssignmentRepo, uuid.UUID) {
	t.Helper()

	subjects := newMemSubjectRepo()
	assignments := newMemAssignmentRepo()

	subject := entities.NewSubject("Calculus", "first", "calc", false)
	require.NoError(t, subjects.Create(context.Background(), subject))

	return NewAssignmentService(assignments, subjects, logger.NewNop()), assignments, subject.ID
}

func TestCreatePlaceholderStartsEmptyAndLast(t *testing.T) {
	svc, _, subjectID := newAssignmentFixture(t)

	first, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityNormal)
	require.NoError(t, err)
	assert.True(t, first.IsPlaceholder())
	assert.Equal(t, 0, first.SortOrder)

	second, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityExam)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)
}

func TestCreatePlaceholderRejectsUnknownSubject(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	_, err := svc.CreatePlaceholder(context.Background(), uuid.New(), entities.PriorityNormal)
	assert.ErrorIs(t, err, entities.ErrSubjectNotFound)
}

func TestCreatePlaceholderRejectsInvalidPriority(t *testing.T) {
	svc, _, subjectID := newAssignmentFixture(t)

	_, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.AssignmentPriority("urgent"))
	assert.Error(t, err)
}

func TestFinishEditingCommitsTitleAndDate(t *testing.T) {
	svc, repo, subjectID := newAssignmentFixture(t)

	task, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityExam)
	require.NoError(t, err)

	due := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.FinishEditing(context.Background(), task.ID, "  Midterm  ", &due))

	stored := repo.rows[task.ID]
	assert.Equal(t, "Midterm", stored.Title)
	assert.True(t, stored.ExamDate.Equal(due))
}

func TestFinishEditingWithEmptyTitleDeletes(t *testing.T) {
	svc, repo, subjectID := newAssignmentFixture(t)

	task, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityNormal)
	require.NoError(t, err)

	require.NoError(t, svc.FinishEditing(context.Background(), task.ID, "   ", nil))
	assert.Empty(t, repo.rows)
}

func TestToggleCompletedMovesBetweenLists(t *testing.T) {
	svc, _, subjectID := newAssignmentFixture(t)

	task, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, svc.FinishEditing(context.Background(), task.ID, "Homework 1", nil))

	require.NoError(t, svc.ToggleCompleted(context.Background(), task.ID))

	pending, err := svc.Pending(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	completed, err := svc.Completed(context.Background(), subjectID)
	require.NoError(t, err)
	require.Len(t, completed, 1)

	require.NoError(t, svc.ToggleCompleted(context.Background(), task.ID))
	pending, err = svc.Pending(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestPendingOrdersExamsFirst(t *testing.T) {
	svc, _, subjectID := newAssignmentFixture(t)

	chore, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, svc.FinishEditing(context.Background(), chore.ID, "Reading", nil))

	exam, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityExam)
	require.NoError(t, err)
	require.NoError(t, svc.FinishEditing(context.Background(), exam.ID, "Final", nil))

	pending, err := svc.Pending(context.Background(), subjectID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "Final", pending[0].Title)
	assert.Equal(t, "Reading", pending[1].Title)
}

func TestReorderRenumbersDensely(t *testing.T) {
	svc, repo, subjectID := newAssignmentFixture(t)

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		task, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityNormal)
		require.NoError(t, err)
		require.NoError(t, svc.FinishEditing(context.Background(), task.ID, title, nil))
		ids = append(ids, task.ID)
	}

	require.NoError(t, svc.Reorder(context.Background(), subjectID, []uuid.UUID{ids[2], ids[0], ids[1]}))

	assert.Equal(t, 0, repo.rows[ids[2]].SortOrder)
	assert.Equal(t, 1, repo.rows[ids[0]].SortOrder)
	assert.Equal(t, 2, repo.rows[ids[1]].SortOrder)
}

func TestReorderRejectsForeignAssignment(t *testing.T) {
	svc, repo, subjectID := newAssignmentFixture(t)

	stranger := entities.NewAssignment(uuid.New(), entities.PriorityNormal)
	require.NoError(t, repo.Create(context.Background(), stranger))

	err := svc.Reorder(context.Background(), subjectID, []uuid.UUID{stranger.ID})
	assert.Error(t, err)
}

func TestDeleteAssignment(t *testing.T) {
	svc, repo, subjectID := newAssignmentFixture(t)

	task, err := svc.CreatePlaceholder(context.Background(), subjectID, entities.PriorityNormal)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), task.ID))
	assert.Empty(t, repo.rows)

	assert.ErrorIs(t, svc.Delete(context.Background(), task.ID), entities.ErrAssignmentNotFound)
}
