package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/ports"
)

// AssignmentRepositoryImpl implements the AssignmentRepository interface.
type AssignmentRepositoryImpl struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sqlx.DB) ports.AssignmentRepository {
	return &AssignmentRepositoryImpl{db: db}
}

type assignmentRow struct {
	ID          string       `db:"id"`
	SubjectID   string       `db:"subject_id"`
	Title       string       `db:"title"`
	Priority    string       `db:"priority"`
	SortOrder   int          `db:"sort_order"`
	ExamDate    sql.NullTime `db:"exam_date"`
	IsCompleted bool         `db:"is_completed"`
	Timestamp   time.Time    `db:"timestamp"`
}

func (r *assignmentRow) toEntity() (*entities.Assignment, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse assignment id: %w", err)
	}
	subjectID, err := uuid.Parse(r.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("parse subject id: %w", err)
	}

	a := &entities.Assignment{
		ID:          id,
		SubjectID:   subjectID,
		Title:       r.Title,
		Priority:    entities.AssignmentPriority(r.Priority),
		SortOrder:   r.SortOrder,
		IsCompleted: r.IsCompleted,
		Timestamp:   r.Timestamp,
	}
	if r.ExamDate.Valid {
		a.ExamDate = r.ExamDate.Time
	}

	return a, nil
}

func assignmentArgs(a *entities.Assignment) map[string]interface{} {
	var examDate interface{}
	if !a.ExamDate.IsZero() {
		examDate = a.ExamDate
	}
	return map[string]interface{}{
		"id":           a.ID.String(),
		"subject_id":   a.SubjectID.String(),
		"title":        a.Title,
		"priority":     string(a.Priority),
		"sort_order":   a.SortOrder,
		"exam_date":    examDate,
		"is_completed": a.IsCompleted,
		"timestamp":    a.Timestamp,
	}
}

func (r *AssignmentRepositoryImpl) Create(ctx context.Context, assignment *entities.Assignment) error {
	query := `
		INSERT INTO assignments (id, subject_id, title, priority, sort_order, exam_date, is_completed, timestamp)
		VALUES (:id, :subject_id, :title, :priority, :sort_order, :exam_date, :is_completed, :timestamp)`

	if _, err := r.db.NamedExecContext(ctx, query, assignmentArgs(assignment)); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	return nil
}

func (r *AssignmentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	var row assignmentRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM assignments WHERE id = ?`, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment by id: %w", err)
	}

	return row.toEntity()
}

func (r *AssignmentRepositoryImpl) Update(ctx context.Context, assignment *entities.Assignment) error {
	query := `
		UPDATE assignments
		SET title = :title, priority = :priority, sort_order = :sort_order,
			exam_date = :exam_date, is_completed = :is_completed
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, assignmentArgs(assignment))
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrAssignmentNotFound
	}

	return nil
}

func (r *AssignmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrAssignmentNotFound
	}

	return nil
}

// ListBySubject returns the subject's assignments, exam priority first, then
// by manual sort order.
func (r *AssignmentRepositoryImpl) ListBySubject(ctx context.Context, subjectID uuid.UUID, filter ports.AssignmentFilter) ([]*entities.Assignment, error) {
	query := `SELECT * FROM assignments WHERE subject_id = ?`
	args := []interface{}{subjectID.String()}

	if filter.IsCompleted != nil {
		query += ` AND is_completed = ?`
		args = append(args, *filter.IsCompleted)
	}
	if filter.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, string(*filter.Priority))
	}
	query += ` ORDER BY CASE priority WHEN 'exam' THEN 0 ELSE 1 END, sort_order ASC`

	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	assignments := make([]*entities.Assignment, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// MaxSortOrder returns the highest sort order among the subject's
// assignments, or -1 when none exist.
func (r *AssignmentRepositoryImpl) MaxSortOrder(ctx context.Context, subjectID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := r.db.GetContext(ctx, &max,
		`SELECT MAX(sort_order) FROM assignments WHERE subject_id = ?`, subjectID.String())
	if err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}

	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *AssignmentRepositoryImpl) DeleteBySubject(ctx context.Context, subjectID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE subject_id = ?`, subjectID.String()); err != nil {
		return fmt.Errorf("delete subject assignments: %w", err)
	}
	return nil
}
