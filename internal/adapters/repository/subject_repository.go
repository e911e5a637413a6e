package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/ports"
)

const dateLayout = "2006-01-02"

// SubjectRepositoryImpl implements the SubjectRepository interface over one
// user's sqlite store.
type SubjectRepositoryImpl struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *sqlx.DB) ports.SubjectRepository {
	return &SubjectRepositoryImpl{db: db}
}

// subjectRow is the storage shape; grade and date lists are JSON columns.
type subjectRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Year           string    `db:"year"`
	ShortName      string    `db:"short_name"`
	HasThreeExams  bool      `db:"has_three_exams"`
	IsFinished     bool      `db:"is_finished"`
	ExamGrades     string    `db:"exam_grades"`
	FinalGrades    string    `db:"final_grades"`
	FinalExamDates string    `db:"final_exam_dates"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func toRow(s *entities.Subject) (*subjectRow, error) {
	examGrades, err := json.Marshal(orEmptyInts(s.ExamGrades))
	if err != nil {
		return nil, fmt.Errorf("encode exam grades: %w", err)
	}
	finalGrades, err := json.Marshal(orEmptyInts(s.FinalGrades))
	if err != nil {
		return nil, fmt.Errorf("encode final grades: %w", err)
	}

	dates := make([]string, 0, len(s.FinalExamDates))
	for _, d := range s.FinalExamDates {
		dates = append(dates, d.Format(dateLayout))
	}
	finalDates, err := json.Marshal(dates)
	if err != nil {
		return nil, fmt.Errorf("encode final exam dates: %w", err)
	}

	return &subjectRow{
		ID:             s.ID.String(),
		Name:           s.Name,
		Year:           s.Year,
		ShortName:      s.ShortName,
		HasThreeExams:  s.HasThreeExams,
		IsFinished:     s.IsFinished,
		ExamGrades:     string(examGrades),
		FinalGrades:    string(finalGrades),
		FinalExamDates: string(finalDates),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}

func (r *subjectRow) toEntity() (*entities.Subject, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse subject id: %w", err)
	}

	var examGrades, finalGrades []int
	if err := json.Unmarshal([]byte(r.ExamGrades), &examGrades); err != nil {
		return nil, fmt.Errorf("decode exam grades: %w", err)
	}
	if err := json.Unmarshal([]byte(r.FinalGrades), &finalGrades); err != nil {
		return nil, fmt.Errorf("decode final grades: %w", err)
	}

	var rawDates []string
	if err := json.Unmarshal([]byte(r.FinalExamDates), &rawDates); err != nil {
		return nil, fmt.Errorf("decode final exam dates: %w", err)
	}
	dates := make([]time.Time, 0, len(rawDates))
	for _, raw := range rawDates {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse final exam date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}

	return &entities.Subject{
		ID:             id,
		Name:           r.Name,
		Year:           r.Year,
		ShortName:      r.ShortName,
		HasThreeExams:  r.HasThreeExams,
		IsFinished:     r.IsFinished,
		ExamGrades:     examGrades,
		FinalGrades:    finalGrades,
		FinalExamDates: dates,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

func orEmptyInts(in []int) []int {
	if in == nil {
		return []int{}
	}
	return in
}

func (r *SubjectRepositoryImpl) Create(ctx context.Context, subject *entities.Subject) error {
	row, err := toRow(subject)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subjects (id, name, year, short_name, has_three_exams, is_finished,
			exam_grades, final_grades, final_exam_dates, created_at, updated_at)
		VALUES (:id, :name, :year, :short_name, :has_three_exams, :is_finished,
			:exam_grades, :final_grades, :final_exam_dates, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}

	return nil
}

func (r *SubjectRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Subject, error) {
	query := `SELECT * FROM subjects WHERE id = ?`

	var row subjectRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject by id: %w", err)
	}

	return row.toEntity()
}

// GetByName returns the most recently tracked subject with the given name.
// Names identify a course but retakes may share one.
func (r *SubjectRepositoryImpl) GetByName(ctx context.Context, name string) (*entities.Subject, error) {
	query := `SELECT * FROM subjects WHERE name = ? ORDER BY created_at DESC LIMIT 1`

	var row subjectRow
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject by name: %w", err)
	}

	return row.toEntity()
}

func (r *SubjectRepositoryImpl) Update(ctx context.Context, subject *entities.Subject) error {
	row, err := toRow(subject)
	if err != nil {
		return err
	}

	query := `
		UPDATE subjects
		SET name = :name, year = :year, short_name = :short_name,
			has_three_exams = :has_three_exams, is_finished = :is_finished,
			exam_grades = :exam_grades, final_grades = :final_grades,
			final_exam_dates = :final_exam_dates, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrSubjectNotFound
	}

	return nil
}

func (r *SubjectRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrSubjectNotFound
	}

	return nil
}

func (r *SubjectRepositoryImpl) List(ctx context.Context, filter ports.SubjectFilter) ([]*entities.Subject, error) {
	query := `SELECT * FROM subjects WHERE 1=1`
	args := []interface{}{}

	if filter.IsFinished != nil {
		query += ` AND is_finished = ?`
		args = append(args, *filter.IsFinished)
	}
	if filter.Search != nil {
		query += ` AND (name LIKE ? OR short_name LIKE ?)`
		pattern := "%" + *filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at ASC`

	var rows []subjectRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	subjects := make([]*entities.Subject, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}

	return subjects, nil
}

// PurgeAll wipes every subject and, through the cascade, every assignment.
func (r *SubjectRepositoryImpl) PurgeAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects`); err != nil {
		return fmt.Errorf("purge subjects: %w", err)
	}
	return nil
}
