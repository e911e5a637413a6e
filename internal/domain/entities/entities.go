package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrBadURL            = errors.New("malformed api url")
	ErrBadServerResponse = errors.New("bad server response")
	ErrConflict          = errors.New("a conflict occurred, please check server logs")
	ErrUnknown           = errors.New("an unknown error occurred")

	ErrSubjectNotFound    = errors.New("subject not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrNoActiveSession    = errors.New("no active session")
	ErrTimerActive        = errors.New("timer is active")
)

// AuthResult is the outcome of an authentication operation. A rejected
// credential (HTTP 401) is a regular result value, not an error: callers
// branch on it to route to a login prompt.
type AuthResult int

const (
	AuthSuccess AuthResult = iota
	AuthUnauthorized
)

func (r AuthResult) String() string {
	if r == AuthSuccess {
		return "success"
	}
	return "unauthorized"
}

// Session represents the authenticated binding between this device and one
// remote user account.
type Session struct {
	Token         string
	CurrentUserID string
}

// IsAuthenticated reports whether a user is bound to the session. The user id
// is non-empty if and only if a per-user data store has been provisioned.
func (s Session) IsAuthenticated() bool {
	return s.CurrentUserID != ""
}

// Credentials carries a username/password pair for the auth endpoints.
type Credentials struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=8"`
}

// Subject represents a tracked academic course with exam grades and
// assignments. Two subjects are considered the same course when their names
// match; the ID exists so that a retaken course with the same name does not
// collide in storage.
type Subject struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	Year           string       `json:"year" db:"year"`
	ShortName      string       `json:"shortName" db:"short_name"`
	HasThreeExams  bool         `json:"hasThreeExams" db:"has_three_exams"`
	IsFinished     bool         `json:"isFinished" db:"is_finished"`
	ExamGrades     []int        `json:"examGrades"`
	FinalGrades    []int        `json:"finalGrades"`
	FinalExamDates []time.Time  `json:"finalExamDates"`
	Assignments    []Assignment `json:"assignments,omitempty"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// NewSubject creates a locally-tracked subject. Grade and date history always
// starts empty; only identity and schema fields come from the caller.
func NewSubject(name, year, shortName string, hasThreeExams bool) *Subject {
	now := time.Now()
	return &Subject{
		ID:            uuid.New(),
		Name:          name,
		Year:          year,
		ShortName:     shortName,
		HasThreeExams: hasThreeExams,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SameCourse reports course identity, which is defined by name alone.
func (s *Subject) SameCourse(other *Subject) bool {
	return s.Name == other.Name
}

// ExamCount returns how many partial exams the subject schema expects,
// excluding the final.
func (s *Subject) ExamCount() int {
	if s.HasThreeExams {
		return 3
	}
	return 2
}

// AddExamGrade appends a partial exam grade. The schema caps the number of
// partial grades at ExamCount.
func (s *Subject) AddExamGrade(grade int) error {
	if grade < 1 || grade > 10 {
		return fmt.Errorf("grade %d out of range", grade)
	}
	if len(s.ExamGrades) >= s.ExamCount() {
		return fmt.Errorf("subject %s already has all %d exam grades", s.Name, s.ExamCount())
	}
	s.ExamGrades = append(s.ExamGrades, grade)
	s.UpdatedAt = time.Now()
	return nil
}

// SetFinalGrade records the final exam grade. A subject holds at most one.
func (s *Subject) SetFinalGrade(grade int) error {
	if grade < 1 || grade > 10 {
		return fmt.Errorf("grade %d out of range", grade)
	}
	s.FinalGrades = []int{grade}
	s.UpdatedAt = time.Now()
	return nil
}

// AddFinalExamDate appends a scheduled final exam date.
func (s *Subject) AddFinalExamDate(date time.Time) {
	s.FinalExamDates = append(s.FinalExamDates, date)
	s.UpdatedAt = time.Now()
}

// MarkFinished moves the subject into the passed collection.
func (s *Subject) MarkFinished() {
	s.IsFinished = true
	s.UpdatedAt = time.Now()
}

// GradeAverage returns the mean over all recorded grades, partials and final
// combined, or 0 when no grades exist.
func (s *Subject) GradeAverage() float64 {
	grades := append(append([]int{}, s.ExamGrades...), s.FinalGrades...)
	if len(grades) == 0 {
		return 0
	}
	sum := 0
	for _, g := range grades {
		sum += g
	}
	return float64(sum) / float64(len(grades))
}

// AssignmentPriority classifies an assignment for display and sorting.
type AssignmentPriority string

const (
	PriorityNormal AssignmentPriority = "normal"
	PriorityExam   AssignmentPriority = "exam"
)

func (p AssignmentPriority) IsValid() bool {
	return p == PriorityNormal || p == PriorityExam
}

// Color returns the display color associated with the priority.
func (p AssignmentPriority) Color() string {
	if p == PriorityExam {
		return "red"
	}
	return "green"
}

// Assignment represents a pending piece of work belonging to exactly one
// subject.
type Assignment struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	SubjectID   uuid.UUID          `json:"subjectId" db:"subject_id"`
	Title       string             `json:"title" db:"title"`
	Priority    AssignmentPriority `json:"priority" db:"priority"`
	SortOrder   int                `json:"sortOrder" db:"sort_order"`
	ExamDate    time.Time          `json:"examDate" db:"exam_date"`
	IsCompleted bool               `json:"isCompleted" db:"is_completed"`
	Timestamp   time.Time          `json:"timestamp" db:"timestamp"`
}

// NewAssignment creates an assignment placeholder. The title starts empty and
// the record is discarded if it is still empty when editing ends.
func NewAssignment(subjectID uuid.UUID, priority AssignmentPriority) *Assignment {
	return &Assignment{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Priority:  priority,
		Timestamp: time.Now(),
	}
}

// IsPlaceholder reports whether the assignment was never given a title.
func (a *Assignment) IsPlaceholder() bool {
	return strings.TrimSpace(a.Title) == ""
}

// SessionPhase is one of the two mutually-exclusive pomodoro phases.
type SessionPhase string

const (
	PhaseStudy SessionPhase = "study"
	PhaseBreak SessionPhase = "break"
)

// TimerState is the lifecycle state of the countdown.
type TimerState int

const (
	TimerInactive TimerState = iota
	TimerRunning
	TimerPaused
)

func (t TimerState) String() string {
	switch t {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	default:
		return "inactive"
	}
}

// StudySession is the in-memory countdown state. It is never persisted; a
// process restart always resets to inactive.
type StudySession struct {
	Phase      SessionPhase
	State      TimerState
	Remaining  int // whole seconds
	Total      int // whole seconds, for progress computation
	LastActive time.Time
}

// Progress returns the remaining fraction of the configured interval,
// clamped to [0,1]. A zero total yields 1 rather than dividing by zero.
func (s StudySession) Progress() float64 {
	if s.Total == 0 {
		return 1
	}
	p := float64(s.Remaining) / float64(s.Total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Clock formats the remaining time as MM:SS.
func (s StudySession) Clock() string {
	m := s.Remaining / 60
	sec := s.Remaining % 60
	return fmt.Sprintf("%02d:%02d", m, sec)
}
