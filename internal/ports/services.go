package ports

import (
	"context"
	"time"

	"github.com/iristrack/core/internal/domain/entities"
)

// AuthClient is the transport for the remote /v1/auth API. Implementations
// return the raw HTTP status code; mapping codes onto results and errors is
// the session service's job.
type AuthClient interface {
	SignUp(ctx context.Context, creds entities.Credentials) (int, error)
	SignIn(ctx context.Context, creds entities.Credentials) (status int, token string, err error)
	Authenticate(ctx context.Context, token string) (int, error)
	WhoAmI(ctx context.Context, token string) (status int, userID string, err error)
	DeleteUser(ctx context.Context, userID string) (int, error)
}

// CatalogClient fetches the remote subjects catalog.
type CatalogClient interface {
	FetchSubjects(ctx context.Context) ([]SubjectDTO, error)
}

// TokenStore persists the bearer token under a fixed key on this device.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
	Exists() bool
}

// StoreProvisioner binds and destroys per-user local data stores.
type StoreProvisioner interface {
	Bind(ctx context.Context, userID string) error
	Destroy(ctx context.Context, userID string) error
}

// AlertScheduler schedules the end-of-session alert. Scheduling is
// fire-and-forget; failures are never observed by the timer.
type AlertScheduler interface {
	Schedule(phase entities.SessionPhase, after time.Duration)
	CancelAll()
}

// SleepInhibitor keeps the device awake while a countdown runs. Platforms
// without the capability pass a no-op implementation.
type SleepInhibitor interface {
	Inhibit()
	Release()
}

// SubjectDTO is the wire shape of a catalog entry. Dates travel as
// "yyyy-MM-dd" strings.
type SubjectDTO struct {
	Name           string   `json:"name" validate:"required"`
	Year           string   `json:"year" validate:"required"`
	ShortName      string   `json:"shortName"`
	ExamGrades     []int    `json:"examGrades"`
	FinalGrades    []int    `json:"finalGrades"`
	IsFinished     bool     `json:"isFinished"`
	HasThreeExams  bool     `json:"hasThreeExams"`
	FinalExamDates []string `json:"finalExamDates"`
}

// ToSubject copies the catalog entry into a locally-tracked subject. Only
// identity and schema fields carry over; grade and date history starts empty.
func (d SubjectDTO) ToSubject() *entities.Subject {
	return entities.NewSubject(d.Name, d.Year, d.ShortName, d.HasThreeExams)
}

// TokenResponse is the /v1/auth/signin success body.
type TokenResponse struct {
	Token string `json:"token"`
}
