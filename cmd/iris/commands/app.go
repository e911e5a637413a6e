package commands

import (
	"context"
	"fmt"

	"github.com/iristrack/core/internal/adapters/api"
	"github.com/iristrack/core/internal/adapters/repository"
	"github.com/iristrack/core/internal/application/services"
	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/keystore"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/infrastructure/notify"
	"github.com/iristrack/core/internal/infrastructure/store"
)

// app is the composition root for one CLI invocation. Everything the core
// needs is wired here and passed down by handle; nothing reaches for
// ambient singletons.
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	tokens  *keystore.FileStore
	stores  *store.Manager
	session *services.SessionService
	catalog *api.CatalogHTTPClient
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tokens := keystore.New(cfg.Data.TokenPath())
	stores := store.NewManager(cfg.Data, appLogger.WithComponent("store"))
	authClient := api.NewAuthClient(cfg.API, appLogger.WithComponent("api"))
	catalog := api.NewCatalogClient(cfg.API, appLogger.WithComponent("api"))
	session := services.NewSessionService(authClient, tokens, stores, appLogger.WithComponent("session"))

	return &app{
		cfg:     cfg,
		logger:  appLogger,
		tokens:  tokens,
		stores:  stores,
		session: session,
		catalog: catalog,
	}, nil
}

func (a *app) close() {
	a.stores.Close()
	a.logger.Sync()
}

// newTimerService wires the timer with its terminal side-effect sinks.
func (a *app) newTimerService() *services.TimerService {
	timerLogger := a.logger.WithComponent("timer")
	return services.NewTimerService(a.cfg.Timer, notify.NewScheduler(timerLogger), notify.NopSleepInhibitor{}, timerLogger)
}

// requireUser re-authenticates from the stored token and returns services
// bound to the current user's store.
func (a *app) requireUser(ctx context.Context) (*services.SubjectService, *services.AssignmentService, error) {
	result, err := a.session.Authenticate(ctx)
	if err != nil {
		return nil, nil, err
	}
	if result != entities.AuthSuccess {
		return nil, nil, fmt.Errorf("not signed in, run `iris signin` first")
	}

	userStore, err := a.stores.Open(a.session.CurrentUserID())
	if err != nil {
		return nil, nil, err
	}

	subjectRepo := repository.NewSubjectRepository(userStore.DB)
	assignmentRepo := repository.NewAssignmentRepository(userStore.DB)

	subjects := services.NewSubjectService(subjectRepo, assignmentRepo, a.catalog, a.logger.WithComponent("subjects"))
	assignments := services.NewAssignmentService(assignmentRepo, subjectRepo, a.logger.WithComponent("tasks"))

	return subjects, assignments, nil
}
