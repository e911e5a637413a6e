package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// SessionService owns the authentication lifecycle: sign up, sign in,
// token-based re-authentication at launch, sign out and account deletion,
// and gates access to the per-user data store accordingly. Exactly one
// session is active per process.
type SessionService struct {
	client   ports.AuthClient
	tokens   ports.TokenStore
	stores   ports.StoreProvisioner
	logger   *logger.Logger
	validate *validator.Validate

	session   entities.Session
	listeners []func(entities.Session)
}

// NewSessionService creates a new session service
func NewSessionService(client ports.AuthClient, tokens ports.TokenStore, stores ports.StoreProvisioner, logger *logger.Logger) *SessionService {
	return &SessionService{
		client:   client,
		tokens:   tokens,
		stores:   stores,
		logger:   logger,
		validate: validator.New(),
	}
}

// Session returns a snapshot of the current session.
func (s *SessionService) Session() entities.Session {
	return s.session
}

// CurrentUserID returns the bound user id, or the empty string when
// unauthenticated.
func (s *SessionService) CurrentUserID() string {
	return s.session.CurrentUserID
}

// RegisterListener adds a callback invoked after every successful session
// transition.
func (s *SessionService) RegisterListener(fn func(entities.Session)) {
	s.listeners = append(s.listeners, fn)
}

func (s *SessionService) notify() {
	for _, fn := range s.listeners {
		fn(s.session)
	}
}

// SignUp creates a remote account and, on success, chains directly into
// SignIn with the same credentials: the remote system treats signup as a
// precondition for sign-in, not as itself issuing a session.
func (s *SessionService) SignUp(ctx context.Context, creds entities.Credentials) (entities.AuthResult, error) {
	if err := s.validate.Struct(creds); err != nil {
		return 0, fmt.Errorf("invalid credentials: %w", err)
	}

	status, err := s.client.SignUp(ctx, creds)
	if err != nil {
		return 0, err
	}

	switch {
	case status == http.StatusOK:
		return s.SignIn(ctx, creds)
	case status == http.StatusUnauthorized:
		return entities.AuthUnauthorized, nil
	default:
		return 0, statusError(status)
	}
}

// SignIn authenticates against the remote API. On success the bearer token is
// persisted, the remote user id resolved, and the per-user store bound.
func (s *SessionService) SignIn(ctx context.Context, creds entities.Credentials) (entities.AuthResult, error) {
	if err := s.validate.Struct(creds); err != nil {
		return 0, fmt.Errorf("invalid credentials: %w", err)
	}

	status, token, err := s.client.SignIn(ctx, creds)
	if err != nil {
		return 0, err
	}

	switch {
	case status == http.StatusOK:
		if err := s.tokens.Save(token); err != nil {
			return 0, fmt.Errorf("failed to persist token: %w", err)
		}
		if err := s.bindCurrentUser(ctx, token); err != nil {
			return 0, err
		}

		s.logger.LogAuthEvent("sign_in", s.session.CurrentUserID)
		s.notify()
		return entities.AuthSuccess, nil

	case status == http.StatusUnauthorized:
		return entities.AuthUnauthorized, nil
	default:
		return 0, statusError(status)
	}
}

// Authenticate verifies the stored token at process start. With no stored
// token it returns unauthorized immediately, without a network call. A 401
// clears the stored token.
func (s *SessionService) Authenticate(ctx context.Context) (entities.AuthResult, error) {
	if !s.tokens.Exists() {
		return entities.AuthUnauthorized, nil
	}

	token, err := s.tokens.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load token: %w", err)
	}

	status, err := s.client.Authenticate(ctx, token)
	if err != nil {
		return 0, err
	}

	switch {
	case status == http.StatusOK:
		if err := s.bindCurrentUser(ctx, token); err != nil {
			return 0, err
		}

		s.logger.LogAuthEvent("authenticate", s.session.CurrentUserID)
		s.notify()
		return entities.AuthSuccess, nil

	case status == http.StatusUnauthorized:
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warnw("Failed to clear stale token", "error", err)
		}
		return entities.AuthUnauthorized, nil
	default:
		return 0, statusError(status)
	}
}

// SignOut drops the local session without touching remote state or on-disk
// data.
func (s *SessionService) SignOut() error {
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	s.logger.LogAuthEvent("sign_out", s.session.CurrentUserID)
	s.session = entities.Session{}
	s.notify()
	return nil
}

// DeleteAccount removes the remote account, then clears the stored token,
// unbinds the session and destroys the user's on-disk store.
func (s *SessionService) DeleteAccount(ctx context.Context) (entities.AuthResult, error) {
	userID, err := s.resolveUserID(ctx)
	if err != nil {
		return 0, err
	}

	status, err := s.client.DeleteUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	switch {
	case status == http.StatusOK:
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warnw("Failed to clear token after account deletion", "error", err)
		}
		s.session = entities.Session{}

		if err := s.stores.Destroy(ctx, userID); err != nil {
			return 0, fmt.Errorf("failed to delete user data: %w", err)
		}

		s.logger.LogAuthEvent("delete_account", userID)
		s.notify()
		return entities.AuthSuccess, nil

	case status == http.StatusUnauthorized:
		return entities.AuthUnauthorized, nil
	default:
		return 0, statusError(status)
	}
}

// bindCurrentUser resolves the remote user id and provisions the per-user
// store, establishing the session invariant: a bound user always has a store.
func (s *SessionService) bindCurrentUser(ctx context.Context, token string) error {
	userID, err := s.resolveUserID(ctx)
	if err != nil {
		return err
	}

	if err := s.stores.Bind(ctx, userID); err != nil {
		return fmt.Errorf("failed to provision user store: %w", err)
	}

	s.session = entities.Session{Token: token, CurrentUserID: userID}
	return nil
}

// resolveUserID asks the remote whoami endpoint for the user id bound to the
// stored token. The response body is the raw id string.
func (s *SessionService) resolveUserID(ctx context.Context) (string, error) {
	if !s.tokens.Exists() {
		return "", entities.ErrNoActiveSession
	}

	token, err := s.tokens.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	status, userID, err := s.client.WhoAmI(ctx, token)
	if err != nil {
		return "", err
	}

	if status == http.StatusOK {
		return userID, nil
	}
	return "", statusError(status)
}

// statusError maps a non-success, non-401 status code onto the error
// taxonomy. 401 is never an error; callers handle it as a result value.
func statusError(status int) error {
	switch {
	case status == http.StatusConflict:
		return entities.ErrConflict
	case status >= 500 && status < 600:
		return entities.ErrBadServerResponse
	default:
		return entities.ErrUnknown
	}
}
