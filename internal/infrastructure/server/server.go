// Package server hosts a local stand-in for the remote Iris API so the
// client can be developed and tested without the hosted backend. It mirrors
// the /v1/auth and /v1/subjects contract exactly; accounts live in memory
// and disappear on restart.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// Server represents the dev API server
type Server struct {
	echo   *echo.Echo
	config config.DevServerConfig
	logger *logger.Logger
	secret []byte

	mu      sync.Mutex
	byName  map[string]*account
	byID    map[string]*account
	catalog []ports.SubjectDTO
}

type account struct {
	ID           string
	Username     string
	PasswordHash []byte
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new dev server instance
func New(cfg config.DevServerConfig, appLogger *logger.Logger) (*Server, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		// Ephemeral secret: tokens only survive as long as the process.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		appLogger.Warnw("No jwt secret configured, generated an ephemeral one")
	}

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		secret: secret,
		byName: make(map[string]*account),
		byID:   make(map[string]*account),
	}

	if err := server.loadCatalog(); err != nil {
		return nil, err
	}

	server.setupMiddleware()
	server.setupRoutes()

	if cfg.MetricsEnabled {
		server.setupMetrics()
	}

	return server, nil
}

// Start begins serving on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			latency := float64(values.Latency.Nanoseconds()) / 1000000

			if values.Error != nil {
				s.logger.WithError(values.Error).Errorw("HTTP request failed",
					"method", values.Method,
					"uri", values.URI,
					"status", values.Status,
					"latency_ms", latency,
					"remote_ip", values.RemoteIP,
				)
				return nil
			}

			s.logger.LogHTTPRequest(values.Method, values.URI, values.RemoteIP, values.Status, latency)
			return nil
		},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.RateLimitRequests),
				Burst:     s.config.RateLimitRequests,
				ExpiresIn: time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.RequestID())
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := s.echo.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", s.signUp)
	auth.POST("/signin", s.signIn)
	auth.GET("/authenticate", s.authenticate, s.authMiddleware)
	auth.GET("/secret", s.whoAmI, s.authMiddleware)
	auth.DELETE("/users/:id", s.deleteUser)

	v1.GET("/subjects", s.subjects)
}

func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// authMiddleware validates bearer tokens minted by signIn.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.userIDFromHeader(c)
		if err != nil {
			return c.NoContent(http.StatusUnauthorized)
		}

		s.mu.Lock()
		_, ok := s.byID[userID]
		s.mu.Unlock()
		if !ok {
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user_id", userID)
		return next(c)
	}
}

func (s *Server) userIDFromHeader(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(header[len(prefix):], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return sub, nil
}

func (s *Server) signUp(c echo.Context) error {
	var creds entities.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := c.Validate(&creds); err != nil {
		return c.NoContent(http.StatusUnauthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[creds.Username]; exists {
		return c.NoContent(http.StatusConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}

	acct := &account{
		ID:           uuid.NewString(),
		Username:     creds.Username,
		PasswordHash: hash,
	}
	s.byName[acct.Username] = acct
	s.byID[acct.ID] = acct

	s.logger.LogAuthEvent("signup", acct.ID)
	return c.NoContent(http.StatusOK)
}

func (s *Server) signIn(c echo.Context) error {
	var creds entities.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	s.mu.Lock()
	acct, ok := s.byName[creds.Username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(creds.Password)) != nil {
		return c.NoContent(http.StatusUnauthorized)
	}

	claims := jwt.RegisteredClaims{
		Subject:   acct.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "iris-devserver",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}

	s.logger.LogAuthEvent("signin", acct.ID)
	return c.JSON(http.StatusOK, ports.TokenResponse{Token: token})
}

func (s *Server) authenticate(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// whoAmI returns the raw user id bound to the presented token, matching the
// remote API's whoami endpoint.
func (s *Server) whoAmI(c echo.Context) error {
	return c.String(http.StatusOK, c.Get("user_id").(string))
}

func (s *Server) deleteUser(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	delete(s.byID, id)
	delete(s.byName, acct.Username)

	s.logger.LogAuthEvent("delete_user", id)
	return c.NoContent(http.StatusOK)
}

func (s *Server) subjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog)
}

// loadCatalog reads the catalog from the configured file, or falls back to a
// small built-in sample.
func (s *Server) loadCatalog() error {
	if s.config.CatalogFile == "" {
		s.catalog = sampleCatalog()
		return nil
	}

	data, err := os.ReadFile(s.config.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	if err := json.Unmarshal(data, &s.catalog); err != nil {
		return fmt.Errorf("failed to decode catalog file: %w", err)
	}

	return nil
}

func sampleCatalog() []ports.SubjectDTO {
	return []ports.SubjectDTO{
		{Name: "Anatomy", Year: "1", ShortName: "Anat", HasThreeExams: true},
		{Name: "Physiology", Year: "2", ShortName: "Physio"},
		{Name: "Bioethics", Year: "3", ShortName: "Bioeth"},
		{Name: "Histology and Embryology", Year: "1", ShortName: "HyE", HasThreeExams: true},
	}
}
