package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// CatalogHTTPClient fetches the remote subjects catalog. Responses are cached
// by URL for the process lifetime; the catalog changes rarely and the cache
// holds a single entry in practice.
type CatalogHTTPClient struct {
	url    string
	client *http.Client
	logger *logger.Logger
	cache  map[string][]byte
}

// NewCatalogClient creates a catalog client for the configured subjects URL.
func NewCatalogClient(cfg config.APIConfig, logger *logger.Logger) *CatalogHTTPClient {
	return &CatalogHTTPClient{
		url:    cfg.SubjectsURL,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
		cache:  make(map[string][]byte),
	}
}

// FetchSubjects returns the catalog, served from cache when available.
func (c *CatalogHTTPClient) FetchSubjects(ctx context.Context) ([]ports.SubjectDTO, error) {
	if data, ok := c.cache[c.url]; ok {
		return decodeSubjects(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subjects request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subjects request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read subjects response: %w", err)
	}
	c.cache[c.url] = data

	return decodeSubjects(data)
}

func decodeSubjects(data []byte) ([]ports.SubjectDTO, error) {
	var subjects []ports.SubjectDTO
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("failed to decode subjects: %w", err)
	}
	return subjects, nil
}
