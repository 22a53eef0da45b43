// Package stationapi resolves station metadata from the fleet registry
// HTTP API and caches the results.
package stationapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wxpipe/humidity-etl/internal/domain"
	"github.com/wxpipe/humidity-etl/internal/observability"
)

// Client implements domain.StationDirectory against the fleet registry.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a registry client. token may be empty for
// registries that do not require auth.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup fetches metadata for a station ID. An unknown station returns a
// zero StationInfo with a nil error.
func (c *Client) Lookup(ctx context.Context, stationID string) (domain.StationInfo, error) {
	u := fmt.Sprintf("%s/v1/stations/%s", c.baseURL, url.PathEscape(stationID))
	return c.doRequest(ctx, u)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.StationInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.StationInfo{}, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.DirectoryAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.DirectoryLookups.WithLabelValues("error").Inc()
		return domain.StationInfo{}, fmt.Errorf("directory lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.DirectoryLookups.WithLabelValues("empty").Inc()
		return domain.StationInfo{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.DirectoryLookups.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return domain.StationInfo{}, fmt.Errorf("directory API error: status %d: %s", resp.StatusCode, body)
	}

	var doc stationDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		c.metrics.DirectoryLookups.WithLabelValues("error").Inc()
		return domain.StationInfo{}, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.DirectoryLookups.WithLabelValues("success").Inc()
	return domain.StationInfo{
		StationID:  doc.StationID,
		Name:       doc.Name,
		Latitude:   doc.Latitude,
		Longitude:  doc.Longitude,
		ElevationM: doc.ElevationM,
	}, nil
}

// Fleet registry API response types.

type stationDocument struct {
	StationID  string  `json:"station_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
}
