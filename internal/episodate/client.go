package episodate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecal/telecal/internal/config"
)

// NoDataError indicates the provider answered but had no payload for the
// show. It is a recoverable miss, distinct from a transport failure.
type NoDataError struct {
	ShowID string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("episodate returned no data for show %s", e.ShowID)
}

// TransportError indicates a network, HTTP status, or decode failure while
// talking to the provider.
type TransportError struct {
	ShowID string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("episodate request failed for show %s: %v", e.ShowID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Provider fetches one show's full episode list. Implemented by Client;
// consumers take the interface so tests can substitute a fake.
type Provider interface {
	GetShow(ctx context.Context, id string) (*Show, error)
}

// Client is an Episodate API client.
type Client struct {
	httpClient *http.Client
	config     config.EpisodateConfig
	logger     zerolog.Logger
}

// NewClient creates a new Episodate client.
func NewClient(cfg config.EpisodateConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "episodate").Logger(),
	}
}

// GetShow fetches the full episode payload for one show. A response without
// a tvShow field yields *NoDataError; anything that prevents reading a
// response at all yields *TransportError. The client never retries and
// never writes the show cache.
func (c *Client) GetShow(ctx context.Context, id string) (*Show, error) {
	endpoint := fmt.Sprintf("%s/show-details?q=%s", c.config.BaseURL, url.QueryEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{ShowID: id, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{ShowID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug().Str("show", id).Int("status", resp.StatusCode).Msg("Unexpected provider status")
		return nil, &TransportError{ShowID: id, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var details ShowDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, &TransportError{ShowID: id, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if details.TVShow == nil {
		return nil, &NoDataError{ShowID: id}
	}

	return details.TVShow, nil
}
