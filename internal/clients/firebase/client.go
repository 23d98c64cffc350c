// Package firebase reads activity records from a Firebase Realtime Database over its REST API.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
	"github.com/sistemasreportes/reportes-backend/internal/observability"
)

// Scopes required by the Realtime Database REST API for service accounts.
var Scopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Config holds the client settings
type Config struct {
	DatabaseURL     string
	CredentialsFile string
	ActivitiesPath  string
	Timeout         time.Duration
}

// Client for the Realtime Database REST API
type Client struct {
	baseURL        string
	activitiesPath string
	client         *http.Client
	log            zerolog.Logger
}

// NewClient creates a client authenticated with the service account in cfg.CredentialsFile.
// A missing credentials file leaves the client unauthenticated (public rules or the emulator).
// ctx is used by the token source to refresh access tokens and should outlive the client.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	log = log.With().Str("client", "firebase").Logger()

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("file", cfg.CredentialsFile).Msg("Credentials file not found, using unauthenticated requests")
		case err != nil:
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		default:
			creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
			if err != nil {
				return nil, fmt.Errorf("failed to parse credentials: %w", err)
			}
			transport = &oauth2.Transport{Source: creds.TokenSource, Base: http.DefaultTransport}
			log.Info().Str("project", creds.ProjectID).Msg("Loaded service account credentials")
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return newClient(cfg.DatabaseURL, cfg.ActivitiesPath, &http.Client{Timeout: timeout, Transport: transport}, log), nil
}

func newClient(baseURL, activitiesPath string, httpClient *http.Client, log zerolog.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		activitiesPath: strings.Trim(activitiesPath, "/"),
		client:         httpClient,
		log:            log,
	}
}

// FetchActivities downloads the whole activities node.
func (c *Client) FetchActivities(ctx context.Context) ([]domain.ActivityRecord, error) {
	start := time.Now()
	body, err := c.get(ctx, nil)
	observability.ObserveStoreFetch("activities", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.log.Debug().
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetched activities")

	return records, nil
}

// LatestActivity returns the record with the highest key, keyed as the database returns it.
func (c *Client) LatestActivity(ctx context.Context) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("orderBy", strconv.Quote("$key"))
	query.Set("limitToLast", "1")

	start := time.Now()
	body, err := c.get(ctx, query)
	observability.ObserveStoreFetch("latest", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("failed to parse response: invalid JSON")
	}
	if string(body) == "null" {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, query url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, c.activitiesPath)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", endpoint).Msg("Querying database")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("database request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("database returned status %d: %s", resp.StatusCode, errorMessage(body))
	}

	return body, nil
}

// errorMessage extracts the {"error": "..."} message the REST API sends on failures.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
