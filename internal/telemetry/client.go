package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/niatrack-data/internal/common/config"
	"github.com/niatrack-data/internal/common/logger"
	"github.com/niatrack-data/pkg/trips/models"
)

// ErrAuth marks login failures and rejected tokens. Callers must not
// confuse it with an empty result, which is valid data.
var ErrAuth = errors.New("telemetry authentication failed")

// Client talks to the platform's telemetry HTTP API. A session token is
// obtained via login, cached, and refreshed once when the API rejects it.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   logger.Logger

	mu    sync.Mutex
	token string
}

func NewClient(cfg config.TelemetryConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// FetchTimeseries returns the keyed time series for the device over the
// requested range. Transport, decode and auth failures are surfaced as
// errors; a range with no data comes back as an empty mapping.
func (c *Client) FetchTimeseries(ctx context.Context, deviceID string, keys []string, startTs, endTs int64) (map[string][]models.Sample, error) {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	feed, status, err := c.fetch(ctx, token, deviceID, keys, startTs, endTs)
	if status == http.StatusUnauthorized {
		// Token expired, refresh the session once and retry.
		c.logger.Debug("Telemetry token rejected, re-authenticating")
		token, err = c.refreshToken(ctx, token)
		if err != nil {
			return nil, err
		}
		feed, status, err = c.fetch(ctx, token, deviceID, keys, startTs, endTs)
	}
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, fmt.Errorf("%w: API rejected token with status %d", ErrAuth, status)
	}

	total := 0
	for _, samples := range feed {
		total += len(samples)
	}
	c.logger.Debug("Fetched telemetry snapshot",
		"device_id", deviceID,
		"keys", len(keys),
		"samples", total)

	return feed, nil
}

func (c *Client) fetch(ctx context.Context, token, deviceID string, keys []string, startTs, endTs int64) (map[string][]models.Sample, int, error) {
	query := url.Values{}
	query.Set("keys", strings.Join(keys, ","))
	query.Set("startTs", strconv.FormatInt(startTs, 10))
	query.Set("endTs", strconv.FormatInt(endTs, 10))

	endpoint := fmt.Sprintf("%s/api/plugins/telemetry/DEVICE/%s/values/timeseries?%s",
		c.baseURL, deviceID, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing timeseries request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	feed := make(map[string][]models.Sample)
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decoding timeseries response: %w", err)
	}

	return feed, resp.StatusCode, nil
}

// sessionToken returns the cached token, logging in when there is none.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}
	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

// refreshToken discards stale and logs in again, keeping concurrent callers
// from stampeding the login endpoint.
func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.token != stale {
		// Another caller already refreshed.
		return c.token, nil
	}
	token, err := c.login(ctx)
	if err != nil {
		c.token = ""
		return "", err
	}
	c.token = token
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(loginRequest{Username: c.username, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("marshaling login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: login rejected with status %d", ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login returned status %d: %s", resp.StatusCode, string(body))
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", ErrAuth)
	}

	c.logger.Debug("Telemetry session established")
	return result.Token, nil
}
