package bookingapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/yaokonan/terrain-booking/internal/domain/sport"
	"github.com/yaokonan/terrain-booking/internal/domain/terrain"
	"github.com/yaokonan/terrain-booking/internal/platform/logging"
	"github.com/yaokonan/terrain-booking/internal/platform/resilience"
	"github.com/yaokonan/terrain-booking/internal/usecase"
)

const defaultBaseURL = "https://api.terrain-booking.ci/v1"

var errBookingTransient = crerr.New("booking platform transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the booking platform API. Reads are retried and collapsed
// through singleflight; writes go out exactly once per call.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// APIError is a non-2xx answer from the booking platform. Message carries the
// human-readable text from the error body when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking platform status=%d", e.StatusCode)
	}
	return fmt.Sprintf("booking platform status=%d: %s", e.StatusCode, e.Message)
}

// UserMessage exposes the upstream message for end-user display.
func (e *APIError) UserMessage() string {
	return e.Message
}

type sportItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IconKey string `json:"iconKey"`
	Active  bool   `json:"active"`
}

type terrainItem struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Contact      string   `json:"contact"`
	PricePerHour float64  `json:"pricePerHour"`
	OpenTime     string   `json:"openTime"`
	CloseTime    string   `json:"closeTime"`
	Images       []string `json:"images"`
	SportIDs     []int64  `json:"sportIds"`
}

// FetchActiveSports returns the platform's active sport catalog.
func (c *Client) FetchActiveSports(ctx context.Context) ([]sport.Sport, error) {
	var items []sportItem
	if err := c.getJSON(ctx, "/sports?active=true", &items); err != nil {
		return nil, fmt.Errorf("fetch active sports: %w", err)
	}

	out := make([]sport.Sport, 0, len(items))
	for _, item := range items {
		out = append(out, sport.Sport{
			ID:      item.ID,
			Name:    item.Name,
			IconKey: item.IconKey,
			Active:  item.Active,
		})
	}

	return out, nil
}

// GetTerrain fetches one terrain by id; used to seed edit-mode form sessions.
func (c *Client) GetTerrain(ctx context.Context, terrainID int64) (terrain.Terrain, error) {
	if terrainID <= 0 {
		return terrain.Terrain{}, fmt.Errorf("%w: terrain id must be greater than zero", usecase.ErrInvalidInput)
	}

	var item terrainItem
	if err := c.getJSON(ctx, "/terrains/"+strconv.FormatInt(terrainID, 10), &item); err != nil {
		return terrain.Terrain{}, fmt.Errorf("get terrain id=%d: %w", terrainID, err)
	}

	return mapTerrain(item), nil
}

// CreateTerrain submits a new terrain and returns the server's echo of it.
func (c *Client) CreateTerrain(ctx context.Context, payload terrain.Payload) (terrain.Terrain, error) {
	var item terrainItem
	if err := c.writeJSON(ctx, http.MethodPost, "/terrains", payload, &item); err != nil {
		return terrain.Terrain{}, fmt.Errorf("create terrain: %w", err)
	}

	return mapTerrain(item), nil
}

// UpdateTerrain replaces an existing terrain and returns the server's echo.
func (c *Client) UpdateTerrain(ctx context.Context, terrainID int64, payload terrain.Payload) (terrain.Terrain, error) {
	if terrainID <= 0 {
		return terrain.Terrain{}, fmt.Errorf("%w: terrain id must be greater than zero", usecase.ErrInvalidInput)
	}

	var item terrainItem
	path := "/terrains/" + strconv.FormatInt(terrainID, 10)
	if err := c.writeJSON(ctx, http.MethodPut, path, payload, &item); err != nil {
		return terrain.Terrain{}, fmt.Errorf("update terrain id=%d: %w", terrainID, err)
	}

	return mapTerrain(item), nil
}

func mapTerrain(item terrainItem) terrain.Terrain {
	return terrain.Terrain{
		ID:           item.ID,
		Name:         item.Name,
		Location:     item.Location,
		Description:  item.Description,
		Contact:      item.Contact,
		PricePerHour: item.PricePerHour,
		OpenTime:     item.OpenTime,
		CloseTime:    item.CloseTime,
		Images:       item.Images,
		SportIDs:     item.SportIDs,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	if err := c.allow(ctx); err != nil {
		return err
	}

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeWithRetry(ctx, path)
		c.record(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode platform payload: %w", err)
	}

	return nil
}

func (c *Client) writeJSON(ctx context.Context, method, path string, body, target any) error {
	if err := c.allow(ctx); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	_, _ = buf.Write(encoded)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(buf.String()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	raw, reqErr := c.send(req)
	c.record(reqErr)
	if reqErr != nil {
		return reqErr
	}

	if target != nil && len(raw) > 0 {
		if err := sonic.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("decode platform payload: %w", err)
		}
	}

	return nil
}

func (c *Client) allow(ctx context.Context) error {
	if !c.circuitEnabled {
		return nil
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "booking platform circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: booking platform is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return nil
}

func (c *Client) record(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && stderrors.Is(err, errBookingTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func (c *Client) executeWithRetry(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		c.setHeaders(req)

		raw, reqErr := c.send(req)
		if reqErr == nil {
			return raw, nil
		}
		lastErr = reqErr
		if !stderrors.Is(reqErr, errBookingTransient) {
			return nil, reqErr
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "booking platform request failed", "path", path, "error", lastErr)
	return nil, lastErr
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errBookingTransient, "send request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, crerr.Wrapf(errBookingTransient, "read response body: %v", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(raw)}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", usecase.ErrNotFound, apiErr.Message)
	case isRetryableStatus(resp.StatusCode):
		return nil, crerr.Mark(apiErr, errBookingTransient)
	default:
		return nil, apiErr
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// extractErrorMessage digs the human-readable text out of a platform error
// body. Both the enveloped form {"error":{"message":...}} and the bare
// {"message":...} form occur in the wild.
func extractErrorMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var enveloped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(raw, &enveloped); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(enveloped.Error.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(enveloped.Message)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
