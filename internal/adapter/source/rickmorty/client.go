package rickmorty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/wubba/internal/domain"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 250 * time.Millisecond
	userAgent         = "Wubba/1.0"
)

// Options tunes transport behaviour. Zero values select sane defaults.
type Options struct {
	Timeout    time.Duration
	RateLimit  float64 // Requests per second, <= 0 disables limiting
	RateBurst  int
	Attempts   uint // Total attempts per request for transient failures
	RetryDelay time.Duration
}

// Client implements domain.CatalogClient and domain.CharacterClient for
// the Rick and Morty REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a new API client rooted at baseURL, e.g. https://rickandmortyapi.com/api
func NewClient(baseURL string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:    rate.NewLimiter(limit, burst),
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
		logger:     logger,
	}
}

// statusError is a non-200 response from the API
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code: %d (%s)", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// transportError is a failure below HTTP, e.g. refused connection or reset
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// isRetryable reports whether a request failure is worth another attempt
func isRetryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// get performs a rate-limited GET, retrying transient failures
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body []byte
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			b, err := c.doRequest(ctx, reqURL)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("retrying request", "url", reqURL, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("api request", "url", reqURL, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		c.logger.Debug("api request error", "url", reqURL, "status", resp.StatusCode, "request_id", requestID)
		return nil, &statusError{Code: resp.StatusCode, Message: eb.Error}
	}

	return body, nil
}

// FetchPage returns the 1-based catalog page. A 404 past the last page
// yields an empty page with no next cursor.
func (c *Client) FetchPage(ctx context.Context, page int) (domain.CatalogPage, error) {
	if page < 1 {
		return domain.CatalogPage{}, fmt.Errorf("invalid page number: %d", page)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	body, err := c.get(ctx, "/episode", query)
	if err != nil {
		if isNotFound(err) {
			c.logger.Info("catalog page not found, treating as exhausted", "page", page)
			return domain.CatalogPage{Number: page}, nil
		}
		c.logger.Error("failed to fetch catalog page", "page", page, "error", err)
		return domain.CatalogPage{}, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}

	var resp episodePage
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "page", page, "error", err, "bodyLen", len(body))
		return domain.CatalogPage{}, fmt.Errorf("%w: failed to parse response: %w", domain.ErrNetwork, err)
	}

	return MapEpisodePage(page, resp), nil
}

// FetchCharacters returns the characters for ids in a single request.
// No request is made for an empty id list, and unknown ids are omitted.
func (c *Client) FetchCharacters(ctx context.Context, ids []int) ([]domain.Character, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	body, err := c.get(ctx, "/character/"+strings.Join(parts, ","), nil)
	if err != nil {
		if isNotFound(err) {
			// A lone unknown id is answered with 404 rather than an empty array
			c.logger.Info("characters not found, treating as empty", "ids", ids)
			return nil, nil
		}
		c.logger.Error("failed to fetch characters", "count", len(ids), "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}

	dtos, err := decodeCharacters(body)
	if err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: failed to parse response: %w", domain.ErrNetwork, err)
	}
	return MapCharacters(dtos), nil
}

// decodeCharacters accepts either a single object (one id) or an array
func decodeCharacters(body []byte) ([]characterDTO, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var dtos []characterDTO
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, err
		}
		return dtos, nil
	}

	var dto characterDTO
	if err := json.Unmarshal(trimmed, &dto); err != nil {
		return nil, err
	}
	return []characterDTO{dto}, nil
}
