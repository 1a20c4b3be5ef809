// Package places fetches restaurant profiles and reviews from the Google
// Places API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rcliao/menu-cache/internal/model"
)

const (
	DefaultBaseURL = "https://places.googleapis.com/v1"
	DefaultTimeout = 10 * time.Second
	fieldMask      = "id,displayName,types,reviews"
	maxRetries     = 2
	maxBodySize    = 4 << 20
)

var (
	// ErrNotFound means the place id does not exist.
	ErrNotFound = errors.New("place not found")
	// ErrUpstreamTimeout means the lookup did not finish before its deadline.
	ErrUpstreamTimeout = errors.New("places lookup timed out")
	// ErrNotConfigured means no API key is set.
	ErrNotConfigured = errors.New("places API key not configured")
)

// UpstreamError is a non-success response other than 404.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("places upstream error %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Source is what the menu pipeline needs from a places provider.
type Source interface {
	FetchProfile(ctx context.Context, restaurantID string) (*model.RestaurantProfile, error)
}

// Client talks to the Places API (New).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger

	// initialInterval is the first retry delay.
	initialInterval time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewClient creates a places client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:         opts.BaseURL,
		apiKey:          opts.APIKey,
		http:            &http.Client{Timeout: opts.Timeout},
		logger:          opts.Logger,
		initialInterval: 250 * time.Millisecond,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type placeResponse struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Types   []string `json:"types"`
	Reviews []struct {
		Text struct {
			Text string `json:"text"`
		} `json:"text"`
		PublishTime time.Time `json:"publishTime"`
	} `json:"reviews"`
}

// FetchProfile returns the place's name, types and reviews, newest first.
// 429 and 5xx responses are retried at most twice; timeouts and 404s are not.
func (c *Client) FetchProfile(ctx context.Context, restaurantID string) (*model.RestaurantProfile, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var place placeResponse
	op := func() error {
		p, err := c.fetch(ctx, restaurantID)
		if err != nil {
			var up *UpstreamError
			if errors.As(err, &up) && up.retryable() {
				c.logger.Debug("Retrying places lookup", "restaurant_id", restaurantID, "status", up.Status)
				return err
			}
			return backoff.Permanent(err)
		}
		place = *p
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrUpstreamTimeout
		}
		return nil, err
	}

	profile := &model.RestaurantProfile{
		ID:    place.ID,
		Name:  place.DisplayName.Text,
		Types: place.Types,
	}
	if profile.ID == "" {
		profile.ID = restaurantID
	}
	for _, r := range place.Reviews {
		profile.Reviews = append(profile.Reviews, model.Review{Text: r.Text.Text, PublishTime: r.PublishTime})
	}
	model.SortReviewsNewestFirst(profile.Reviews)
	return profile, nil
}

func (c *Client) fetch(ctx context.Context, restaurantID string) (*placeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+url.PathEscape(restaurantID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(err) {
			return nil, ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("read places response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var place placeResponse
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}
	return &place, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
