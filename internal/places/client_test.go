package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlace = `{
  "id": "ChIJ123",
  "displayName": {"text": "Blue Door Coffee", "languageCode": "en"},
  "types": ["cafe", "food"],
  "reviews": [
    {"text": {"text": "Older review about the scones."}, "publishTime": "2024-01-02T10:00:00Z"},
    {"text": {"text": "Newest review, the cortado is great."}, "publishTime": "2024-03-05T10:00:00Z"},
    {"text": {"text": "Middle review mentioning bagels."}, "publishTime": "2024-02-01T10:00:00Z"}
  ]
}`

func newTestClient(url string, timeout time.Duration) *Client {
	c := NewClient(Options{BaseURL: url, APIKey: "test-key", Timeout: timeout})
	c.initialInterval = time.Millisecond
	return c
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/ChIJ123", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, fieldMask, r.Header.Get("X-Goog-FieldMask"))
		w.Write([]byte(samplePlace))
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL, time.Second).FetchProfile(context.Background(), "ChIJ123")
	require.NoError(t, err)

	assert.Equal(t, "ChIJ123", p.ID)
	assert.Equal(t, "Blue Door Coffee", p.Name)
	assert.Equal(t, []string{"cafe", "food"}, p.Types)
	require.Len(t, p.Reviews, 3)
	assert.Equal(t, "Newest review, the cortado is great.", p.Reviews[0].Text)
	assert.Equal(t, "Older review about the scones.", p.Reviews[2].Text)
}

func TestFetchProfile_NotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).FetchProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchProfile_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(samplePlace))
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL, time.Second).FetchProfile(context.Background(), "ChIJ123")
	require.NoError(t, err)
	assert.Equal(t, "Blue Door Coffee", p.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchProfile_RetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).FetchProfile(context.Background(), "ChIJ123")
	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusTooManyRequests, up.Status)
	assert.Equal(t, int32(1+maxRetries), calls.Load())
}

func TestFetchProfile_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).FetchProfile(context.Background(), "ChIJ123")
	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusForbidden, up.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchProfile_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 20*time.Millisecond).FetchProfile(context.Background(), "ChIJ123")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestFetchProfile_NotConfigured(t *testing.T) {
	c := NewClient(Options{})
	assert.False(t, c.Configured())
	_, err := c.FetchProfile(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
