package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout marks a generation that did not complete within its deadline.
var ErrTimeout = errors.New("generation timed out")

// UpstreamError is a non-success response from a generative provider.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.Status, e.Body)
}

// IsRateLimited reports whether the provider rejected the call for quota.
func (e *UpstreamError) IsRateLimited() bool {
	return e.Status == 429
}

// IsUpstream reports whether err came from a provider's non-success response.
func IsUpstream(err error) bool {
	var up *UpstreamError
	return errors.As(err, &up)
}

// classifyTransport maps client-side transport failures onto ErrTimeout
// where appropriate; anything else is returned wrapped.
func classifyTransport(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%s: %w", provider, ErrTimeout)
	}
	return fmt.Errorf("%s request failed: %w", provider, err)
}
