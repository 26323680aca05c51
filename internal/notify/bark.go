package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const barkIconURL = "https://cdn-icons-png.flaticon.com/512/741/741407.png"

// Bark pushes time-critical alerts to the iOS Bark app through its
// device-scoped GET endpoint.
type Bark struct {
	baseURL string
	client  *http.Client
}

// NewBark builds the Bark channel. baseURL is the device endpoint
// including the device key, without a trailing slash.
func NewBark(baseURL string, client *http.Client) (*Bark, error) {
	if baseURL == "" {
		return nil, errors.New("bark base url is empty")
	}
	return &Bark{baseURL: baseURL, client: client}, nil
}

func (b *Bark) Name() string { return "bark" }

func (b *Bark) Send(ctx context.Context, content, confirmURL string) error {
	// confirmURL is already URL-encoded and rides the url query
	// parameter verbatim, so Bark opens the confirm page on tap.
	apiURL := fmt.Sprintf(
		"%s/%s/%s?group=MoveCar&level=critical&call=1&sound=minuet&icon=%s&url=%s",
		b.baseURL,
		url.PathEscape("挪车请求"),
		url.PathEscape(content),
		barkIconURL,
		confirmURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("bark: build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bark: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bark: api returned status %d", resp.StatusCode)
	}
	return nil
}
