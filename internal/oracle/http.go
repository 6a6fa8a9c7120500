package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPOracle fetches quotes from a JSON price-feed endpoint. The endpoint is
// expected to respond to GET <endpoint>?feed=<id> with:
//
//	{"price": <mantissa>, "expo": <exponent>, "publish_time": <unix seconds>}
type HTTPOracle struct {
	client   HTTPDoer
	endpoint string
	apiKey   string
}

// NewHTTPOracle constructs a feed client. When client is nil a default client
// with a 5s timeout is used. The API key is optional and only added to request
// headers when supplied.
func NewHTTPOracle(client HTTPDoer, endpoint, apiKey string) *HTTPOracle {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPOracle{
		client:   client,
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
	}
}

// GetQuote fetches the current quote for the feed. Network and decode
// failures are returned as-is; staleness and sign checks are the caller's
// job via Normalize.
func (o *HTTPOracle) GetQuote(ctx context.Context, feed string) (Quote, error) {
	if o == nil || o.endpoint == "" {
		return Quote{}, fmt.Errorf("http oracle not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	values := url.Values{}
	values.Set("feed", feed)
	req.URL.RawQuery = values.Encode()
	if o.apiKey != "" {
		req.Header.Set("x-api-key", o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Quote{}, fmt.Errorf("http oracle: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Price       int64 `json:"price"`
		Expo        int32 `json:"expo"`
		PublishTime int64 `json:"publish_time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("http oracle: decode: %w", err)
	}

	return Quote{
		Mantissa:   payload.Price,
		Exponent:   payload.Expo,
		ObservedAt: time.Unix(payload.PublishTime, 0),
	}, nil
}
