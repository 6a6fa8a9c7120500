package oracle

import (
	"context"
	"fmt"
	"sync"
)

// ManualOracle serves quotes set by hand. Used in tests and as the
// development fallback when no feed endpoint is configured.
type ManualOracle struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewManualOracle constructs an empty manual oracle.
func NewManualOracle() *ManualOracle {
	return &ManualOracle{quotes: make(map[string]Quote)}
}

// Set stores the quote returned for the feed.
func (o *ManualOracle) Set(feed string, q Quote) {
	o.mu.Lock()
	o.quotes[feed] = q
	o.mu.Unlock()
}

// GetQuote returns the stored quote for the feed.
func (o *ManualOracle) GetQuote(_ context.Context, feed string) (Quote, error) {
	o.mu.RLock()
	q, ok := o.quotes[feed]
	o.mu.RUnlock()
	if !ok {
		return Quote{}, fmt.Errorf("manual oracle: quote for %s not found", feed)
	}
	return q, nil
}
