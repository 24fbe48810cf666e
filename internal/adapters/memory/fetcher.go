package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/core"
)

// Fetcher is an in-memory implementation of the MailFetcher
// interface. The SMTP trigger and the CLI stage message bytes here so
// the pipeline reads them the same way it reads a bucket.
type Fetcher struct {
	messages map[string][]byte
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewFetcher creates a new in-memory fetcher
func NewFetcher(logger *zap.Logger) *Fetcher {
	return &Fetcher{
		messages: make(map[string][]byte),
		logger:   logger,
	}
}

// Put stores the raw bytes under the reference
func (f *Fetcher) Put(ref core.InboundRef, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages[ref.String()] = data
}

// Fetch returns the stored bytes for ref
func (f *Fetcher) Fetch(ctx context.Context, ref core.InboundRef) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, ok := f.messages[ref.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, ref.String())
	}

	f.logger.Debug("Fetched staged message",
		zap.String("ref", ref.String()),
		zap.Int("size", len(data)))

	return data, nil
}

// Delete removes the stored bytes for ref
func (f *Fetcher) Delete(ref core.InboundRef) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.messages, ref.String())
}

// Len returns the number of staged messages
func (f *Fetcher) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.messages)
}
