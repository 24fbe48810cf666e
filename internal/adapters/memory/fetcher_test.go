package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/core"
)

func TestPutFetchDelete(t *testing.T) {
	t.Parallel()

	f := NewFetcher(zap.NewNop())
	ref := core.InboundRef{Bucket: "smtp", Key: "abc"}
	raw := []byte("From: a@b.c\r\n\r\nhello")

	f.Put(ref, raw)

	data, err := f.Fetch(context.Background(), ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, raw) {
		t.Errorf("data: got %q, want %q", data, raw)
	}

	f.Delete(ref)
	if _, err := f.Fetch(context.Background(), ref); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want %v", err, core.ErrNotFound)
	}
}

func TestFetch_Missing(t *testing.T) {
	t.Parallel()

	f := NewFetcher(zap.NewNop())
	_, err := f.Fetch(context.Background(), core.InboundRef{Key: "never-stored"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want %v", err, core.ErrNotFound)
	}
}
