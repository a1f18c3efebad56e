package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FetchSpanName is the span the query executor opens around every fetch.
const FetchSpanName = "query.fetch"

// DefaultJournalSize is the number of fetches a Bridge remembers.
const DefaultJournalSize = 64

// FetchRecord summarizes one finished fetch span.
type FetchRecord struct {
	Key        string
	Generation int64
	Background bool
	Attempts   int64
	Discarded  bool
	Err        string
	Duration   time.Duration
	EndedAt    time.Time
}

// Bridge implements sdktrace.SpanProcessor and keeps a journal of the most
// recent fetch spans for diagnostics.
type Bridge struct {
	mu      sync.Mutex
	records []FetchRecord
	next    int
	full    bool
	total   uint64
	failed  uint64
}

// NewBridge returns a Bridge remembering up to size fetches.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Bridge{records: make([]FetchRecord, size)}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd records finished fetch spans.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if s.Name() != FetchSpanName {
		return
	}

	rec := FetchRecord{
		Duration: s.EndTime().Sub(s.StartTime()),
		EndedAt:  s.EndTime(),
		Attempts: 1,
	}
	for _, kv := range s.Attributes() {
		switch kv.Key {
		case "cache.key":
			rec.Key = kv.Value.AsString()
		case "cache.generation":
			rec.Generation = kv.Value.AsInt64()
		case "cache.background":
			rec.Background = kv.Value.AsBool()
		case "cache.discarded":
			rec.Discarded = kv.Value.AsBool()
		case "retry.attempt":
			if kv.Value.Type() == attribute.INT64 {
				rec.Attempts = kv.Value.AsInt64() + 1
			}
		}
	}
	if s.Status().Code == codes.Error {
		rec.Err = s.Status().Description
		if rec.Err == "" {
			rec.Err = "fetch failed"
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[b.next] = rec
	b.next = (b.next + 1) % len(b.records)
	if b.next == 0 {
		b.full = true
	}
	b.total++
	if rec.Err != "" {
		b.failed++
	}
}

// Recent returns the remembered fetches, oldest first.
func (b *Bridge) Recent() []FetchRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		out := make([]FetchRecord, b.next)
		copy(out, b.records[:b.next])
		return out
	}
	out := make([]FetchRecord, 0, len(b.records))
	out = append(out, b.records[b.next:]...)
	return append(out, b.records[:b.next]...)
}

// Totals returns the number of fetch spans seen and how many of them failed.
func (b *Bridge) Totals() (total, failed uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total, b.failed
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
