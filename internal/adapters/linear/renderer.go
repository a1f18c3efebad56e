// Package linear prints query results as plain, line-oriented output for
// terminals and CI logs.
package linear

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/metrics"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/realtime"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/ui/output"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/ui/style"
	"github.com/muesli/termenv"
	"go.trai.ch/zerr"
)

// Result is the rendered view of one query outcome.
type Result struct {
	Key       string
	State     domain.QueryState
	Data      any
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

// Renderer writes status lines to stderr and query data as JSON to stdout.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output
	now    func() time.Time

	mu sync.Mutex
}

// NewRenderer creates a new Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr, output.ProfileANSI()),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for ages. Used for testing.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// OnResult prints the state of res and, when it carries data, the data itself.
func (r *Renderer) OnResult(res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := r.output.String(fmt.Sprintf("[%s]", res.Key)).Faint().String()
	line := fmt.Sprintf("%s %s %s", prefix, r.paint(style.ForState(res.State)), res.State)
	if res.Loading {
		line += " (loading)"
	}
	if !res.UpdatedAt.IsZero() {
		line += fmt.Sprintf(" (updated %s ago)", r.now().Sub(res.UpdatedAt).Round(time.Millisecond))
	}
	if res.Err != nil {
		line += ": " + res.Err.Error()
	}
	_, _ = fmt.Fprintln(r.stderr, line)

	if res.Data == nil {
		return nil
	}
	data, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to render query data"), "key", res.Key)
	}
	_, _ = fmt.Fprintln(r.stdout, string(data))
	return nil
}

// OnStats prints the cache counters followed by the most recent fetches.
func (r *Renderer) OnStats(s metrics.Stats, fetches []telemetry.FetchRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr,
		"cache: %.0f hits, %.0f stale, %.0f misses (hit ratio %.1f%%), %.0f expired, %.0f evicted\n",
		s.Hits, s.StaleServed, s.Misses, s.HitRatio()*100, s.Expirations, s.Evictions)
	_, _ = fmt.Fprintf(r.stderr,
		"fetch: %.0f fetches, %.0f failed, %.0f retries, %.0f discarded\n",
		s.Fetches, s.FetchErrors, s.Retries, s.Discarded)

	for _, rec := range fetches {
		b := style.Success
		switch {
		case rec.Err != "":
			b = style.Failure
		case rec.Discarded:
			b = style.Discarded
		}
		symbol := r.paint(b)
		kind := "cold"
		if rec.Background {
			kind = "background"
		}
		line := fmt.Sprintf("  %s %s gen=%d attempts=%d %s in %v",
			symbol, rec.Key, rec.Generation, rec.Attempts, kind, rec.Duration.Round(time.Millisecond))
		if rec.Err != "" {
			line += ": " + rec.Err
		}
		_, _ = fmt.Fprintln(r.stderr, line)
	}
}

// OnInvalidations prints what the realtime bridge did.
func (r *Renderer) OnInvalidations(s realtime.BridgeStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "realtime: %d changes received, %d entries invalidated\n",
		s.Received, s.Invalidated)
}

// OnUpdated prints a confirmation for a stored product.
func (r *Renderer) OnUpdated(p domain.Product) error {
	r.mu.Lock()
	_, _ = fmt.Fprintf(r.stderr, "%s updated product %s\n", r.paint(style.Success), p.ID)
	r.mu.Unlock()

	return r.OnResult(Result{Key: domain.ProductKey(p.ID), State: domain.StateFresh, Data: p})
}

func (r *Renderer) paint(b style.Badge) string {
	icon := r.output.String(b.Icon)
	if b.Faint() {
		return icon.Faint().String()
	}
	return icon.Foreground(r.output.Color(string(b.Color))).String()
}
