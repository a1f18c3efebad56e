package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"iter"
	"strings"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"go.trai.ch/zerr"
)

// payload is a postgres_changes message as delivered by Supabase Realtime.
type payload struct {
	Schema    string         `json:"schema"`
	Table     string         `json:"table"`
	EventType string         `json:"eventType"`
	New       map[string]any `json:"new"`
	Old       map[string]any `json:"old"`
}

// DecodeEvent parses one postgres_changes message.
func DecodeEvent(line []byte) (domain.ChangeEvent, error) {
	var p payload
	if err := json.Unmarshal(line, &p); err != nil {
		return domain.ChangeEvent{}, zerr.Wrap(err, domain.ErrDecodeFailed.Error())
	}
	if p.Table == "" {
		return domain.ChangeEvent{}, zerr.Wrap(domain.ErrValidation, "change event has no table")
	}

	ev := domain.ChangeEvent{
		Table:  p.Table,
		Op:     domain.ChangeOp(strings.ToUpper(p.EventType)),
		Record: p.New,
	}
	if ev.Op == domain.OpDelete || len(ev.Record) == 0 {
		ev.Record = p.Old
	}
	return ev, nil
}

// ReaderFeed is a ports.ChangeFeed reading one JSON message per line, such as a
// recorded Realtime session. Lines that cannot be decoded are logged and skipped.
type ReaderFeed struct {
	r      io.Reader
	logger ports.Logger
}

// NewReaderFeed creates a feed over r.
func NewReaderFeed(r io.Reader, logger ports.Logger) *ReaderFeed {
	return &ReaderFeed{r: r, logger: logger}
}

// Events implements ports.ChangeFeed. The sequence can be iterated once.
func (f *ReaderFeed) Events(ctx context.Context) iter.Seq[domain.ChangeEvent] {
	return func(yield func(domain.ChangeEvent) bool) {
		scanner := bufio.NewScanner(f.r)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			ev, err := DecodeEvent([]byte(line))
			if err != nil {
				f.logger.Error(err)
				continue
			}
			if !yield(ev) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			f.logger.Error(zerr.Wrap(err, "change feed read failed"))
		}
	}
}
