package realtime

import (
	"context"
	"iter"
	"sync"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
)

// DefaultFeedBuffer is the number of change events a feed buffers by default.
const DefaultFeedBuffer = 64

// ChannelFeed is an in-process ports.ChangeFeed. Changes read from any source are
// published to it and consumed by a single Bridge.
type ChannelFeed struct {
	events    chan domain.ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelFeed creates a feed that buffers up to buffer events.
func NewChannelFeed(buffer int) *ChannelFeed {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelFeed{
		events: make(chan domain.ChangeEvent, buffer),
		done:   make(chan struct{}),
	}
}

// Publish hands ev to the feed. It blocks while the buffer is full.
func (f *ChannelFeed) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	select {
	case <-f.done:
		return domain.ErrFeedClosed
	default:
	}

	select {
	case f.events <- ev:
		return nil
	case <-f.done:
		return domain.ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the feed. Running iterators end after the buffered events.
func (f *ChannelFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// Events implements ports.ChangeFeed.
func (f *ChannelFeed) Events(ctx context.Context) iter.Seq[domain.ChangeEvent] {
	return func(yield func(domain.ChangeEvent) bool) {
		for {
			select {
			case ev := <-f.events:
				if !yield(ev) {
					return
				}
			case <-ctx.Done():
				return
			case <-f.done:
				f.drain(yield)
				return
			}
		}
	}
}

func (f *ChannelFeed) drain(yield func(domain.ChangeEvent) bool) {
	for {
		select {
		case ev := <-f.events:
			if !yield(ev) {
				return
			}
		default:
			return
		}
	}
}
