package jackpot

import (
	"context"
	"sync"
)

type EventKind string

const (
	EventRound EventKind = "round"
	EventBet   EventKind = "bet"
)

// Event announces that a round row or one of its bets changed. Delivery is
// at-least-once overall: a slow subscriber may drop events, and the
// controller's poll tick bounds the resulting staleness.
type Event struct {
	Kind    EventKind
	RoundID string
}

// Feed fans change events out to subscribed controllers. It stands in for the
// store's realtime notification channel.
type Feed struct {
	mu       sync.Mutex
	watchers map[chan Event]struct{}
	closed   bool
}

func NewFeed() *Feed {
	return &Feed{watchers: map[chan Event]struct{}{}}
}

// Subscribe registers a watcher until ctx is done. The returned channel is
// buffered; events that would block are dropped.
func (f *Feed) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(ch)
		return ch
	}
	f.watchers[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.watchers, ch)
		f.mu.Unlock()
	}()
	return ch
}

func (f *Feed) Publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for ch := range f.watchers {
		select {
		case ch <- ev:
		default:
			metricFeedDroppedTotal.Add(1)
		}
	}
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.watchers = map[chan Event]struct{}{}
}
