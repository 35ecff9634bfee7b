package app

import (
	"sync"
	"time"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// SubmissionEvent is the live-feed view of a completed submission.
type SubmissionEvent struct {
	ID            string          `json:"id"`
	Strategy      domain.Strategy `json:"strategy"`
	MilitaryScore int             `json:"military_score"`
	CivilianScore int             `json:"civilian_score"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Feed is an in-process broadcast hub for submission events, consumed by the
// admin websocket dashboard.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan SubmissionEvent]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan SubmissionEvent]struct{})}
}

// Subscribe returns a channel receiving future submission events. The caller
// must invoke the returned cancel function to avoid leaks.
func (f *Feed) Subscribe() (<-chan SubmissionEvent, func()) {
	ch := make(chan SubmissionEvent, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the event out to all subscribers. A slow subscriber loses its
// oldest buffered event rather than blocking the broadcast.
func (f *Feed) Publish(event SubmissionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
