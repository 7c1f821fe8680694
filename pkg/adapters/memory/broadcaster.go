package memory

import (
	"context"
	"sync"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// Broadcaster is a ports.ChangeNotifier that fans change events out to
// in-process subscribers. Slow subscribers lose events rather than block
// the editor.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	buffer int
}

type subscriber struct {
	quizID string
	ch     chan domain.ChangeEvent
}

// NewBroadcaster creates a broadcaster whose subscriber channels hold
// buffer events.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broadcaster{subs: make(map[int]*subscriber), buffer: buffer}
}

// Subscribe returns a channel of events for quizID ("" means every quiz)
// and a cancel func that closes it.
func (b *Broadcaster) Subscribe(quizID string) (<-chan domain.ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{quizID: quizID, ch: make(chan domain.ChangeEvent, b.buffer)}
	b.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(sub.ch)
		})
	}
}

// Notify implements ports.ChangeNotifier.
func (b *Broadcaster) Notify(_ context.Context, ev domain.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.quizID != "" && sub.quizID != ev.QuizID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribers reports the number of open subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
