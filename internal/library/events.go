package library

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

type EventType string

const (
	EventBookAdded       EventType = "bookAdded"
	EventBookMoved       EventType = "bookMoved"
	EventBookUpdated     EventType = "bookUpdated"
	EventBookDeleted     EventType = "bookDeleted"
	EventLibraryReplaced EventType = "libraryReplaced"
)

// Event describes a committed change to the library.
type Event struct {
	Type   EventType         `json:"type"`
	BookID string            `json:"bookId,omitempty"`
	Book   *entities.Book    `json:"book,omitempty"`
	From   entities.ColumnID `json:"from,omitempty"`
	To     entities.ColumnID `json:"to,omitempty"`
	Fields []string          `json:"fields,omitempty"` // changed fields for bookUpdated
	Reason string            `json:"reason,omitempty"` // import, reset or clear for libraryReplaced
	At     time.Time         `json:"at"`
}

const defaultEventBuffer = 64

type eventBus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	logger *zap.Logger
}

func newEventBus(logger *zap.Logger) *eventBus {
	return &eventBus{
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

func (b *eventBus) subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish never blocks; a subscriber whose buffer is full misses the event.
func (b *eventBus) publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping library event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("type", string(event.Type)),
				zap.String("book_id", event.BookID))
		}
	}
}
