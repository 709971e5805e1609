// Package drag turns a pointer drag gesture into at most one committed column
// move. The coordinator keeps only presentation state: the store stays the
// source of truth and the view is reloaded from it after every gesture.
package drag

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

type State string

const (
	StateIdle       State = "idle"
	StateDragging   State = "dragging"
	StateCommitting State = "committing"
)

// ErrInvalidTransition is returned when an event does not fit the current state.
var ErrInvalidTransition = errors.New("invalid drag transition")

// Mover is the part of the library store the coordinator needs.
type Mover interface {
	GetBook(id string) (entities.Book, error)
	MoveBook(id string, from, to entities.ColumnID) (entities.Book, error)
	Snapshot() entities.Snapshot
}

// Placeholder marks where the dragged book would land in a column.
type Placeholder struct {
	Column entities.ColumnID `json:"column"`
	Index  int               `json:"index"`
}

// Gesture is the in-flight drag.
type Gesture struct {
	BookID      string            `json:"bookId"`
	Source      entities.ColumnID `json:"source"`
	Placeholder Placeholder       `json:"placeholder"`
}

// Outcome reports what a drop did. Committed is true only when the store
// accepted the move; Err holds the store failure otherwise.
type Outcome struct {
	Committed bool           `json:"committed"`
	Book      *entities.Book `json:"book,omitempty"`
	Err       error          `json:"-"`
}

type Coordinator struct {
	mu      sync.Mutex
	store   Mover
	view    View
	logger  *zap.Logger
	state   State
	gesture *Gesture
}

type Option func(*Coordinator)

func WithView(view View) Option {
	return func(c *Coordinator) {
		if view != nil {
			c.view = view
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCoordinator(store Mover, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		view:   nopView{},
		logger: zap.NewNop(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns a copy of the in-flight gesture.
func (c *Coordinator) Current() (Gesture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gesture == nil {
		return Gesture{}, false
	}
	return *c.gesture, true
}

// Start picks up bookID from source. index is the book's current position,
// where the placeholder is first shown.
func (c *Coordinator) Start(bookID string, source entities.ColumnID, index int) (Placeholder, error) {
	if !source.Valid() {
		return Placeholder{}, fmt.Errorf("%w: %q", library.ErrUnknownColumn, source)
	}
	book, err := c.store.GetBook(bookID)
	if err != nil {
		return Placeholder{}, err
	}
	if book.Status != source {
		return Placeholder{}, fmt.Errorf("%w: book %q is not in column %q", library.ErrNotFound, bookID, source)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return Placeholder{}, fmt.Errorf("%w: start while %s", ErrInvalidTransition, c.state)
	}

	if index < 0 {
		index = 0
	}
	placeholder := Placeholder{Column: source, Index: index}
	c.gesture = &Gesture{BookID: bookID, Source: source, Placeholder: placeholder}
	c.state = StateDragging
	c.view.ShowPlaceholder(placeholder)

	c.logger.Debug("drag started", zap.String("book_id", bookID), zap.String("source", string(source)))
	return placeholder, nil
}

// Over moves the placeholder to the slot under pointerY in column, given the
// geometry of the column's book elements in display order.
func (c *Coordinator) Over(column entities.ColumnID, elements []Element, pointerY float64) (Placeholder, error) {
	if !column.Valid() {
		return Placeholder{}, fmt.Errorf("%w: %q", library.ErrUnknownColumn, column)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging {
		return Placeholder{}, fmt.Errorf("%w: over while %s", ErrInvalidTransition, c.state)
	}

	marked := make([]Element, len(elements))
	for i, el := range elements {
		marked[i] = el
		if el.BookID == c.gesture.BookID {
			marked[i].Dragging = true
		}
	}

	placeholder := Placeholder{Column: column, Index: InsertionIndex(marked, pointerY)}
	c.gesture.Placeholder = placeholder
	c.view.ShowPlaceholder(placeholder)
	return placeholder, nil
}

// Drop ends the gesture over target. A drop on another column commits a
// MoveBook; a drop on the source column only reorders visually and is not
// persisted and an unknown target aborts the gesture. Either way the view is
// reloaded from the store.
func (c *Coordinator) Drop(target entities.ColumnID) (Outcome, error) {
	c.mu.Lock()
	if c.state != StateDragging {
		state := c.state
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: drop while %s", ErrInvalidTransition, state)
	}
	current := c.gesture
	gesture := *current

	if target == gesture.Source || !target.Valid() {
		c.finishLocked()
		c.mu.Unlock()
		c.reload()
		if !target.Valid() {
			return Outcome{}, fmt.Errorf("%w: %q", library.ErrUnknownColumn, target)
		}
		return Outcome{}, nil
	}

	c.state = StateCommitting
	c.mu.Unlock()

	var outcome Outcome
	moved, err := c.store.MoveBook(gesture.BookID, gesture.Source, target)
	if err != nil {
		c.logger.Warn("drop not committed",
			zap.String("book_id", gesture.BookID),
			zap.String("from", string(gesture.Source)),
			zap.String("to", string(target)),
			zap.Error(err))
		outcome.Err = err
	} else {
		outcome.Committed = true
		outcome.Book = &moved
	}

	c.mu.Lock()
	// Cancel may have ended this gesture while the move was in flight.
	if c.gesture == current {
		c.finishLocked()
	}
	c.mu.Unlock()
	c.reload()
	return outcome, nil
}

// Cancel aborts the gesture from any state without touching the store. It
// reports whether a gesture was in progress. A move already being committed
// still completes.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	active := c.state != StateIdle
	if active {
		c.finishLocked()
	}
	c.mu.Unlock()

	if active {
		c.reload()
	}
	return active
}

func (c *Coordinator) finishLocked() {
	c.gesture = nil
	c.state = StateIdle
	c.view.ClearPlaceholder()
}

// reload reconciles the view with the persisted library.
func (c *Coordinator) reload() {
	c.view.Reload(c.store.Snapshot())
}
