package drag

import (
	"sync"
	"time"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// View renders the drag feedback. Calls are made without the coordinator
// lock held, except ShowPlaceholder and ClearPlaceholder.
type View interface {
	ShowPlaceholder(Placeholder)
	ClearPlaceholder()
	Reload(entities.Snapshot)
}

type nopView struct{}

func (nopView) ShowPlaceholder(Placeholder) {}
func (nopView) ClearPlaceholder()           {}
func (nopView) Reload(entities.Snapshot)    {}

// Recorder is a View that remembers the last feedback it was given, for
// clients that poll the drag state.
type Recorder struct {
	mu          sync.Mutex
	placeholder *Placeholder
	reloads     int
	lastReload  time.Time
	totalBooks  int
}

type RecorderState struct {
	Placeholder *Placeholder `json:"placeholder"`
	Reloads     int          `json:"reloads"`
	LastReload  *time.Time   `json:"lastReload,omitempty"`
	TotalBooks  int          `json:"totalBooks"`
}

func (r *Recorder) ShowPlaceholder(p Placeholder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeholder = &p
}

func (r *Recorder) ClearPlaceholder() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeholder = nil
}

func (r *Recorder) Reload(snapshot entities.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads++
	r.lastReload = time.Now().UTC()
	r.totalBooks = snapshot.TotalBooks()
}

func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := RecorderState{Reloads: r.reloads, TotalBooks: r.totalBooks}
	if r.placeholder != nil {
		p := *r.placeholder
		state.Placeholder = &p
	}
	if !r.lastReload.IsZero() {
		last := r.lastReload
		state.LastReload = &last
	}
	return state
}
