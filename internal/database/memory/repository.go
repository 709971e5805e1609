// Package memory provides an in-process library repository for tests and
// for running without durable storage.
package memory

import (
	"sync"
)

// Repository keeps the last saved payload in memory. The Fail* fields inject
// errors into the next calls.
type Repository struct {
	mu   sync.Mutex
	data []byte

	FailLoad  error
	FailSave  error
	FailClear error

	Saves int
}

func NewRepository() *Repository {
	return &Repository{}
}

// NewRepositoryWith returns a repository that already holds data.
func NewRepositoryWith(data []byte) *Repository {
	r := &Repository{}
	r.data = append([]byte(nil), data...)
	return r
}

func (r *Repository) Load() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailLoad != nil {
		return nil, r.FailLoad
	}
	if r.data == nil {
		return nil, nil
	}
	return append([]byte(nil), r.data...), nil
}

func (r *Repository) Save(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	r.data = append([]byte(nil), data...)
	r.Saves++
	return nil
}

func (r *Repository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailClear != nil {
		return r.FailClear
	}
	r.data = nil
	return nil
}

// SetSaveError makes every following Save fail with err; nil restores saving.
func (r *Repository) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FailSave = err
}

// Data returns a copy of the stored payload, nil when nothing is stored.
func (r *Repository) Data() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil
	}
	return append([]byte(nil), r.data...)
}

func (r *Repository) SaveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Saves
}
