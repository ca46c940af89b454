package draft

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lojasmm/chatmsg/message"
)

var ErrNotFound = errors.New("draft not found")

// Manager holds in-progress messages keyed by draft id and serializes the
// calls made on each of them. Different drafts are edited in parallel.
type Manager struct {
	mu     sync.Mutex
	drafts map[string]*draft
	now    func() time.Time
}

type draft struct {
	mu       sync.Mutex
	msg      *message.Message
	lastUsed time.Time
	closed   bool
}

func NewManager() *Manager {
	return &Manager{
		drafts: make(map[string]*draft),
		now:    time.Now,
	}
}

// Create registers a new draft holding m and returns its id.
func (m *Manager) Create(msg *message.Message) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.drafts[id] = &draft{msg: msg, lastUsed: m.now()}
	m.mu.Unlock()
	return id
}

// Update runs fn on a copy of the draft while holding the draft lock and
// keeps the copy only if fn succeeds, so a failed batch leaves the draft as
// it was.
func (m *Manager) Update(id string, fn func(*message.Message) error) (message.Snapshot, error) {
	d, err := m.acquire(id)
	if err != nil {
		return message.Snapshot{}, err
	}
	defer d.mu.Unlock()

	work := message.Restore(d.msg.Snapshot())
	if err := fn(work); err != nil {
		return message.Snapshot{}, err
	}
	d.msg = work
	return work.Snapshot(), nil
}

// Snapshot returns the current state of a draft.
func (m *Manager) Snapshot(id string) (message.Snapshot, error) {
	d, err := m.acquire(id)
	if err != nil {
		return message.Snapshot{}, err
	}
	defer d.mu.Unlock()
	return d.msg.Snapshot(), nil
}

// Finalize removes the draft and returns its final state. Calls waiting on
// the draft fail with ErrNotFound once it is finalized.
func (m *Manager) Finalize(id string) (message.Snapshot, error) {
	d, err := m.take(id)
	if err != nil {
		return message.Snapshot{}, err
	}
	defer d.mu.Unlock()
	return d.msg.Snapshot(), nil
}

// Discard removes the draft without returning it.
func (m *Manager) Discard(id string) error {
	d, err := m.take(id)
	if err != nil {
		return err
	}
	d.mu.Unlock()
	return nil
}

// Len returns the number of live drafts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

// Cleanup removes drafts not used within maxAge and returns how many were
// removed. Drafts being edited are skipped.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, d := range m.drafts {
		if !d.mu.TryLock() {
			continue
		}
		if now.Sub(d.lastUsed) > maxAge {
			d.closed = true
			delete(m.drafts, id)
			removed++
		}
		d.mu.Unlock()
	}
	return removed
}

// acquire returns the locked draft.
func (m *Manager) acquire(id string) (*draft, error) {
	m.mu.Lock()
	d, ok := m.drafts[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrNotFound
	}
	d.lastUsed = m.now()
	return d, nil
}

// take unregisters the draft and returns it locked and closed.
func (m *Manager) take(id string) (*draft, error) {
	m.mu.Lock()
	d, ok := m.drafts[id]
	if ok {
		delete(m.drafts, id)
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrNotFound
	}
	d.closed = true
	return d, nil
}
