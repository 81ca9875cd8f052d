package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrNotFound = errors.New("session not found")

const (
	DefaultTTL  = 30 * time.Minute
	DefaultSize = 1024
)

type entry struct {
	mu      sync.Mutex
	sess    Session
	changed chan struct{}
	gone    chan struct{}
	once    sync.Once
}

func (e *entry) snapshot() (Session, <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), e.changed
}

// notifyLocked wakes every watcher. Callers hold e.mu.
func (e *entry) notifyLocked() {
	close(e.changed)
	e.changed = make(chan struct{})
}

func (e *entry) close() {
	e.once.Do(func() { close(e.gone) })
}

// Store holds sessions in an expiring LRU. A session expires after ttl
// without updates, or earlier when more than size sessions exist.
type Store struct {
	cache *expirable.LRU[string, *entry]
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{ttl: ttl, now: time.Now}
	s.cache = expirable.NewLRU[string, *entry](size, func(_ string, e *entry) { e.close() }, ttl)
	return s
}

// Create stores init under a fresh id and returns the stored copy.
func (s *Store) Create(init Session) Session {
	init = init.Clone()
	init.ID = uuid.NewString()
	init.UpdatedAt = s.now().UTC()
	e := &entry{sess: init, changed: make(chan struct{}), gone: make(chan struct{})}
	s.cache.Add(init.ID, e)
	return init.Clone()
}

func (s *Store) Get(id string) (Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	snap, _ := e.snapshot()
	return snap, nil
}

// Update applies fn to a copy of the session and commits it when fn returns
// nil. Updates to one session are serialized; watchers see every commit.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.sess.Clone()
	if err := fn(&next); err != nil {
		return Session{}, err
	}
	next.ID = e.sess.ID
	next.UpdatedAt = s.now().UTC()
	e.sess = next
	// Re-adding refreshes the idle TTL.
	s.cache.Add(id, e)
	e.notifyLocked()
	return next.Clone(), nil
}

func (s *Store) Delete(id string) bool {
	return s.cache.Remove(strings.TrimSpace(id))
}

func (s *Store) Len() int {
	return s.cache.Len()
}

// Watch streams snapshots of the session: the current one first, then one
// per commit. A slow reader only sees the latest state. The channel closes
// when ctx is done or the session expires.
func (s *Store) Watch(ctx context.Context, id string) (<-chan Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	out := make(chan Session, 1)
	go func() {
		defer close(out)
		for {
			snap, changed := e.snapshot()
			pushLatest(out, snap)
			select {
			case <-changed:
			case <-e.gone:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Store) lookup(id string) (*entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	e, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// pushLatest replaces any unread snapshot with v.
func pushLatest(out chan Session, v Session) {
	select {
	case out <- v:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- v:
	default:
	}
}
