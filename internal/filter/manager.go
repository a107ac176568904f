package filter

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last update before a query is emitted.
const DefaultDebounce = 300 * time.Millisecond

// Timer is the subset of *time.Timer the manager needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through an adapter.
type AfterFunc func(d time.Duration, f func()) Timer

// Subscriber receives each debounced query.
type Subscriber func(Query)

// Option configures a Manager.
type Option func(*Manager)

// WithAfterFunc replaces the timer source, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(m *Manager) {
		m.after = fn
	}
}

// Manager owns one user's filter criteria. Every Update recomputes the
// normalized query immediately and re-arms a debounce timer; subscribers only
// see the query once updates have been quiet for the debounce delay.
type Manager struct {
	mu       sync.Mutex
	criteria Criteria
	query    Query
	delay    time.Duration
	after    AfterFunc
	timer    Timer
	seq      uint64
	nextSub  int
	subs     map[int]Subscriber
	stopped  bool
}

// NewManager creates a Manager with the given debounce delay.
func NewManager(delay time.Duration, opts ...Option) *Manager {
	m := &Manager{
		criteria: DefaultCriteria(),
		delay:    delay,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		subs: make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.query = Normalize(m.criteria)
	return m
}

// Subscribe registers fn for debounced queries and returns a function that removes it.
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Criteria returns the current raw criteria.
func (m *Manager) Criteria() Criteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.criteria
}

// Query returns the current normalized query, which may not have been emitted yet.
func (m *Manager) Query() Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// Update applies a partial update and schedules emission of the new query.
func (m *Manager) Update(p Patch) Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.criteria = m.criteria.Apply(p)
	m.query = Normalize(m.criteria)
	m.schedule()
	return m.query
}

// Reset restores the default criteria and schedules emission.
func (m *Manager) Reset() Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.criteria = DefaultCriteria()
	m.query = Normalize(m.criteria)
	m.schedule()
	return m.query
}

// Flush emits the current query now, cancelling any pending emission.
func (m *Manager) Flush() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.seq++
	q, subs := m.query, m.subscribers()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(q)
	}
}

// Stop cancels any pending emission. Later updates still change the
// criteria but are never emitted.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	m.seq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// schedule must be called with mu held.
func (m *Manager) schedule() {
	if m.stopped {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.seq++
	seq := m.seq
	m.timer = m.after(m.delay, func() { m.fire(seq) })
}

// fire emits the query if no later update or stop has happened since seq was armed.
func (m *Manager) fire(seq uint64) {
	m.mu.Lock()
	if seq != m.seq || m.stopped {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	q, subs := m.query, m.subscribers()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(q)
	}
}

// subscribers must be called with mu held.
func (m *Manager) subscribers() []Subscriber {
	out := make([]Subscriber, 0, len(m.subs))
	for i := 0; i < m.nextSub; i++ {
		if fn, ok := m.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
