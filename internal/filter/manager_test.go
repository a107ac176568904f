package filter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records scheduled callbacks so tests decide when they fire.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every scheduled callback, including stopped ones, to mimic a
// timer that already fired when Stop was called.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.fn()
	}
}

func (c *fakeClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func newTestManager() (*Manager, *fakeClock, *[]Query) {
	clock := &fakeClock{}
	m := NewManager(DefaultDebounce, WithAfterFunc(clock.AfterFunc))
	var got []Query
	m.Subscribe(func(q Query) { got = append(got, q) })
	return m, clock, &got
}

func TestManager_BurstOfUpdatesEmitsOnce(t *testing.T) {
	m, clock, got := newTestManager()

	for _, loc := range []string{"G", "Gu", "Gul", "Gulshan"} {
		loc := loc
		m.Update(Patch{Location: &loc})
	}
	rng := "500000-1000000"
	m.Update(Patch{PriceRange: &rng})

	assert.Empty(t, *got, "nothing is emitted inside the quiet period")
	assert.Equal(t, 1, clock.live(), "only the last timer stays armed")

	clock.fireAll()

	require.Len(t, *got, 1)
	q := (*got)[0]
	assert.Equal(t, "Gulshan", *q.Location)
	assert.Equal(t, 500000.0, *q.MinPrice)
	assert.Equal(t, 1000000.0, *q.MaxPrice)
}

func TestManager_UsesConfiguredDelay(t *testing.T) {
	m, clock, _ := newTestManager()
	loc := "x"
	m.Update(Patch{Location: &loc})

	require.Len(t, clock.timers, 1)
	assert.Equal(t, 300*time.Millisecond, clock.timers[0].delay)
}

func TestManager_QueryIsRecomputedImmediately(t *testing.T) {
	m, _, got := newTestManager()
	rng := "2000000+"

	q := m.Update(Patch{PriceRange: &rng})

	assert.Equal(t, 2000000.0, *q.MinPrice)
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, q, m.Query())
	assert.Empty(t, *got)
}

func TestManager_Reset(t *testing.T) {
	m, clock, got := newTestManager()
	loc, typ := "Uttara", "condo"
	m.Update(Patch{Location: &loc, PropertyType: &typ})

	m.Reset()
	clock.fireAll()

	assert.Equal(t, DefaultCriteria(), m.Criteria())
	require.Len(t, *got, 1)
	assert.Nil(t, (*got)[0].Location)
	assert.Nil(t, (*got)[0].Type)
}

func TestManager_StopSuppressesPendingEmission(t *testing.T) {
	m, clock, got := newTestManager()
	loc := "x"
	m.Update(Patch{Location: &loc})

	m.Stop()
	clock.fireAll()
	m.Update(Patch{Location: &loc})
	m.Flush()

	assert.Empty(t, *got)
}

func TestManager_FlushEmitsNow(t *testing.T) {
	m, clock, got := newTestManager()
	loc := "Mirpur"
	m.Update(Patch{Location: &loc})

	m.Flush()
	clock.fireAll()

	require.Len(t, *got, 1, "the cancelled timer must not emit a second time")
	assert.Equal(t, "Mirpur", *(*got)[0].Location)
}

func TestManager_Unsubscribe(t *testing.T) {
	clock := &fakeClock{}
	m := NewManager(DefaultDebounce, WithAfterFunc(clock.AfterFunc))
	calls := 0
	unsubscribe := m.Subscribe(func(Query) { calls++ })

	unsubscribe()
	m.Flush()

	assert.Zero(t, calls)
}

func TestManager_RealTimer(t *testing.T) {
	m := NewManager(10 * time.Millisecond)
	done := make(chan Query, 4)
	m.Subscribe(func(q Query) { done <- q })

	for i := 1; i <= 3; i++ {
		beds := i
		m.Update(Patch{MinBedrooms: &beds})
	}

	select {
	case q := <-done:
		assert.Equal(t, 3, *q.Bedrooms)
	case <-time.After(time.Second):
		t.Fatal("debounced query was never emitted")
	}

	select {
	case <-done:
		t.Fatal("expected a single emission")
	case <-time.After(50 * time.Millisecond):
	}
}
