package browse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/hearth/api/internal/logger"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(Deps{Lister: &recordingLister{}, Log: logger.Nop(), AfterFunc: (&manualClock{}).AfterFunc}, ttl, logger.Nop())
	st.now = func() time.Time { return now }
	return st, &now
}

func TestStore_CreateGetDelete(t *testing.T) {
	st, _ := newTestStore(time.Hour)

	sess := st.Create()
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, st.Delete(sess.ID))
	assert.Equal(t, 0, st.Len())

	_, err = st.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(sess.ID), ErrSessionNotFound)
}

func TestStore_SweepExpiresIdleSessions(t *testing.T) {
	st, now := newTestStore(30 * time.Minute)

	idle := st.Create()
	*now = now.Add(20 * time.Minute)
	active := st.Create()
	*now = now.Add(15 * time.Minute)

	removed := st.Sweep()

	assert.Equal(t, 1, removed)
	_, err := st.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(active.ID)
	assert.NoError(t, err)
}

func TestStore_GetRefreshesActivity(t *testing.T) {
	st, now := newTestStore(30 * time.Minute)
	sess := st.Create()

	*now = now.Add(25 * time.Minute)
	_, err := st.Get(sess.ID)
	require.NoError(t, err)
	*now = now.Add(25 * time.Minute)

	assert.Zero(t, st.Sweep())
}

func TestStore_GetNeverReturnsSweptSession(t *testing.T) {
	for i := 0; i < 200; i++ {
		st, now := newTestStore(30 * time.Minute)
		sess := st.Create()
		*now = now.Add(31 * time.Minute)

		var wg sync.WaitGroup
		var got *Session
		var getErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, getErr = st.Get(sess.ID)
		}()
		go func() {
			defer wg.Done()
			st.Sweep()
		}()
		wg.Wait()

		if getErr != nil {
			assert.ErrorIs(t, getErr, ErrSessionNotFound)
			assert.Error(t, sess.ctx.Err())
			continue
		}
		require.Same(t, sess, got)
		require.NoError(t, got.ctx.Err(), "session handed out by Get was closed")
		assert.Equal(t, 1, st.Len())
	}
}

func TestStore_RunClosesAllOnShutdown(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	st.Create()
	st.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Zero(t, st.Len())
}
