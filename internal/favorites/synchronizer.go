// Package favorites keeps a user's favorite property set in step with the
// remote store. Local state only changes after the remote call succeeds.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// LoginRequiredMessage is shown when an anonymous user tries to toggle a favorite.
const LoginRequiredMessage = "Please login to add favorites"

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrLoadFailed    = errors.New("failed to fetch favorites")
	ErrAddFailed     = errors.New("failed to add favorite")
	ErrRemoveFailed  = errors.New("failed to remove favorite")
	ErrSessionChange = errors.New("session changed while the request was in flight")
)

// Status is the synchronizer's session state.
type Status int

const (
	StatusLoggedOut Status = iota
	StatusLoading
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "logged_out"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Remote is the favorite store of one authenticated user.
type Remote interface {
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, propertyID int64) error
	RemoveFavorite(ctx context.Context, propertyID int64) error
}

// Synchronizer holds the favorite set for one session.
//
// Overlapping toggles on the same id are not coalesced; callers must not
// issue them.
type Synchronizer struct {
	mu        sync.Mutex
	log       *logger.Logger
	remote    Remote
	status    Status
	favorites []models.Favorite
	ids       map[int64]struct{}
	// epoch changes on every login and logout so that remote results from a
	// previous session are never applied.
	epoch uint64
}

// New creates a logged-out Synchronizer.
func New(log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		log: log,
		ids: make(map[int64]struct{}),
	}
}

// Login binds the synchronizer to a user's remote store and loads the full set.
// On load failure the synchronizer is still ready, with an empty set.
func (s *Synchronizer) Login(ctx context.Context, remote Remote) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.remote = remote
	s.status = StatusLoading
	s.favorites = nil
	s.ids = make(map[int64]struct{})
	s.mu.Unlock()

	err := s.load(ctx, remote, epoch)

	s.mu.Lock()
	if s.epoch == epoch {
		s.status = StatusReady
	}
	s.mu.Unlock()
	return err
}

// Logout clears the set and forgets the remote store.
func (s *Synchronizer) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.remote = nil
	s.status = StatusLoggedOut
	s.favorites = nil
	s.ids = make(map[int64]struct{})
}

// Reload replaces the local set with the remote one.
func (s *Synchronizer) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusLoggedOut {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	remote, epoch := s.remote, s.epoch
	s.mu.Unlock()

	return s.load(ctx, remote, epoch)
}

func (s *Synchronizer) load(ctx context.Context, remote Remote, epoch uint64) error {
	favorites, err := remote.ListFavorites(ctx)
	if err != nil {
		s.log.Error("Failed to load favorites", err, nil)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	ids := make(map[int64]struct{}, len(favorites))
	for _, f := range favorites {
		ids[f.PropertyID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrSessionChange
	}
	s.favorites = favorites
	s.ids = ids

	s.log.Debug("Favorites loaded", map[string]interface{}{
		"count": len(favorites),
	})
	return nil
}

// Toggle flips membership of propertyID and reports whether it is now a favorite.
//
// A member is removed remotely and then locally. A non-member is added
// remotely and then the whole set is reloaded. On any remote error local
// state is left as it was and the error is returned.
func (s *Synchronizer) Toggle(ctx context.Context, propertyID int64) (bool, error) {
	s.mu.Lock()
	if s.status == StatusLoggedOut {
		s.mu.Unlock()
		return false, ErrNotLoggedIn
	}
	remote, epoch := s.remote, s.epoch
	_, member := s.ids[propertyID]
	s.mu.Unlock()

	if member {
		if err := remote.RemoveFavorite(ctx, propertyID); err != nil {
			s.log.Warn("Remote favorite removal failed", map[string]interface{}{
				"property_id": propertyID,
				"error":       err.Error(),
			})
			return true, fmt.Errorf("%w: %w", ErrRemoveFailed, err)
		}

		s.mu.Lock()
		if s.epoch == epoch {
			delete(s.ids, propertyID)
			kept := s.favorites[:0:0]
			for _, f := range s.favorites {
				if f.PropertyID != propertyID {
					kept = append(kept, f)
				}
			}
			s.favorites = kept
		}
		s.mu.Unlock()
		return false, nil
	}

	if err := remote.AddFavorite(ctx, propertyID); err != nil {
		s.log.Warn("Remote favorite add failed", map[string]interface{}{
			"property_id": propertyID,
			"error":       err.Error(),
		})
		return false, fmt.Errorf("%w: %w", ErrAddFailed, err)
	}

	// The add succeeded; a failed reload only delays the local view.
	if err := s.load(ctx, remote, epoch); err != nil {
		s.log.Warn("Favorite added but reload failed", map[string]interface{}{
			"property_id": propertyID,
			"error":       err.Error(),
		})
	}
	return true, nil
}

// IsFavorited reports local membership of propertyID.
func (s *Synchronizer) IsFavorited(propertyID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[propertyID]
	return ok
}

// IDs returns the favorite property ids in ascending order.
func (s *Synchronizer) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Favorites returns the favorite records as last loaded.
func (s *Synchronizer) Favorites() []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Favorite(nil), s.favorites...)
}

// Status returns the current session state.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
