// Package browse composes the filter manager, property fetcher and favorites
// synchronizer into one explicit state object per client session.
package browse

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stwalsh4118/hearth/api/internal/favorites"
	"github.com/stwalsh4118/hearth/api/internal/fetcher"
	"github.com/stwalsh4118/hearth/api/internal/filter"
	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// recentActivityLimit caps the dashboard activity feed.
const recentActivityLimit = 4

// Deps are the collaborators every session is built from.
type Deps struct {
	Lister    fetcher.Lister
	Log       *logger.Logger
	AfterFunc filter.AfterFunc
	Debounce  time.Duration
}

// Session is one client's browsing state. Debounced filter changes feed the
// fetcher; the view joins fetched properties with favorite membership.
type Session struct {
	ID        string
	filters   *filter.Manager
	fetcher   *fetcher.Fetcher
	favorites *favorites.Synchronizer
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	user     *models.User
	lastSeen time.Time
}

// NewSession wires a session. Fetches triggered by the debounce timer run
// under a context that lives until Close.
func NewSession(id string, deps Deps, now time.Time) *Session {
	log := deps.Log.WithSessionID(id)
	ctx, cancel := context.WithCancel(context.Background())

	debounce := deps.Debounce
	if debounce <= 0 {
		debounce = filter.DefaultDebounce
	}
	var opts []filter.Option
	if deps.AfterFunc != nil {
		opts = append(opts, filter.WithAfterFunc(deps.AfterFunc))
	}

	s := &Session{
		ID:        id,
		filters:   filter.NewManager(debounce, opts...),
		fetcher:   fetcher.New(deps.Lister, log.Component("fetcher")),
		favorites: favorites.New(log.Component("favorites")),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		lastSeen:  now,
	}
	s.filters.Subscribe(s.onQuery)
	return s
}

func (s *Session) onQuery(q filter.Query) {
	// Errors are recorded on fetcher state; superseded results are expected.
	_, _ = s.fetcher.Fetch(s.ctx, q)
}

// Start performs the initial load for the current criteria, bypassing the debounce.
func (s *Session) Start() {
	s.filters.Flush()
}

// UpdateFilters applies a partial filter update; the fetch follows after the quiet period.
func (s *Session) UpdateFilters(p filter.Patch) filter.Query {
	return s.filters.Update(p)
}

// ResetFilters restores default criteria; the fetch follows after the quiet period.
func (s *Session) ResetFilters() filter.Query {
	return s.filters.Reset()
}

type refreshResult struct {
	state fetcher.State
	err   error
}

// Refresh re-issues the last query immediately. It is the manual retry path
// after a failed load. The fetch runs under the session's own context; ctx
// only bounds how long the caller waits for it.
func (s *Session) Refresh(ctx context.Context) (fetcher.State, error) {
	done := make(chan refreshResult, 1)
	go func() {
		state, err := s.fetcher.Refetch(s.ctx)
		if errors.Is(err, fetcher.ErrNoQuery) {
			state, err = s.fetcher.Fetch(s.ctx, s.filters.Query())
		}
		done <- refreshResult{state: state, err: err}
	}()

	select {
	case res := <-done:
		return res.state, res.err
	case <-ctx.Done():
		return fetcher.State{}, ctx.Err()
	}
}

// Login attaches a user and loads their favorites through remote.
func (s *Session) Login(ctx context.Context, user *models.User, remote favorites.Remote) error {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.log.Info("Session logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return s.favorites.Login(ctx, remote)
}

// Logout detaches the user and clears favorites.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.favorites.Logout()
}

// User returns the logged-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Favorites exposes the session's favorites synchronizer.
func (s *Session) Favorites() *favorites.Synchronizer {
	return s.favorites
}

// ToggleFavorite flips one property's favorite membership.
func (s *Session) ToggleFavorite(ctx context.Context, propertyID int64) (bool, error) {
	return s.favorites.Toggle(ctx, propertyID)
}

// PropertyView is a property annotated with the viewer's favorite membership.
type PropertyView struct {
	models.Property
	Favorited bool `json:"favorited"`
}

// View is what a client renders for a session.
type View struct {
	Criteria        filter.Criteria  `json:"criteria"`
	Query           filter.Query     `json:"query"`
	Properties      []PropertyView   `json:"properties"`
	User            *models.User     `json:"user,omitempty"`
	Error           string           `json:"error,omitempty"`
	Count           int              `json:"count"`
	Generation      uint64           `json:"generation"`
	FavoritesStatus favorites.Status `json:"favoritesStatus"`
	Loading         bool             `json:"loading"`
	Loaded          bool             `json:"loaded"`
}

// View snapshots the session.
func (s *Session) View() View {
	state := s.fetcher.State()

	props := make([]PropertyView, 0, len(state.Properties))
	for _, p := range state.Properties {
		props = append(props, PropertyView{
			Property:  p,
			Favorited: s.favorites.IsFavorited(p.ID),
		})
	}

	v := View{
		Criteria:        s.filters.Criteria(),
		Query:           state.Query,
		Properties:      props,
		User:            s.User(),
		Count:           len(props),
		Generation:      state.Generation,
		FavoritesStatus: s.favorites.Status(),
		Loading:         state.Loading,
		Loaded:          state.Loaded,
	}
	if state.Err != nil {
		v.Error = fetcher.ErrLoadFailed.Error()
	}
	// Nothing issued yet: show the query that will be fetched.
	if state.Generation == 0 && !state.Loading {
		v.Query = s.filters.Query()
	}
	return v
}

// Activity is one entry of the dashboard feed.
type Activity struct {
	CreatedAt  time.Time             `json:"createdAt"`
	Title      string                `json:"title"`
	Status     models.PropertyStatus `json:"status"`
	PropertyID int64                 `json:"propertyId"`
}

// Dashboard summarises the logged-in user's listings among the loaded properties.
type Dashboard struct {
	RecentActivity []Activity `json:"recentActivity"`
	TotalListings  int        `json:"totalListings"`
	ActiveListings int        `json:"activeListings"`
	Favorites      int        `json:"favorites"`
}

// Dashboard computes the dashboard for the current user.
func (s *Session) Dashboard() Dashboard {
	user := s.User()
	state := s.fetcher.State()

	var own []models.Property
	if user != nil {
		for _, p := range state.Properties {
			if p.OwnerID == user.ID || (p.Agent != nil && p.Agent.ID == user.ID) {
				own = append(own, p)
			}
		}
	}

	d := Dashboard{
		TotalListings:  len(own),
		Favorites:      len(s.favorites.IDs()),
		RecentActivity: []Activity{},
	}
	for _, p := range own {
		if p.Status == models.StatusAvailable {
			d.ActiveListings++
		}
	}

	sort.SliceStable(own, func(i, j int) bool { return own[i].CreatedAt.After(own[j].CreatedAt) })
	for i, p := range own {
		if i == recentActivityLimit {
			break
		}
		d.RecentActivity = append(d.RecentActivity, Activity{
			PropertyID: p.ID,
			Title:      `Property "` + p.Title + `" listed`,
			CreatedAt:  p.CreatedAt,
			Status:     p.Status,
		})
	}
	return d
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// LastSeen returns the last recorded activity time.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close stops pending emissions, cancels in-flight fetches and logs out.
func (s *Session) Close() {
	s.filters.Stop()
	s.cancel()
	s.Logout()
}
