// Package fetcher loads property lists for a normalized filter query and
// keeps only the most recently requested result.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/stwalsh4118/hearth/api/internal/filter"
	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

var (
	// ErrLoadFailed marks a retryable failure to read properties from the backend.
	ErrLoadFailed = errors.New("could not load properties")
	// ErrSuperseded is returned for a fetch whose result was discarded because a
	// newer fetch was issued while it was in flight.
	ErrSuperseded = errors.New("fetch superseded by a newer query")
	// ErrNoQuery is returned by Refetch before any query has been fetched.
	ErrNoQuery = errors.New("no query has been fetched yet")
)

// Lister is the remote read the fetcher depends on.
type Lister interface {
	ListProperties(ctx context.Context, query url.Values) ([]models.Property, error)
}

// State is a snapshot of what the fetcher currently shows.
type State struct {
	Query      filter.Query
	Err        error
	Properties []models.Property
	Generation uint64
	Loading    bool
	Loaded     bool
}

// Fetcher issues property reads and applies their results under a
// last-query-wins rule: every Fetch takes a new generation number, and a
// completed read only updates State if its generation is still the newest.
// Superseded reads are not cancelled; their results are dropped on arrival.
type Fetcher struct {
	mu     sync.Mutex
	lister Lister
	log    *logger.Logger
	latest uint64
	state  State
	issued bool
}

// New creates a Fetcher reading through lister.
func New(lister Lister, log *logger.Logger) *Fetcher {
	return &Fetcher{
		lister: lister,
		log:    log,
	}
}

// Fetch reads properties for q. It returns the applied state, or ErrSuperseded
// when a newer fetch was issued before this one completed. Backend failures are
// applied to state as ErrLoadFailed and also returned.
func (f *Fetcher) Fetch(ctx context.Context, q filter.Query) (State, error) {
	f.mu.Lock()
	f.latest++
	gen := f.latest
	f.issued = true
	f.state.Query = q
	f.state.Loading = true
	f.mu.Unlock()

	f.log.Debug("Fetching properties", map[string]interface{}{
		"generation": gen,
		"query":      q.String(),
	})

	properties, err := f.lister.ListProperties(ctx, q.Values())

	f.mu.Lock()
	if gen != f.latest {
		latest := f.latest
		f.mu.Unlock()
		f.log.Debug("Discarding stale property result", map[string]interface{}{
			"generation": gen,
			"latest":     latest,
		})
		return State{}, ErrSuperseded
	}

	f.state.Generation = gen
	f.state.Loading = false
	if err != nil {
		f.state.Err = fmt.Errorf("%w: %v", ErrLoadFailed, err)
	} else {
		f.state.Err = nil
		f.state.Properties = properties
		f.state.Loaded = true
	}
	applied := f.snapshot()
	f.mu.Unlock()

	if err != nil {
		f.log.Error("Failed to load properties", err, map[string]interface{}{
			"generation": gen,
			"query":      q.String(),
		})
	} else {
		f.log.Info("Properties loaded", map[string]interface{}{
			"generation": gen,
			"count":      len(properties),
		})
	}

	return applied, applied.Err
}

// Refetch re-issues the last requested query. This is the only retry path.
func (f *Fetcher) Refetch(ctx context.Context) (State, error) {
	f.mu.Lock()
	issued, q := f.issued, f.state.Query
	f.mu.Unlock()

	if !issued {
		return State{}, ErrNoQuery
	}
	return f.Fetch(ctx, q)
}

// State returns a snapshot of the current state.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// snapshot must be called with mu held.
func (f *Fetcher) snapshot() State {
	s := f.state
	s.Properties = append([]models.Property(nil), f.state.Properties...)
	return s
}
