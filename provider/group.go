package provider

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Refresher is the type-erased view of a Provider used by Group.
type Refresher interface {
	Source() string
	Refresh(ctx context.Context) error
	Close()
}

// Group refreshes independent providers concurrently. There is no
// ordering between members and no concurrency limit.
type Group struct {
	members []Refresher
}

// NewGroup creates a Group over the given providers.
func NewGroup(members ...Refresher) *Group {
	return &Group{members: append([]Refresher(nil), members...)}
}

// Len returns the number of members.
func (g *Group) Len() int { return len(g.members) }

// RefreshAll refreshes every member once and waits for all of them.
// Failures never cancel siblings; the per-source outcomes are returned
// with a nil entry for each success.
func (g *Group) RefreshAll(ctx context.Context) map[string]error {
	var (
		eg       errgroup.Group
		mu       sync.Mutex
		outcomes = make(map[string]error, len(g.members))
	)
	for _, m := range g.members {
		eg.Go(func() error {
			err := m.Refresh(ctx)
			mu.Lock()
			outcomes[m.Source()] = err
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return outcomes
}

// Close tears down every member.
func (g *Group) Close() {
	for _, m := range g.members {
		m.Close()
	}
}
