package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/comments"
	"github.com/five82/trailhead/internal/credential"
	"github.com/five82/trailhead/internal/favorites"
	"github.com/five82/trailhead/internal/persist"
	"github.com/five82/trailhead/internal/state"
	"github.com/five82/trailhead/internal/views"
)

// Deps are the collaborators a Core is built from. Gateway and Credentials
// may be nil, in which case nothing is persisted. CommentDelay is used as
// given; zero commits comments immediately.
type Deps struct {
	Client       campapi.Fetcher
	Gateway      *persist.Gateway
	Credentials  *credential.Store
	Rehydrated   persist.RehydratedState
	CommentDelay time.Duration
}

// Snapshot is everything the UI reads in one go.
type Snapshot struct {
	state.Snapshot
	Favorites       []int
	PendingComments int
}

// IsFavorite reports whether id is in the snapshot's favorites.
func (s Snapshot) IsFavorite(id int) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// Core is the dispatch and select surface of the synchronization layer.
type Core struct {
	client      campapi.Fetcher
	store       *state.Store
	favorites   *favorites.Store
	credentials *credential.Store
	comments    *comments.Coordinator
	gateway     *persist.Gateway

	wg sync.WaitGroup
}

// New wires the store from rehydrated data. It does not fetch; dispatch
// FetchAll once the caller is ready.
func New(deps Deps) (*Core, error) {
	if deps.Client == nil {
		return nil, errors.New("core requires an API client")
	}

	store := state.NewStore()
	store.Campsites.Restore(deps.Rehydrated.Campsites)
	store.Comments.Restore(deps.Rehydrated.Comments)
	store.Promotions.Restore(deps.Rehydrated.Promotions)
	store.Partners.Restore(deps.Rehydrated.Partners)

	var writer favorites.Writer
	if deps.Gateway != nil {
		writer = deps.Gateway
		mirror(store.Campsites, deps.Gateway, persist.KeyCampsites)
		mirror(store.Comments.Slice, deps.Gateway, persist.KeyComments)
		mirror(store.Promotions, deps.Gateway, persist.KeyPromotions)
		mirror(store.Partners, deps.Gateway, persist.KeyPartners)
	}

	return &Core{
		client:      deps.Client,
		store:       store,
		favorites:   favorites.New(deps.Rehydrated.Favorites, writer),
		credentials: deps.Credentials,
		comments:    comments.NewCoordinator(store.Comments, deps.CommentDelay),
		gateway:     deps.Gateway,
	}, nil
}

func mirror[T any](s *state.Slice[T], g *persist.Gateway, key string) {
	s.OnChange(func(c state.Collection[T]) {
		g.Persist(key, c.Items)
	})
}

// Store exposes the underlying collections.
func (c *Core) Store() *state.Store {
	return c.store
}

// FetchCampsites starts a campsite fetch and returns immediately.
func (c *Core) FetchCampsites(ctx context.Context) {
	c.dispatch(func() { _ = fetchInto(ctx, c.store.Campsites, c.client.FetchCampsites) })
}

// FetchComments starts a comment fetch and returns immediately.
func (c *Core) FetchComments(ctx context.Context) {
	c.dispatch(func() { _ = fetchInto(ctx, c.store.Comments.Slice, c.client.FetchComments) })
}

// FetchPromotions starts a promotion fetch and returns immediately.
func (c *Core) FetchPromotions(ctx context.Context) {
	c.dispatch(func() { _ = fetchInto(ctx, c.store.Promotions, c.client.FetchPromotions) })
}

// FetchPartners starts a partner fetch and returns immediately.
func (c *Core) FetchPartners(ctx context.Context) {
	c.dispatch(func() { _ = fetchInto(ctx, c.store.Partners, c.client.FetchPartners) })
}

// FetchAll fetches the four collections concurrently and returns once all
// of them have settled. The returned error is the first failure; each
// collection records its own.
func (c *Core) FetchAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return fetchInto(ctx, c.store.Campsites, c.client.FetchCampsites) })
	g.Go(func() error { return fetchInto(ctx, c.store.Comments.Slice, c.client.FetchComments) })
	g.Go(func() error { return fetchInto(ctx, c.store.Promotions, c.client.FetchPromotions) })
	g.Go(func() error { return fetchInto(ctx, c.store.Partners, c.client.FetchPartners) })
	return g.Wait()
}

func fetchInto[T any](ctx context.Context, s *state.Slice[T], fn func(context.Context) ([]T, error)) error {
	if err := s.Fetch(ctx, fn); err != nil {
		glog.Warningf("fetch %s: %v", s.Name(), err)
		return err
	}
	glog.V(1).Infof("fetch %s: ok", s.Name())
	return nil
}

func (c *Core) dispatch(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// Wait blocks until every dispatched fetch has settled.
func (c *Core) Wait() {
	c.wg.Wait()
}

// ToggleFavorite flips id's membership and returns the new state.
func (c *Core) ToggleFavorite(id int) bool {
	return c.favorites.Toggle(id)
}

// AddFavorite adds id, returning favorites.ErrAlreadyFavorite when present.
func (c *Core) AddFavorite(id int) error {
	return c.favorites.Add(id)
}

// RemoveFavorite removes id and reports whether it was present.
func (c *Core) RemoveFavorite(id int) bool {
	return c.favorites.Remove(id)
}

// IsFavorite reports whether id is favorited.
func (c *Core) IsFavorite(id int) bool {
	return c.favorites.IsFavorite(id)
}

// SubmitComment schedules an optimistic comment.
func (c *Core) SubmitComment(ctx context.Context, d comments.Draft) (*comments.Pending, error) {
	return c.comments.Submit(ctx, d)
}

// CancelComment abandons a waiting comment by its request token.
func (c *Core) CancelComment(token ulid.ULID) bool {
	return c.comments.Cancel(token)
}

// Login applies the remember-me choice. Storage failures are only logged.
func (c *Core) Login(remember bool, username, password string) {
	if c.credentials == nil {
		return
	}
	c.credentials.Remember(remember, username, password)
}

// RememberedCredential returns the saved credential, if any. Read errors
// are logged and reported as absent.
func (c *Core) RememberedCredential() (credential.Credential, bool) {
	if c.credentials == nil {
		return credential.Credential{}, false
	}
	cred, ok, err := c.credentials.Load()
	if err != nil {
		glog.Warningf("load credential: %v", err)
		return credential.Credential{}, false
	}
	return cred, ok
}

// Snapshot returns the current collections, favorites and pending count.
func (c *Core) Snapshot() Snapshot {
	return Snapshot{
		Snapshot:        c.store.Snapshot(),
		Favorites:       c.favorites.IDs(),
		PendingComments: c.comments.InFlight(),
	}
}

// FavoritedCampsites projects the favorites onto the campsite collection.
func (c *Core) FavoritedCampsites() []campapi.Campsite {
	return views.FavoritedCampsites(c.store.Campsites.State().Items, c.favorites.IDs())
}

// CommentsFor returns the comments on one campsite, oldest first.
func (c *Core) CommentsFor(campsiteID int) []campapi.Comment {
	return views.CommentsFor(c.store.Comments.State().Items, campsiteID)
}

// Purge wipes bulk storage, the remembered credential and the favorites.
func (c *Core) Purge(ctx context.Context) error {
	var errs []error
	c.favorites.Clear()
	if c.gateway != nil {
		errs = append(errs, c.gateway.Purge(ctx))
	}
	if c.credentials != nil {
		errs = append(errs, c.credentials.Clear())
	}
	return errors.Join(errs...)
}

// Close cancels waiting comments and waits for dispatched fetches.
func (c *Core) Close() {
	c.comments.Close()
	c.Wait()
}
