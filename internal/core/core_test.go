package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/comments"
	"github.com/five82/trailhead/internal/credential"
	"github.com/five82/trailhead/internal/favorites"
	"github.com/five82/trailhead/internal/persist"
)

type fakeFetcher struct {
	campsites  []campapi.Campsite
	comments   []campapi.Comment
	promotions []campapi.Promotion
	partners   []campapi.Partner
	failures   map[string]error
	calls      atomic.Int32
}

func (f *fakeFetcher) FetchCampsites(context.Context) ([]campapi.Campsite, error) {
	f.calls.Add(1)
	return f.campsites, f.failures["campsites"]
}

func (f *fakeFetcher) FetchComments(context.Context) ([]campapi.Comment, error) {
	f.calls.Add(1)
	return f.comments, f.failures["comments"]
}

func (f *fakeFetcher) FetchPromotions(context.Context) ([]campapi.Promotion, error) {
	f.calls.Add(1)
	return f.promotions, f.failures["promotions"]
}

func (f *fakeFetcher) FetchPartners(context.Context) ([]campapi.Partner, error) {
	f.calls.Add(1)
	return f.partners, f.failures["partners"]
}

func newGateway(t *testing.T, path string) *persist.Gateway {
	t.Helper()
	kv, err := persist.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	return persist.NewGateway(kv)
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("New without client returned nil error")
	}
}

func TestFetchAll_SettlesEverySliceIndependently(t *testing.T) {
	f := &fakeFetcher{
		campsites:  []campapi.Campsite{{ID: 0, Name: "React Lake"}, {ID: 1, Name: "Chrome River"}},
		comments:   []campapi.Comment{{ID: 0, CampsiteID: 1, Text: "nice"}},
		promotions: []campapi.Promotion{{ID: 0, Featured: true}},
		failures:   map[string]error{"partners": &campapi.StatusError{Path: "/partners", Code: 502}},
	}
	c, err := New(Deps{Client: f})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	err = c.FetchAll(context.Background())
	var statusErr *campapi.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("FetchAll error = %v, want the partners failure", err)
	}

	snap := c.Snapshot()
	if snap.Loading() {
		t.Fatal("snapshot still loading after FetchAll")
	}
	assert.Equal(t, len(snap.Campsites.Items), 2)
	assert.Equal(t, snap.Campsites.Error, "")
	assert.Equal(t, snap.Partners.Error, "api /partners returned status 502")
	assert.Equal(t, len(snap.Partners.Items), 0)
	assert.Equal(t, int(f.calls.Load()), 4)
}

func TestFetchDispatchIsFireAndForget(t *testing.T) {
	f := &fakeFetcher{campsites: []campapi.Campsite{{ID: 5}}}
	c, err := New(Deps{Client: f})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.FetchCampsites(context.Background())
	c.FetchComments(context.Background())
	c.FetchPromotions(context.Background())
	c.FetchPartners(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, snap.Campsites.Items, []campapi.Campsite{{ID: 5}})
	if snap.Loading() {
		t.Fatal("snapshot still loading after Wait")
	}
}

func TestRehydratedDataIsShownUntilRefetch(t *testing.T) {
	f := &fakeFetcher{failures: map[string]error{"campsites": errors.New("offline")}}
	c, err := New(Deps{
		Client: f,
		Rehydrated: persist.RehydratedState{
			Campsites: []campapi.Campsite{{ID: 3, Name: "cached"}},
			Favorites: []int{3},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	before := c.Snapshot()
	if !before.Campsites.IsLoading || len(before.Campsites.Items) != 1 {
		t.Fatalf("before fetch = %#v, want cached and loading", before.Campsites)
	}

	_ = c.FetchAll(context.Background())
	after := c.Snapshot()
	assert.Equal(t, after.Campsites.Error, "offline")
	assert.Equal(t, after.Campsites.Items[0].Name, "cached")
	assert.Equal(t, c.FavoritedCampsites(), []campapi.Campsite{{ID: 3, Name: "cached"}})
	if !after.IsFavorite(3) {
		t.Fatal("rehydrated favorite missing from snapshot")
	}
}

func TestFavoritesAndComments(t *testing.T) {
	f := &fakeFetcher{campsites: []campapi.Campsite{{ID: 7}, {ID: 12}}}
	c, err := New(Deps{Client: f, CommentDelay: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	_ = c.FetchAll(context.Background())

	if !c.ToggleFavorite(7) {
		t.Fatal("ToggleFavorite(7) = false")
	}
	if err := c.AddFavorite(7); !errors.Is(err, favorites.ErrAlreadyFavorite) {
		t.Fatalf("AddFavorite(7) = %v, want ErrAlreadyFavorite", err)
	}
	if !c.IsFavorite(7) {
		t.Fatal("IsFavorite(7) = false")
	}
	if !c.RemoveFavorite(7) || c.IsFavorite(7) {
		t.Fatal("RemoveFavorite(7) did not remove")
	}

	p, err := c.SubmitComment(context.Background(), comments.Draft{Author: "Alice", Rating: 5, Text: "Great spot", CampsiteID: 12})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	got := c.CommentsFor(12)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].ID, 0)
	assert.Equal(t, len(c.CommentsFor(7)), 0)
}

func TestCancelComment(t *testing.T) {
	c, err := New(Deps{Client: &fakeFetcher{}, CommentDelay: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	p, err := c.SubmitComment(context.Background(), comments.Draft{Author: "a", Rating: 3, Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Snapshot().PendingComments != 1 {
		t.Fatalf("PendingComments = %d, want 1", c.Snapshot().PendingComments)
	}
	if !c.CancelComment(p.Token) {
		t.Fatal("CancelComment = false")
	}
	<-p.Done()
}

func TestLoginRemembersCredential(t *testing.T) {
	vault, err := credential.OpenVault(t.TempDir(), []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Deps{Client: &fakeFetcher{}, Credentials: credential.NewStore(vault)})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, ok := c.RememberedCredential(); ok {
		t.Fatal("credential present before login")
	}
	c.Login(true, "alice", "pw")
	cred, ok := c.RememberedCredential()
	if !ok || cred.Username != "alice" {
		t.Fatalf("RememberedCredential = %#v %v", cred, ok)
	}
	c.Login(false, "alice", "pw")
	if _, ok := c.RememberedCredential(); ok {
		t.Fatal("credential still present after login without remember")
	}
}

func TestLoginWithoutCredentialStore(t *testing.T) {
	c, err := New(Deps{Client: &fakeFetcher{}})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.Login(true, "a", "b")
	if _, ok := c.RememberedCredential(); ok {
		t.Fatal("credential remembered without a store")
	}
}

// End to end: HTTP fetch, mirror to SQLite, restart, rehydrate.
func TestRestartRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/campsites":
			_ = json.NewEncoder(w).Encode([]campapi.Campsite{{ID: 0, Name: "React Lake"}, {ID: 1, Name: "Chrome River"}})
		case "/comments":
			_ = json.NewEncoder(w).Encode([]campapi.Comment{})
		case "/promotions":
			_ = json.NewEncoder(w).Encode([]campapi.Promotion{{ID: 0, Name: "Mountain Adventure"}})
		case "/partners":
			_ = json.NewEncoder(w).Encode([]campapi.Partner{{ID: 0, Name: "Bootstrap Outfitters"}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := campapi.NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cache.db")

	g := newGateway(t, path)
	c, err := New(Deps{Client: client, Gateway: g, CommentDelay: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	c.ToggleFavorite(1)
	p, err := c.SubmitComment(context.Background(), comments.Draft{Author: "Alice", Rating: 5, Text: "Great spot", CampsiteID: 1})
	if err != nil {
		t.Fatal(err)
	}
	<-p.Done()
	c.Close()
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	g = newGateway(t, path)
	defer g.Close()
	st, err := g.Rehydrate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, st.Favorites, []int{1})
	assert.Equal(t, len(st.Campsites), 2)
	assert.Equal(t, len(st.Comments), 1)
	assert.Equal(t, st.Comments[0].Author, "Alice")
	assert.Equal(t, st.Partners[0].Name, "Bootstrap Outfitters")

	restarted, err := New(Deps{Client: client, Gateway: g, Rehydrated: st})
	if err != nil {
		t.Fatal(err)
	}
	defer restarted.Close()
	if !restarted.IsFavorite(1) {
		t.Fatal("favorite lost across restart")
	}
	assert.Equal(t, len(restarted.CommentsFor(1)), 1)
}

func TestPurge(t *testing.T) {
	g := newGateway(t, ":memory:")
	defer g.Close()
	vault, err := credential.OpenVault(t.TempDir(), []byte("s"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Deps{Client: &fakeFetcher{}, Gateway: g, Credentials: credential.NewStore(vault)})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.ToggleFavorite(4)
	c.Login(true, "a", "b")
	if err := c.Purge(context.Background()); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	st, err := g.Rehydrate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Favorites) != 0 || c.IsFavorite(4) {
		t.Fatal("favorites survived Purge")
	}
	if _, ok := c.RememberedCredential(); ok {
		t.Fatal("credential survived Purge")
	}
}

func TestZeroCommentDelayCommitsImmediately(t *testing.T) {
	c, err := New(Deps{Client: &fakeFetcher{}, CommentDelay: 0})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	p, err := c.SubmitComment(context.Background(), comments.Draft{Author: "a", Rating: 4, Text: "quick"})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait with zero delay: %v", err)
	}
	assert.Equal(t, len(c.CommentsFor(0)), 1)
}
