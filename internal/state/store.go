package state

import (
	"time"

	"github.com/five82/trailhead/internal/campapi"
)

// Snapshot is an immutable view of every collection at one point in time.
type Snapshot struct {
	Campsites  Collection[campapi.Campsite]
	Comments   Collection[campapi.Comment]
	Promotions Collection[campapi.Promotion]
	Partners   Collection[campapi.Partner]
	TakenAt    time.Time
}

// Loading reports whether any collection is still waiting on its fetch.
func (s Snapshot) Loading() bool {
	return s.Campsites.IsLoading || s.Comments.IsLoading ||
		s.Promotions.IsLoading || s.Partners.IsLoading
}

// Errors returns the failure message of every failing collection keyed by name.
func (s Snapshot) Errors() map[string]string {
	out := make(map[string]string)
	if s.Campsites.HasError() {
		out["campsites"] = s.Campsites.Error
	}
	if s.Comments.HasError() {
		out["comments"] = s.Comments.Error
	}
	if s.Promotions.HasError() {
		out["promotions"] = s.Promotions.Error
	}
	if s.Partners.HasError() {
		out["partners"] = s.Partners.Error
	}
	return out
}

// Store groups the four remote-backed collections. It is created once and
// passed explicitly to every collaborator.
type Store struct {
	Campsites  *Slice[campapi.Campsite]
	Comments   *Comments
	Promotions *Slice[campapi.Promotion]
	Partners   *Slice[campapi.Partner]
}

// NewStore returns a store whose collections are empty and loading.
func NewStore() *Store {
	return &Store{
		Campsites:  NewSlice[campapi.Campsite]("campsites"),
		Comments:   NewComments(),
		Promotions: NewSlice[campapi.Promotion]("promotions"),
		Partners:   NewSlice[campapi.Partner]("partners"),
	}
}

// Snapshot copies every collection. Collections are read one after another,
// so two slices may reflect fetches that resolved in between.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Campsites:  s.Campsites.State(),
		Comments:   s.Comments.State(),
		Promotions: s.Promotions.State(),
		Partners:   s.Partners.State(),
		TakenAt:    time.Now(),
	}
}
