// Package views derives read-only projections from collection snapshots.
// Every function is pure and recomputes on each call.
package views

import (
	"slices"

	"github.com/five82/trailhead/internal/campapi"
)

// Featurable is implemented by entities that can be highlighted on the home view.
type Featurable interface {
	IsFeatured() bool
}

// FavoritedCampsites returns the campsites whose id is in favorites, in the
// campsites' own order. Favorites that match no campsite are ignored.
func FavoritedCampsites(campsites []campapi.Campsite, favorites []int) []campapi.Campsite {
	if len(favorites) == 0 {
		return []campapi.Campsite{}
	}
	set := make(map[int]struct{}, len(favorites))
	for _, id := range favorites {
		set[id] = struct{}{}
	}
	out := make([]campapi.Campsite, 0, len(favorites))
	for _, c := range campsites {
		if _, ok := set[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CommentsFor returns the comments on campsiteID, oldest first.
func CommentsFor(comments []campapi.Comment, campsiteID int) []campapi.Comment {
	out := []campapi.Comment{}
	for _, c := range comments {
		if c.CampsiteID == campsiteID {
			out = append(out, c)
		}
	}
	return out
}

// CampsiteByID finds a campsite by id.
func CampsiteByID(campsites []campapi.Campsite, id int) (campapi.Campsite, bool) {
	i := slices.IndexFunc(campsites, func(c campapi.Campsite) bool { return c.ID == id })
	if i < 0 {
		return campapi.Campsite{}, false
	}
	return campsites[i], true
}

// Featured returns the first featured item.
func Featured[T Featurable](items []T) (T, bool) {
	for _, item := range items {
		if item.IsFeatured() {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// AverageRating returns the mean rating of comments; ok is false when there
// are none.
func AverageRating(comments []campapi.Comment) (avg float64, ok bool) {
	if len(comments) == 0 {
		return 0, false
	}
	total := 0
	for _, c := range comments {
		total += c.Rating
	}
	return float64(total) / float64(len(comments)), true
}
