// Package core is the state-synchronization layer the UI talks to.
//
// # Overview
//
// Core composes the collection store, the favorites set, the credential
// store, the comment coordinator and the persistence gateway behind two
// kinds of calls:
//
//   - Dispatch: FetchCampsites, FetchComments, FetchPromotions,
//     FetchPartners, FetchAll, ToggleFavorite, AddFavorite, RemoveFavorite,
//     SubmitComment, CancelComment, Login, Purge.
//   - Select: Snapshot, FavoritedCampsites, CommentsFor,
//     RememberedCredential.
//
// # Startup
//
//	gateway.Rehydrate()  → Deps.Rehydrated
//	core.New(deps)       → slices restored from cache, still loading
//	core.FetchAll(ctx)   → four concurrent fetches, any completion order
//
// Cached collection data is shown while the fetches run and is replaced
// wholesale as each one succeeds. A failing fetch leaves the cache in
// place and sets that collection's error only.
//
// # Persistence
//
// Collection changes are mirrored to the gateway asynchronously, queued
// under each collection's lock so the stored value follows memory. Favorites
// are written through synchronously. The credential lives in its own
// secure storage and is never mirrored to the bulk area.
package core
