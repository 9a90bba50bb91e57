// Package ui is trailhead's Bubble Tea terminal interface.
//
// # Views
//
//   - Home: the featured campsite, promotion and partner
//   - Directory: every campsite, favorites marked with ★
//   - Favorites: the favorited campsites only
//   - Campsite: description, average rating and comments for one campsite
//   - Logs: the tail of trailhead's own glog INFO file, filterable by severity
//
// Comment and login forms open as modals over the current view.
//
// # Data Flow
//
// The model never blocks on the network. Fetches are dispatched through
// core and run in the background; a tick re-reads core.Snapshot twice a
// second and the views render whatever state each collection is in
// (loading, failed with cached items, or fresh). Comment submission returns
// at once; a command waits on the pending handle and reports the outcome
// in the flash line.
//
// # Preferences
//
// T cycles the theme and writes it to the prefs file. The initial view
// comes from prefs as well.
package ui
