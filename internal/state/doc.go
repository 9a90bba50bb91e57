// Package state holds the remote-backed collections shared by the fetchers
// and the UI.
//
// # Overview
//
// Four collections (campsites, comments, promotions, partners) are fetched
// independently and can fail independently. Each one lives in its own
// Slice, and the Store groups them so collaborators receive one explicit
// object instead of reaching for a global.
//
// # Lifecycle
//
// Every Slice starts empty with IsLoading set. A fetch moves it through
// three transitions:
//
//	Pending():   IsLoading = true            (Error untouched)
//	Fulfill(xs): IsLoading = false, Error = "", Items = xs
//	Reject(err): IsLoading = false, Error = err.Error(), Items unchanged
//
// A failed fetch therefore never clears data the UI is already showing.
// Nothing retries on its own; whoever dispatched the fetch decides whether
// to dispatch it again.
//
// # Comments
//
// Comments embeds a Slice and adds the one local mutation in the system:
// Append. It also reserves ids for comments written on this device.
// Reservations are monotonic and happen when the comment is submitted,
// not when it commits, so two submissions waiting on the same delay get
// distinct ids.
//
// # Concurrency Model
//
// Every Slice has its own sync.RWMutex. Fetches for different slices run
// in parallel and may resolve in any order; since no operation spans two
// slices, any interleaving leaves each slice consistent.
//
// State() and Store.Snapshot() return copies. Callers may mutate what
// they receive without affecting the store.
//
// # Observers
//
// OnChange callbacks fire after Fulfill and Append, outside the lock. The
// core package uses them to mirror collection data into the persistence
// gateway.
package state
