// Package app is trailhead's composition root.
//
// # Overview
//
// Run wires configuration, logging, the SQLite cache, the credential vault,
// the API client and the core layer, then hands control to the TUI (or, with
// -headless, prints a summary and exits; with -purge, wipes local data and
// exits).
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()           TOML file + TRAILHEAD_* env
//	       ├─────> setupLogging()          glog files under <data_dir>/logs
//	       ├─────> persist.OpenSQLite()    <data_dir>/cache.db
//	       ├─────> gateway.Rehydrate()     cached collections + favorites
//	       ├─────> credential.OpenVault()  <data_dir>/vault
//	       ├─────> core.New()              store restored from cache
//	       ├─────> Fetch*()                four concurrent fetches
//	       ├─────> StartPoller()           only with -poll
//	       └─────> ui.Run()                blocks until quit
//
// # Polling
//
// Background refresh is opt-in. With -poll N the poller calls FetchAll every
// N seconds; consecutive failures double the wait up to 30 seconds, and the
// first success resets it.
//
// # Shutdown
//
// Deferred in reverse order: the poller is stopped and awaited, waiting
// comments are cancelled and in-flight
// fetches awaited, the gateway drains its write queue and closes the
// database, and glog is flushed.
package app
