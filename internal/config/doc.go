// Package config loads trailhead's runtime settings.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (an explicit path, else ~/.config/trailhead/config.toml)
//  3. TRAILHEAD_* environment variables
//
// A missing file is not an error. Blank values in the file fall back to the
// defaults. Environment values win over the file.
//
// # TOML Format
//
//	base_url = "http://localhost:3001/"
//	data_dir = "~/.local/share/trailhead"
//	comment_delay = "2s"
//	request_timeout = "10s"
//
// Durations use time.ParseDuration syntax. Tilde paths are expanded.
//
// # Environment
//
//   - TRAILHEAD_BASE_URL
//   - TRAILHEAD_DATA_DIR
//   - TRAILHEAD_COMMENT_DELAY
//   - TRAILHEAD_REQUEST_TIMEOUT
//   - TRAILHEAD_SECRET (vault key material; never read from the file)
//
// # Derived Paths
//
//   - CachePath: <data_dir>/cache.db
//   - VaultDir: <data_dir>/vault
//   - LogDir: <data_dir>/logs, with InfoLogPath at trailhead.INFO
package config
