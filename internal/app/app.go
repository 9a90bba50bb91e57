package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/config"
	"github.com/five82/trailhead/internal/core"
	"github.com/five82/trailhead/internal/credential"
	"github.com/five82/trailhead/internal/persist"
	"github.com/five82/trailhead/internal/prefs"
	"github.com/five82/trailhead/internal/ui"
)

// Options configure the trailhead application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/trailhead/prefs.toml
	PollEvery  int    // seconds; zero disables background refresh
	Headless   bool   // fetch once, print a summary and exit
	Purge      bool   // wipe cached data, favorites and the saved login, then exit
	Out        io.Writer
}

// Run boots trailhead until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer glog.Flush()

	kv, err := persist.OpenSQLite(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	gateway := persist.NewGateway(kv)
	defer func() {
		if err := gateway.Close(); err != nil {
			glog.Errorf("close cache: %v", err)
		}
	}()

	rehydrated, err := gateway.Rehydrate(ctx)
	if err != nil {
		// Whatever decoded is still usable.
		glog.Warningf("rehydrate: %v", err)
	}

	client, err := campapi.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	c, err := core.New(core.Deps{
		Client:       client,
		Gateway:      gateway,
		Credentials:  openCredentials(cfg),
		Rehydrated:   rehydrated,
		CommentDelay: cfg.CommentDelay,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	glog.Infof("trailhead starting: api=%s data=%s", client.BaseURL(), cfg.DataDir)

	if opts.Purge {
		return runPurge(ctx, c, opts.Out)
	}
	if opts.Headless {
		return runHeadless(ctx, c, opts.Out)
	}

	c.FetchCampsites(ctx)
	c.FetchComments(ctx)
	c.FetchPromotions(ctx)
	c.FetchPartners(ctx)

	// The poller must be gone before the deferred closes run.
	pollCtx, stopPoll := context.WithCancel(ctx)
	pollDone := StartPoller(pollCtx, c, time.Duration(opts.PollEvery)*time.Second)
	defer func() {
		stopPoll()
		<-pollDone
	}()

	userPrefs := prefs.Load(opts.PrefsPath)
	return ui.Run(ui.Options{
		Context:   ctx,
		Core:      c,
		ThemeName: userPrefs.Theme,
		StartView: userPrefs.StartView,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.InfoLogPath(),
	})
}

// setupLogging points glog at the data directory so nothing is drawn over
// the TUI. An explicit -log_dir on the command line wins.
func setupLogging(cfg config.Config) error {
	if f := flag.Lookup("log_dir"); f == nil || f.Value.String() != "" {
		return nil
	}
	if err := os.MkdirAll(cfg.LogDir(), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if err := flag.Set("log_dir", cfg.LogDir()); err != nil {
		return fmt.Errorf("set log dir: %w", err)
	}
	return nil
}

// openCredentials returns nil when the vault cannot be opened; remember-me
// is then unavailable but everything else works.
func openCredentials(cfg config.Config) *credential.Store {
	vault, err := credential.OpenVault(cfg.VaultDir(), []byte(cfg.Secret))
	if err != nil {
		glog.Errorf("open vault: %v", err)
		return nil
	}
	return credential.NewStore(vault)
}

func runPurge(ctx context.Context, c *core.Core, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	if err := c.Purge(ctx); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	glog.Info("local data purged")
	_, err := fmt.Fprintln(out, "local data purged")
	return err
}

func runHeadless(ctx context.Context, c *core.Core, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	fetchErr := c.FetchAll(ctx)
	snap := c.Snapshot()
	if err := writeSummary(out, snap); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if fetchErr != nil {
		return fmt.Errorf("refresh: %w", fetchErr)
	}
	return nil
}
