package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/core"
	"github.com/five82/trailhead/internal/state"
)

func campServer(t *testing.T, failPartners bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body any
		switch r.URL.Path {
		case "/campsites":
			body = []campapi.Campsite{{ID: 0, Name: "React Lake", Featured: true}, {ID: 1, Name: "Chrome River"}}
		case "/comments":
			body = []campapi.Comment{{ID: 0, CampsiteID: 0, Rating: 5, Text: "Lovely"}}
		case "/promotions":
			body = []campapi.Promotion{{ID: 0, Name: "Mountain Adventure", Featured: true}}
		case "/partners":
			if failPartners {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			body = []campapi.Partner{{ID: 0, Name: "Bootstrap Outfitters", Featured: true}}
		default:
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func headlessOptions(t *testing.T, srv *httptest.Server, out *bytes.Buffer) Options {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TRAILHEAD_BASE_URL", srv.URL)
	t.Setenv("TRAILHEAD_DATA_DIR", dir)
	t.Setenv("TRAILHEAD_SECRET", "test-secret")
	return Options{
		ConfigPath: filepath.Join(dir, "missing.toml"),
		Headless:   true,
		Out:        out,
	}
}

func TestRun_HeadlessPrintsSummary(t *testing.T) {
	var out bytes.Buffer
	opts := headlessOptions(t, campServer(t, false), &out)

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"campsites", "React Lake", "Mountain Adventure", "Bootstrap Outfitters", "favorites",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestRun_HeadlessReportsFailedCollection(t *testing.T) {
	var out bytes.Buffer
	opts := headlessOptions(t, campServer(t, true), &out)

	err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("Run returned nil error with partners failing")
	}
	if !strings.Contains(out.String(), "error: api /partners returned status 503") {
		t.Fatalf("summary does not show the partners error:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "React Lake") {
		t.Fatalf("summary lost the healthy collections:\n%s", out.String())
	}
}

func TestRun_HeadlessUsesCacheWhenOffline(t *testing.T) {
	var out bytes.Buffer
	srv := campServer(t, false)
	opts := headlessOptions(t, srv, &out)
	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	srv.Close()
	out.Reset()
	if err := Run(context.Background(), opts); err == nil {
		t.Fatal("offline Run returned nil error")
	}
	if !strings.Contains(out.String(), "React Lake") {
		t.Fatalf("offline summary lost cached campsites:\n%s", out.String())
	}
}

func TestRun_PurgeWipesCache(t *testing.T) {
	var out bytes.Buffer
	srv := campServer(t, false)
	opts := headlessOptions(t, srv, &out)
	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	purge := opts
	purge.Headless = false
	purge.Purge = true
	out.Reset()
	if err := Run(context.Background(), purge); err != nil {
		t.Fatalf("purge Run: %v", err)
	}
	if !strings.Contains(out.String(), "local data purged") {
		t.Fatalf("purge output = %q", out.String())
	}

	srv.Close()
	out.Reset()
	_ = Run(context.Background(), opts)
	if strings.Contains(out.String(), "React Lake") {
		t.Fatalf("purged cache still served campsites:\n%s", out.String())
	}
}

func TestWriteSummary_LoadingAndEmpty(t *testing.T) {
	var out bytes.Buffer
	snap := core.Snapshot{Snapshot: state.Snapshot{
		Campsites: state.Collection[campapi.Campsite]{IsLoading: true},
	}}
	if err := writeSummary(&out, snap); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "loading") {
		t.Fatalf("summary = %q, want a loading row", out.String())
	}
	if strings.Contains(out.String(), "featured") {
		t.Fatalf("summary = %q, want no featured rows", out.String())
	}
}
