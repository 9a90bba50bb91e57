package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/five82/trailhead/internal/campapi"
)

// Keys of the bulk persistence area.
const (
	KeyFavorites  = "favorites"
	KeyCampsites  = "campsites"
	KeyComments   = "comments"
	KeyPromotions = "promotions"
	KeyPartners   = "partners"
)

const (
	writeQueueSize = 64
	writeTimeout   = 5 * time.Second
)

// RehydratedState is everything restored from the bulk area at startup.
// Missing keys leave their field empty.
type RehydratedState struct {
	Favorites  []int
	Campsites  []campapi.Campsite
	Comments   []campapi.Comment
	Promotions []campapi.Promotion
	Partners   []campapi.Partner
}

type write struct {
	key   string
	value string
	flush chan struct{}
}

// Gateway JSON-encodes values into a KV. Asynchronous writes go through a
// single goroutine so they land in the order they were issued.
type Gateway struct {
	kv     KV
	writes chan write
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewGateway starts the writer goroutine. Close must be called to drain it.
func NewGateway(kv KV) *Gateway {
	g := &Gateway{
		kv:     kv,
		writes: make(chan write, writeQueueSize),
		done:   make(chan struct{}),
	}
	go g.loop()
	return g
}

// Rehydrate reads every known key. Undecodable values are logged and
// skipped; read failures are joined into the returned error alongside
// whatever could be restored.
func (g *Gateway) Rehydrate(ctx context.Context) (RehydratedState, error) {
	var st RehydratedState
	err := errors.Join(
		g.load(ctx, KeyFavorites, &st.Favorites),
		g.load(ctx, KeyCampsites, &st.Campsites),
		g.load(ctx, KeyComments, &st.Comments),
		g.load(ctx, KeyPromotions, &st.Promotions),
		g.load(ctx, KeyPartners, &st.Partners),
	)
	return st, err
}

func (g *Gateway) load(ctx context.Context, key string, dest any) error {
	raw, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("rehydrate %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		glog.Warningf("rehydrate %s: discarding corrupt value: %v", key, err)
	}
	return nil
}

// Persist queues value for writing under key and returns immediately.
// Failures are logged, never returned.
func (g *Gateway) Persist(key string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		glog.Warningf("persist %s: encode: %v", key, err)
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		glog.Warningf("persist %s: gateway closed, dropping write", key)
		return
	}
	g.writes <- write{key: key, value: string(encoded)}
}

// Write stores value under key before returning.
func (g *Gateway) Write(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return g.kv.Put(ctx, key, string(encoded))
}

// Flush blocks until every write queued before the call has been applied.
func (g *Gateway) Flush() {
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return
	}
	ack := make(chan struct{})
	g.writes <- write{flush: ack}
	g.mu.RUnlock()
	<-ack
}

// Purge applies queued writes, then wipes the area.
func (g *Gateway) Purge(ctx context.Context) error {
	g.Flush()
	return g.kv.Purge(ctx)
}

// Close drains pending writes and closes the underlying store.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	close(g.writes)
	g.mu.Unlock()

	<-g.done
	return g.kv.Close()
}

func (g *Gateway) loop() {
	defer close(g.done)
	for w := range g.writes {
		if w.flush != nil {
			close(w.flush)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := g.kv.Put(ctx, w.key, w.value); err != nil {
			glog.Warningf("persist %s: %v", w.key, err)
		} else if glog.V(1) {
			glog.Infof("persisted %s (%d bytes)", w.key, len(w.value))
		}
		cancel()
	}
}
