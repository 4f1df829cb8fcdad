// Package cards tracks link preview cards for the URLs currently present
// in the compose buffer. It fetches each newly seen URL exactly once,
// evicts (and cancels) cards whose URL leaves the text, and swallows fetch
// failures: a failed URL simply has no card until a manual retry.
//
// Cards are session-only state. Draft persistence deliberately drops them;
// they are refetched on restore.
package cards

import (
	"context"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/purell"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"

	"github.com/bluesky-social/quill/models"
)

// Fetcher is the external link-card service (title, description, optional
// image) consumed by the cache.
type Fetcher interface {
	FetchCard(ctx context.Context, url string) (*models.ExternalCard, error)
}

type track struct {
	cancel context.CancelFunc
	done   bool
	failed bool
}

type Cache struct {
	fetcher Fetcher

	// Logger defaults to slog.Default. OnUpdate, if set, fires after a
	// fetch lands or a card is evicted, so the owning session can refresh
	// derived state. Set both before first use.
	Logger   *slog.Logger
	OnUpdate func()

	cards *xsync.MapOf[string, *models.ExternalCard]
	sf    singleflight.Group

	mu      sync.Mutex
	tracked map[string]*track
	wg      sync.WaitGroup
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		cards:   xsync.NewMapOf[string, *models.ExternalCard](),
		tracked: make(map[string]*track),
	}
}

// Key returns the cache key for a raw URL as it appears in text. Both the
// tracked set and lookups use the same normalization, so detection and
// eviction always agree.
func Key(raw string) string {
	norm, err := purell.NormalizeURLString(raw, purell.FlagsSafe)
	if err != nil {
		return raw
	}
	return norm
}

// Sync diffs the detected URL set against tracked state: URLs gone from
// the text are evicted immediately (in-flight fetches canceled), new URLs
// start exactly one fetch each. Called on every text change.
func (c *Cache) Sync(ctx context.Context, urls []string) {
	if c.fetcher == nil {
		return
	}
	want := make(map[string]string, len(urls)) // key -> raw
	for _, raw := range urls {
		want[Key(raw)] = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, tr := range c.tracked {
		if _, ok := want[key]; ok {
			continue
		}
		tr.cancel()
		delete(c.tracked, key)
		if _, had := c.cards.LoadAndDelete(key); had {
			cardsEvicted.Inc()
		}
	}

	for key, raw := range want {
		if _, ok := c.tracked[key]; ok {
			continue
		}
		c.startFetch(ctx, key, raw)
	}
}

// Retry refetches a URL whose earlier fetch failed. No-op while a fetch
// is pending or a card is already present.
func (c *Cache) Retry(ctx context.Context, raw string) {
	if c.fetcher == nil {
		return
	}
	key := Key(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	tr, ok := c.tracked[key]
	if !ok || !tr.done || !tr.failed {
		return
	}
	c.startFetch(ctx, key, raw)
}

// startFetch begins a single async fetch for key. Caller holds c.mu.
func (c *Cache) startFetch(ctx context.Context, key, raw string) {
	fctx, cancel := context.WithCancel(ctx)
	c.tracked[key] = &track{cancel: cancel}
	cardFetchesStarted.Inc()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		v, err, _ := c.sf.Do(key, func() (any, error) {
			return c.fetcher.FetchCard(fctx, raw)
		})

		c.mu.Lock()
		tr, still := c.tracked[key]
		if still {
			tr.done = true
			tr.failed = err != nil
		}
		c.mu.Unlock()

		if err != nil {
			cardFetchesFailed.Inc()
			c.logger().Debug("link card fetch failed", "url", raw, "err", err)
		} else if still {
			cardFetchesSucceeded.Inc()
			c.cards.Store(key, v.(*models.ExternalCard))
		}
		if c.OnUpdate != nil {
			c.OnUpdate()
		}
	}()
}

// Card returns the fetched card for a raw URL, if any.
func (c *Cache) Card(raw string) (*models.ExternalCard, bool) {
	return c.cards.Load(Key(raw))
}

// Pending reports whether a fetch for the URL is still in flight.
func (c *Cache) Pending(raw string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr, ok := c.tracked[Key(raw)]
	return ok && !tr.done
}

// Failed reports whether the URL's most recent fetch failed (and is thus
// eligible for Retry).
func (c *Cache) Failed(raw string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr, ok := c.tracked[Key(raw)]
	return ok && tr.done && tr.failed
}

// Snapshot returns the current key->card map for rendering.
func (c *Cache) Snapshot() map[string]*models.ExternalCard {
	out := make(map[string]*models.ExternalCard)
	c.cards.Range(func(k string, v *models.ExternalCard) bool {
		out[k] = v
		return true
	})
	return out
}

// Wait blocks until all in-flight fetches settle. Test helper; the app
// relies on OnUpdate instead.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
