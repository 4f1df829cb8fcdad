// Package mentions resolves the mention being typed against a directory
// service and caches the handle->profile mappings picked during the
// session. Those mappings are what lets the facet builder mint mention
// facets: a handle the author never picked from the typeahead stays plain
// text.
package mentions

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/bluesky-social/quill/models"
	"github.com/bluesky-social/quill/richtext"
)

// SuggestionLimit is how many typeahead results a search requests.
const SuggestionLimit = 5

// resolved-profile cache size; a compose session never comes close
const profileCacheSize = 256

// SearchSource is the external directory service.
type SearchSource interface {
	SearchActorsTypeahead(ctx context.Context, query string, limit int) ([]*models.ProfileSummary, error)
}

// Resolver tracks the mention currently being typed, runs debounced
// typeahead searches against a directory, and remembers the profiles the
// author selected. Responses apply last-writer-wins by initiation order:
// a slow response for a superseded query never overwrites a newer one.
type Resolver struct {
	source SearchSource

	// Logger defaults to slog.Default. OnUpdate, if set, fires whenever
	// the suggestion list changes. Debounce delays search start after a
	// text change; zero means search immediately. Set before first use.
	Logger   *slog.Logger
	OnUpdate func()
	Debounce time.Duration

	limiter *rate.Limiter

	mu          sync.Mutex
	timer       *time.Timer
	cancel      context.CancelFunc
	gen         uint64
	suggestions []*models.ProfileSummary
	profiles    *lru.Cache[string, *models.ProfileSummary]

	wg sync.WaitGroup
}

func NewResolver(source SearchSource) *Resolver {
	profiles, _ := lru.New[string, *models.ProfileSummary](profileCacheSize)
	return &Resolver{
		source:   source,
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), SuggestionLimit),
		profiles: profiles,
	}
}

// TextChanged feeds the resolver the new canonical text. If a mention is
// being typed (text after the last '@' with no whitespace), a search is
// scheduled for it; otherwise suggestions clear and any in-flight search
// is canceled.
func (r *Resolver) TextChanged(ctx context.Context, text string) {
	query, typing := richtext.TypingMention(text)

	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	if !typing || query == "" {
		r.supersedeLocked()
		changed := r.suggestions != nil
		r.suggestions = nil
		r.mu.Unlock()
		if changed {
			r.notify()
		}
		return
	}

	if r.Debounce <= 0 {
		r.searchLocked(ctx, query)
		r.mu.Unlock()
		return
	}
	r.timer = time.AfterFunc(r.Debounce, func() {
		r.mu.Lock()
		r.searchLocked(ctx, query)
		r.mu.Unlock()
	})
	r.mu.Unlock()
}

// searchLocked starts a search for query, superseding any in-flight one.
// Caller holds r.mu.
func (r *Resolver) searchLocked(ctx context.Context, query string) {
	if r.source == nil {
		return
	}
	r.supersedeLocked()
	sctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.gen++
	gen := r.gen
	searchesStarted.Inc()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		if err := r.limiter.Wait(sctx); err != nil {
			return
		}
		res, err := r.source.SearchActorsTypeahead(sctx, query, SuggestionLimit)

		r.mu.Lock()
		if gen != r.gen {
			r.mu.Unlock()
			staleResultsDropped.Inc()
			return
		}
		if err != nil {
			// search failures clear suggestions silently
			searchesFailed.Inc()
			r.logger().Debug("mention typeahead failed", "query", query, "err", err)
			r.suggestions = nil
		} else {
			if len(res) > SuggestionLimit {
				res = res[:SuggestionLimit]
			}
			r.suggestions = res
		}
		r.mu.Unlock()
		r.notify()
	}()
}

// supersedeLocked invalidates any in-flight search. Caller holds r.mu.
func (r *Resolver) supersedeLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

// Suggestions returns a copy of the current suggestion list.
func (r *Resolver) Suggestions() []*models.ProfileSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ProfileSummary, len(r.suggestions))
	copy(out, r.suggestions)
	return out
}

// Select applies a suggestion to the text: everything from the last '@'
// to the end is replaced with the selected handle plus a trailing space,
// the handle->profile mapping is recorded for facet building, and the
// suggestion list clears. Returns the updated text.
func (r *Resolver) Select(text string, p *models.ProfileSummary) string {
	idx := strings.LastIndexByte(text, '@')
	if idx < 0 {
		return text
	}
	handle := strings.ToLower(p.Handle)

	r.mu.Lock()
	r.profiles.Add(handle, p)
	r.supersedeLocked()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.suggestions = nil
	r.mu.Unlock()
	r.notify()

	return text[:idx] + "@" + handle + " "
}

// Resolved looks up a profile selected earlier this session.
func (r *Resolver) Resolved(handle string) (*models.ProfileSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles.Get(strings.ToLower(handle))
}

// Profiles returns the handle->profile map accumulated this session,
// keyed by lowercase handle. This is the lookup table BuildFacets takes.
func (r *Resolver) Profiles() map[string]*models.ProfileSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*models.ProfileSummary, r.profiles.Len())
	for _, k := range r.profiles.Keys() {
		if v, ok := r.profiles.Peek(k); ok {
			out[k] = v
		}
	}
	return out
}

// Wait blocks until in-flight searches settle. Test helper.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

func (r *Resolver) notify() {
	if r.OnUpdate != nil {
		r.OnUpdate()
	}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
