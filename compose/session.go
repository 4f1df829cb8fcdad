package compose

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/rivo/uniseg"

	"github.com/bluesky-social/quill/cards"
	"github.com/bluesky-social/quill/lang"
	"github.com/bluesky-social/quill/mentions"
	"github.com/bluesky-social/quill/models"
	"github.com/bluesky-social/quill/richtext"
)

// MaxGraphemes is the post length limit, counted in user-perceived
// characters (grapheme clusters), never bytes. It gates submission, not
// typing.
const MaxGraphemes = 300

// Session is one compose session: the canonical live text plus its
// derived projections (facets, detected URLs, link cards, mention
// suggestions), the thread of draft entries behind it, and the submission
// pipeline.
//
// A session has a single logical owner. All mutating methods must be
// called from that owner; only the async card/mention machinery and the
// posting flag are internally synchronized. Data flows one way: the
// canonical text emits projections, and nothing in a projection update
// writes the text back.
type Session struct {
	Logger *slog.Logger

	poster   PostingService
	uploader BlobUploadService

	cards    *cards.Cache
	resolver *mentions.Resolver

	thread *Thread
	buf    *Entry

	quote   *models.StrongRef
	replyTo *models.FeedPost_ReplyRef
	labels  []string
	gate    *ThreadgateSpec

	facets []*models.RichtextFacet
	urls   []string

	posting atomic.Bool
}

// NewSession wires a session against its external services. Any of them
// may be nil: a nil poster/uploader fails fast at submission, a nil
// directory or card fetcher simply disables that projection.
func NewSession(poster PostingService, uploader BlobUploadService, directory mentions.SearchSource, cardFetcher cards.Fetcher) *Session {
	s := &Session{
		poster:   poster,
		uploader: uploader,
		cards:    cards.NewCache(cardFetcher),
		resolver: mentions.NewResolver(directory),
		thread:   NewThread(),
		buf:      &Entry{},
	}
	return s
}

// SetOnUpdate registers a callback fired when async state (cards,
// suggestions) lands, so the owner can re-render.
func (s *Session) SetOnUpdate(fn func()) {
	s.cards.OnUpdate = fn
	s.resolver.OnUpdate = fn
}

// SetText replaces the canonical text and recomputes every derived
// projection wholesale. Facets are never patched incrementally.
func (s *Session) SetText(ctx context.Context, text string) {
	s.buf.Text = text
	s.refreshDerived(ctx)
}

func (s *Session) refreshDerived(ctx context.Context) {
	s.facets = richtext.BuildFacets(s.buf.Text, s.resolver.Profiles())
	s.urls = richtext.DetectURLs(s.buf.Text)
	s.cards.Sync(ctx, s.trackedURLs())
	s.resolver.TextChanged(ctx, s.buf.Text)
}

// trackedURLs is the union of the live buffer's detected URLs and those
// of every saved entry, so editing one thread entry never evicts another
// entry's card.
func (s *Session) trackedURLs() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(urls []string) {
		for _, u := range urls {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	add(s.urls)
	for i, e := range s.thread.Entries() {
		if i == s.thread.Active() {
			continue // live buffer already covers the active entry
		}
		add(richtext.DetectURLs(e.Text))
	}
	return out
}

func (s *Session) Text() string { return s.buf.Text }

// Facets returns the current derived facet list, for live highlighting.
func (s *Session) Facets() []*models.RichtextFacet {
	out := make([]*models.RichtextFacet, len(s.facets))
	copy(out, s.facets)
	return out
}

// URLs returns the URLs detected in the live buffer, in first-seen order.
func (s *Session) URLs() []string {
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

// Cards returns the current URL->card map for rendering.
func (s *Session) Cards() map[string]*models.ExternalCard {
	return s.cards.Snapshot()
}

// WaitForCards blocks until every in-flight card fetch settles. Intended
// for one-shot (non-interactive) callers that want cards in the outgoing
// embed.
func (s *Session) WaitForCards() {
	s.cards.Wait()
}

// RetryCard refetches a failed link card.
func (s *Session) RetryCard(ctx context.Context, url string) {
	s.cards.Retry(ctx, url)
}

// Suggestions returns the current mention typeahead results.
func (s *Session) Suggestions() []*models.ProfileSummary {
	return s.resolver.Suggestions()
}

// SelectSuggestion replaces the partial mention with the chosen handle,
// records the handle->profile mapping, and rebuilds facets.
func (s *Session) SelectSuggestion(ctx context.Context, p *models.ProfileSummary) {
	s.SetText(ctx, s.resolver.Select(s.buf.Text, p))
}

// --- media and selections (delegated to the live buffer) ---

func (s *Session) AddImage(m *MediaItem) error { return s.buf.AddImage(m) }
func (s *Session) RemoveImage(i int)           { s.buf.RemoveImage(i) }
func (s *Session) SetVideo(m *MediaItem)       { s.buf.SetVideo(m) }
func (s *Session) SetGif(g *GifRef)            { s.buf.SetGif(g) }
func (s *Session) ClearMedia()                 { s.buf.ClearMedia() }

func (s *Session) Buffer() *Entry { return s.buf }

// SetQuote attaches a quoted post by strong reference. The quote embeds
// on the first post of a submission.
func (s *Session) SetQuote(ref *models.StrongRef) { s.quote = ref }
func (s *Session) ClearQuote()                    { s.quote = nil }

// SetReplyTo makes the submission a reply: the given ref becomes the
// parent of the first post, and its root threads the rest.
func (s *Session) SetReplyTo(root, parent *models.StrongRef) {
	if root == nil || parent == nil {
		s.replyTo = nil
		return
	}
	s.replyTo = &models.FeedPost_ReplyRef{Root: root, Parent: parent}
}

// SetLabels replaces the self-label set. Labels are shared by every
// entry of a thread submission.
func (s *Session) SetLabels(labels []string) {
	s.labels = append([]string(nil), labels...)
}

// SetLanguages sets the live entry's languages.
func (s *Session) SetLanguages(langs []string) {
	s.buf.Langs = append([]string(nil), langs...)
}

// SetOutlineTags sets the live entry's outline hashtags.
func (s *Session) SetOutlineTags(tags []string) {
	s.buf.Tags = append([]string(nil), tags...)
}

// SuggestedLanguage guesses the live text's language for prefilling the
// language selector.
func (s *Session) SuggestedLanguage() string {
	return lang.Detect(s.buf.Text)
}

// SetThreadgate overrides the allow-everybody default. An empty rule set
// means nobody may reply.
func (s *Session) SetThreadgate(allow []*models.FeedThreadgate_Allow_Elem) {
	s.gate = &ThreadgateSpec{Allow: allow}
}

// ClearThreadgate restores the allow-everybody default.
func (s *Session) ClearThreadgate() { s.gate = nil }

// --- thread transitions ---

// AddEntry appends a blank entry after saving the live buffer, makes it
// active, and refreshes projections for the (now empty) buffer.
func (s *Session) AddEntry(ctx context.Context) int {
	i := s.thread.AddEntry(s.buf)
	s.refreshDerived(ctx)
	return i
}

// RemoveEntry removes entry i; no-op if out of bounds or it is the last
// remaining entry.
func (s *Session) RemoveEntry(ctx context.Context, i int) bool {
	ok := s.thread.RemoveEntry(i, s.buf)
	if ok {
		s.refreshDerived(ctx)
	}
	return ok
}

// SwitchTo saves the live buffer into the active entry and loads entry i.
func (s *Session) SwitchTo(ctx context.Context, i int) bool {
	ok := s.thread.SwitchTo(i, s.buf)
	if ok {
		s.refreshDerived(ctx)
	}
	return ok
}

func (s *Session) EntryCount() int  { return s.thread.Len() }
func (s *Session) ActiveIndex() int { return s.thread.Active() }
func (s *Session) IsThread() bool   { return s.thread.IsThread() }

// --- submit readiness ---

// GraphemeCount is the user-perceived character count of the live text.
func (s *Session) GraphemeCount() int {
	return uniseg.GraphemeClusterCount(s.buf.Text)
}

func (s *Session) IsOverLimit() bool {
	return s.GraphemeCount() > MaxGraphemes
}

// HasContent reports whether the live buffer would produce a non-empty
// post.
func (s *Session) HasContent() bool {
	return s.buf.HasContent()
}

// CanSubmit reports whether a submission would be accepted right now:
// not already posting, not over the limit, and some entry has content.
func (s *Session) CanSubmit() bool {
	if s.posting.Load() || s.IsOverLimit() {
		return false
	}
	if s.buf.HasContent() {
		return true
	}
	for i, e := range s.thread.Entries() {
		if i == s.thread.Active() {
			continue
		}
		if e.HasContent() {
			return true
		}
	}
	return false
}

// IsPosting reports whether a submission is in flight.
func (s *Session) IsPosting() bool { return s.posting.Load() }

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
