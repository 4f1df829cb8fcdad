package compose

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-social/quill/models"
)

func TestSessionCharacterLimitCountsGraphemes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := newTestSession(newFakePoster(), &fakeUploader{})

	s.SetText(ctx, strings.Repeat("a", 300))
	assert.Equal(300, s.GraphemeCount())
	assert.False(s.IsOverLimit())

	s.SetText(ctx, strings.Repeat("a", 301))
	assert.True(s.IsOverLimit())

	// a multi-codepoint emoji counts as one user-perceived character
	s.SetText(ctx, strings.Repeat("👩‍🚀", 300))
	assert.Equal(300, s.GraphemeCount())
	assert.False(s.IsOverLimit())
}

func TestSessionHasContent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := newTestSession(newFakePoster(), &fakeUploader{})
	assert.False(s.HasContent())
	assert.False(s.CanSubmit())

	s.SetText(ctx, "  \n ")
	assert.False(s.HasContent())

	s.SetText(ctx, "hello")
	assert.True(s.HasContent())
	assert.True(s.CanSubmit())

	s.SetText(ctx, "")
	require.NoError(t, s.AddImage(img(1)))
	assert.True(s.HasContent())
}

func TestSessionFacetsRecomputedWholesale(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := newTestSession(newFakePoster(), &fakeUploader{})

	s.SetText(ctx, "see https://example.com #go")
	facets := s.Facets()
	require.Len(t, facets, 2)
	assert.NotNil(facets[0].Features[0].RichtextFacet_Link)
	assert.NotNil(facets[1].Features[0].RichtextFacet_Tag)

	s.SetText(ctx, "plain now")
	assert.Empty(s.Facets())
	assert.Empty(s.URLs())
}

func TestSessionSelectSuggestionRebuildsFacets(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewSession(newFakePoster(), &fakeUploader{}, fakeDirectory{}, nil)
	s.resolver.Debounce = 0

	s.SetText(ctx, "hi @ali")
	s.resolver.Wait()
	sugg := s.Suggestions()
	require.Len(t, sugg, 1)

	s.SelectSuggestion(ctx, sugg[0])
	assert.Equal("hi @ali.bsky.social ", s.Text())

	facets := s.Facets()
	require.Len(t, facets, 1)
	require.NotNil(t, facets[0].Features[0].RichtextFacet_Mention)
	assert.Equal("did:plc:ali", facets[0].Features[0].RichtextFacet_Mention.Did)
	assert.Empty(s.Suggestions())
}

func TestSessionCardLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	fetcher := &fakeCardFetcher{cards: map[string]*models.ExternalCard{
		"https://example.com": {URI: "https://example.com", Title: "Example"},
	}}
	s := NewSession(newFakePoster(), &fakeUploader{}, nil, fetcher)

	s.SetText(ctx, "look https://example.com")
	s.cards.Wait()
	cardsNow := s.Cards()
	require.Len(t, cardsNow, 1)

	// URL removed from text: card evicted
	s.SetText(ctx, "look elsewhere")
	assert.Empty(s.Cards())
}

func TestSessionThreadEntryKeepsItsCard(t *testing.T) {
	ctx := context.Background()

	fetcher := &fakeCardFetcher{cards: map[string]*models.ExternalCard{
		"https://example.com": {URI: "https://example.com", Title: "Example"},
	}}
	s := NewSession(newFakePoster(), &fakeUploader{}, nil, fetcher)

	s.SetText(ctx, "look https://example.com")
	s.cards.Wait()
	require.Len(t, s.Cards(), 1)

	// moving to a fresh thread entry must not evict the saved entry's card
	s.AddEntry(ctx)
	s.SetText(ctx, "second post, no links")
	require.Len(t, s.Cards(), 1)
}

func TestSessionSuggestedLanguage(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(newFakePoster(), &fakeUploader{})
	s.SetText(ctx, "the cat is on the mat and it is happy")
	assert.Equal(t, "en", s.SuggestedLanguage())
}

func TestSessionThreadTransitions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := newTestSession(newFakePoster(), &fakeUploader{})
	s.SetText(ctx, "one")

	assert.Equal(1, s.AddEntry(ctx))
	assert.True(s.IsThread())
	assert.Equal("", s.Text())

	s.SetText(ctx, "two")
	assert.True(s.SwitchTo(ctx, 0))
	assert.Equal("one", s.Text())

	assert.True(s.RemoveEntry(ctx, 1))
	assert.False(s.IsThread())
	assert.False(s.RemoveEntry(ctx, 0), "cannot remove the last entry")
}
