package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-social/quill/models"
)

func submitAndEmbed(t *testing.T, s *Session, poster *fakePoster) *models.FeedPost_Embed {
	t.Helper()
	_, err := s.SubmitPost(context.Background())
	require.NoError(t, err)
	calls := poster.args()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1].Embed
}

func TestEmbedPrecedenceGifWins(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	poster := newFakePoster()
	up := &fakeUploader{}
	s := newTestSession(poster, up)
	s.SetText(ctx, "hi")
	require.NoError(t, s.AddImage(img(1)))
	s.SetGif(&GifRef{
		Title:       "deal with it",
		PageURL:     "https://tenor.com/view/x",
		MediumURL:   "https://media.tenor.com/x/med.gif",
		Preview:     []byte{0xff},
		PreviewMime: "image/jpeg",
	})

	embed := submitAndEmbed(t, s, poster)
	require.NotNil(t, embed)
	require.NotNil(t, embed.EmbedExternal)
	assert.Equal("https://media.tenor.com/x/med.gif", embed.EmbedExternal.External.Uri)
	assert.Equal("deal with it", embed.EmbedExternal.External.Title)
	assert.NotNil(embed.EmbedExternal.External.Thumb)
	assert.Equal([]string{"image/jpeg"}, up.uploads)
}

func TestEmbedImages(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	poster := newFakePoster()
	up := &fakeUploader{}
	s := newTestSession(poster, up)
	s.SetText(ctx, "pics")
	require.NoError(t, s.AddImage(img(1)))
	require.NoError(t, s.AddImage(img(2)))
	s.Buffer().Images[0].SetAlt("first")

	embed := submitAndEmbed(t, s, poster)
	require.NotNil(t, embed)
	require.NotNil(t, embed.EmbedImages)
	require.Len(t, embed.EmbedImages.Images, 2)
	assert.Equal("first", embed.EmbedImages.Images[0].Alt)
	assert.NotNil(embed.EmbedImages.Images[0].AspectRatio)
	assert.Len(up.uploads, 2)
}

func TestEmbedImagesNotReady(t *testing.T) {
	ctx := context.Background()

	poster := newFakePoster()
	s := newTestSession(poster, &fakeUploader{})
	s.SetText(ctx, "pics")
	require.NoError(t, s.AddImage(NewMediaItem("/tmp/slow.jpg")))

	_, err := s.SubmitPost(ctx)
	assert.ErrorIs(t, err, ErrMediaNotReady)
	assert.Empty(t, poster.args(), "validation failures never reach the service")
}

func TestEmbedVideo(t *testing.T) {
	ctx := context.Background()

	poster := newFakePoster()
	up := &fakeUploader{}
	s := newTestSession(poster, up)
	s.SetText(ctx, "clip")
	v := NewLoadedMediaItem([]byte{1, 2}, "video/mp4", aspectRatio(16, 9))
	v.SetAlt("a clip")
	s.SetVideo(v)

	embed := submitAndEmbed(t, s, poster)
	require.NotNil(t, embed)
	require.NotNil(t, embed.EmbedVideo)
	require.NotNil(t, embed.EmbedVideo.Alt)
	assert.Equal(t, "a clip", *embed.EmbedVideo.Alt)
	assert.Equal(t, []string{"video/mp4"}, up.uploads)
}

func TestEmbedQuote(t *testing.T) {
	ctx := context.Background()

	poster := newFakePoster()
	s := newTestSession(poster, &fakeUploader{})
	s.SetText(ctx, "quoting this")
	s.SetQuote(&models.StrongRef{Uri: "at://did:plc:them/app.bsky.feed.post/q", Cid: "bafyq"})

	embed := submitAndEmbed(t, s, poster)
	require.NotNil(t, embed)
	require.NotNil(t, embed.EmbedRecord)
	assert.Equal(t, "at://did:plc:them/app.bsky.feed.post/q", embed.EmbedRecord.Record.Uri)
}

func TestEmbedQuoteOnlyOnFirstThreadEntry(t *testing.T) {
	ctx := context.Background()

	poster := newFakePoster()
	s := newTestSession(poster, &fakeUploader{})
	s.SetQuote(&models.StrongRef{Uri: "at://did:plc:them/app.bsky.feed.post/q", Cid: "bafyq"})

	s.SetText(ctx, "one")
	s.AddEntry(ctx)
	s.SetText(ctx, "two")

	_, err := s.SubmitThread(ctx)
	require.NoError(t, err)

	calls := poster.args()
	require.Len(t, calls, 2)
	require.NotNil(t, calls[0].Embed)
	assert.NotNil(t, calls[0].Embed.EmbedRecord)
	assert.Nil(t, calls[1].Embed)
}

func TestEmbedCardFallback(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	poster := newFakePoster()
	up := &fakeUploader{}
	fetcher := &fakeCardFetcher{cards: map[string]*models.ExternalCard{
		"https://example.com": {
			URI:         "https://example.com",
			Title:       "Example",
			Description: "an example",
			Image:       []byte{0xca, 0xfe},
			ImageMime:   "image/png",
		},
	}}
	s := NewSession(poster, up, nil, fetcher)
	s.SetText(ctx, "see https://example.com")
	s.cards.Wait()

	embed := submitAndEmbed(t, s, poster)
	require.NotNil(t, embed)
	require.NotNil(t, embed.EmbedExternal)
	assert.Equal("Example", embed.EmbedExternal.External.Title)
	assert.NotNil(embed.EmbedExternal.External.Thumb)
}

func TestEmbedNoneWhenNothingApplies(t *testing.T) {
	ctx := context.Background()

	poster := newFakePoster()
	s := newTestSession(poster, &fakeUploader{})
	s.SetText(ctx, "just words")

	assert.Nil(t, submitAndEmbed(t, s, poster))
}

func TestEmbedImagesPrecedeCard(t *testing.T) {
	ctx := context.Background()

	poster := newFakePoster()
	fetcher := &fakeCardFetcher{cards: map[string]*models.ExternalCard{
		"https://example.com": {URI: "https://example.com", Title: "Example"},
	}}
	s := NewSession(poster, &fakeUploader{}, nil, fetcher)
	s.SetText(ctx, "see https://example.com")
	s.cards.Wait()
	require.NoError(t, s.AddImage(img(1)))

	embed := submitAndEmbed(t, s, poster)
	require.NotNil(t, embed)
	assert.NotNil(t, embed.EmbedImages)
	assert.Nil(t, embed.EmbedExternal)
}
