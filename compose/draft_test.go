package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-social/quill/models"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := newTestSession(newFakePoster(), &fakeUploader{})
	s.SetText(ctx, "first post https://example.com")
	m := NewLoadedMediaItem([]byte{1}, "image/png", aspectRatio(1, 1))
	m.Path = "/tmp/pic.png"
	m.SetAlt("a pic")
	require.NoError(t, s.AddImage(m))
	s.SetLanguages([]string{"en", "pt"})
	s.SetOutlineTags([]string{"golang"})

	s.AddEntry(ctx)
	s.SetText(ctx, "second post")
	s.SetGif(&GifRef{Title: "g", PageURL: "https://tenor.com/x", FullURL: "https://media.tenor.com/full.gif"})

	s.SetLabels([]string{"nudity"})
	s.SetQuote(&models.StrongRef{Uri: "at://q", Cid: "bafyq"})
	s.SetThreadgate([]*models.FeedThreadgate_Allow_Elem{
		{FeedThreadgate_MentionRule: &models.FeedThreadgate_MentionRule{}},
		{FeedThreadgate_ListRule: &models.FeedThreadgate_ListRule{List: "at://list"}},
	})

	snap := s.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(1, snap.Active)
	assert.Equal("first post https://example.com", snap.Entries[0].Text)
	require.Len(t, snap.Entries[0].Images, 1)
	assert.Equal("/tmp/pic.png", snap.Entries[0].Images[0].Path)
	assert.Equal("a pic", snap.Entries[0].Images[0].Alt)
	require.NotNil(t, snap.Entries[1].Gif)
	assert.True(snap.GateOverridden)
	require.Len(t, snap.GateRules, 2)

	restored := newTestSession(newFakePoster(), &fakeUploader{})
	restored.Restore(ctx, snap)

	assert.Equal(2, restored.EntryCount())
	assert.Equal(1, restored.ActiveIndex())
	assert.Equal("second post", restored.Text())
	require.NotNil(t, restored.Buffer().Gif)
	assert.Equal("https://media.tenor.com/full.gif", restored.Buffer().Gif.FullURL)

	require.True(t, restored.SwitchTo(ctx, 0))
	assert.Equal("first post https://example.com", restored.Text())
	assert.Equal([]string{"en", "pt"}, restored.Buffer().Langs)
	assert.Equal([]string{"golang"}, restored.Buffer().Tags)

	// media comes back as metadata only, pending a reload from Path
	require.Len(t, restored.Buffer().Images, 1)
	ms := restored.Buffer().Images[0].Snapshot()
	assert.Equal("/tmp/pic.png", ms.Path)
	assert.Equal("a pic", ms.Alt)
	assert.True(ms.Loading)
	assert.Empty(ms.Data, "raw bytes are never persisted")

	require.NotNil(t, restored.quote)
	assert.Equal("at://q", restored.quote.Uri)
	require.NotNil(t, restored.gate)
	assert.Len(restored.gate.Allow, 2)
}

func TestSnapshotFoldsLiveBuffer(t *testing.T) {
	ctx := context.Background()

	s := newTestSession(newFakePoster(), &fakeUploader{})
	s.SetText(ctx, "saved")
	s.AddEntry(ctx)
	s.SetText(ctx, "live edit")

	snap := s.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "saved", snap.Entries[0].Text)
	assert.Equal(t, "live edit", snap.Entries[1].Text, "live buffer captured without an explicit save")
}

func TestRestoreReply(t *testing.T) {
	ctx := context.Background()

	snap := &DraftSnapshot{
		Entries:        []DraftEntrySnapshot{{Text: "a reply"}},
		ReplyRootURI:   "at://root",
		ReplyRootCid:   "bafyroot",
		ReplyParentURI: "at://parent",
		ReplyParentCid: "bafyparent",
	}
	s := newTestSession(newFakePoster(), &fakeUploader{})
	s.Restore(ctx, snap)

	require.NotNil(t, s.replyTo)
	assert.Equal(t, "at://root", s.replyTo.Root.Uri)
	assert.Equal(t, "at://parent", s.replyTo.Parent.Uri)
	assert.Equal(t, "a reply", s.Text())
}
