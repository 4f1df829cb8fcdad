package compose

import (
	"strings"

	"github.com/bluesky-social/quill/models"
)

// MaxImages is the embed cap on attached images.
const MaxImages = 4

// Entry is one post draft: the text plus its media selection and
// per-entry language/outline-tag choices. A thread is an ordered sequence
// of these; the live editing buffer is one of them too.
//
// Facets, detected URLs, and embeds are derived state and deliberately
// not stored here: they are recomputed from Text whenever needed.
type Entry struct {
	Text string

	Images []*MediaItem
	Video  *MediaItem
	Gif    *GifRef

	// Langs is this entry's selected languages. Tags are outline
	// hashtags applied in addition to #tags typed in the text.
	Langs []string
	Tags  []string
}

// AddImage attaches an image. Selecting an image clears any video or GIF:
// image set and video/gif are mutually exclusive, enforced here at
// mutation time rather than at assembly.
func (e *Entry) AddImage(m *MediaItem) error {
	if len(e.Images) >= MaxImages {
		return ErrTooManyImages
	}
	e.Video = nil
	e.Gif = nil
	e.Images = append(e.Images, m)
	return nil
}

// RemoveImage drops the image at i; out of range is a no-op.
func (e *Entry) RemoveImage(i int) {
	if i < 0 || i >= len(e.Images) {
		return
	}
	e.Images = append(e.Images[:i], e.Images[i+1:]...)
}

// SetVideo selects a video, clearing images and GIF.
func (e *Entry) SetVideo(m *MediaItem) {
	e.Images = nil
	e.Gif = nil
	e.Video = m
}

// SetGif selects a GIF, clearing images and video.
func (e *Entry) SetGif(g *GifRef) {
	e.Images = nil
	e.Video = nil
	e.Gif = g
}

// ClearMedia drops every media selection.
func (e *Entry) ClearMedia() {
	e.Images = nil
	e.Video = nil
	e.Gif = nil
}

// HasContent reports whether the entry would produce a non-empty post:
// trimmed text, or any media selection.
func (e *Entry) HasContent() bool {
	if strings.TrimSpace(e.Text) != "" {
		return true
	}
	return len(e.Images) > 0 || e.Video != nil || e.Gif != nil
}

// ImagesSnapshot returns consistent reads of the image list for embed
// assembly.
func (e *Entry) ImagesSnapshot() []MediaSnapshot {
	out := make([]MediaSnapshot, len(e.Images))
	for i, m := range e.Images {
		out[i] = m.Snapshot()
	}
	return out
}

// copyFrom transfers the savable fields from src: text, media, video,
// gif, and the per-entry selections. Derived state is not carried.
func (e *Entry) copyFrom(src *Entry) {
	e.Text = src.Text
	e.Images = append([]*MediaItem(nil), src.Images...)
	e.Video = src.Video
	e.Gif = src.Gif
	e.Langs = append([]string(nil), src.Langs...)
	e.Tags = append([]string(nil), src.Tags...)
}

// aspectRatio is a convenience for tests and loaders.
func aspectRatio(w, h int64) *models.AspectRatio {
	return &models.AspectRatio{Width: w, Height: h}
}
