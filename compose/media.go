package compose

import (
	"sync"

	"github.com/bluesky-social/quill/models"
)

// MediaItem is one selected image or video. Its payload may be filled in
// by a background load/compress task after selection, so payload access
// goes through Snapshot; loaders must call SetLoaded with the final bytes
// rather than mutating a previously returned slice.
type MediaItem struct {
	// Path is the local file reference the item was selected from. It is
	// what draft persistence stores; bytes are re-acquired from it on
	// restore.
	Path string

	mu          sync.Mutex
	alt         string
	data        []byte
	mimeType    string
	aspectRatio *models.AspectRatio
	loading     bool
}

// MediaSnapshot is a consistent read of a MediaItem. Embed assembly
// iterates over snapshots so a background load can never be observed
// mid-mutation.
type MediaSnapshot struct {
	Path        string
	Alt         string
	Data        []byte
	MimeType    string
	AspectRatio *models.AspectRatio
	Loading     bool
}

// NewMediaItem creates an item whose payload is still loading.
func NewMediaItem(path string) *MediaItem {
	return &MediaItem{Path: path, loading: true}
}

// NewLoadedMediaItem creates an item with its payload already in hand.
func NewLoadedMediaItem(data []byte, mimeType string, ar *models.AspectRatio) *MediaItem {
	return &MediaItem{data: data, mimeType: mimeType, aspectRatio: ar}
}

// SetLoaded installs the final payload and clears the loading flag.
func (m *MediaItem) SetLoaded(data []byte, mimeType string, ar *models.AspectRatio) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.mimeType = mimeType
	m.aspectRatio = ar
	m.loading = false
}

func (m *MediaItem) SetAlt(alt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alt = alt
}

func (m *MediaItem) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *MediaItem) Snapshot() MediaSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MediaSnapshot{
		Path:        m.Path,
		Alt:         m.alt,
		Data:        m.data,
		MimeType:    m.mimeType,
		AspectRatio: m.aspectRatio,
		Loading:     m.loading,
	}
}

// GifRef is a selected GIF from a picker: the canonical page plus the
// direct media URLs the picker offered, best-first fallbacks.
type GifRef struct {
	Title   string
	PageURL string

	FullURL   string
	MediumURL string
	TinyURL   string
	NanoURL   string

	// Optional preview frame, uploaded as the embed thumbnail.
	Preview     []byte
	PreviewMime string
}

// BestMediaURL picks the animated-media URL for the external embed:
// full, then medium, tiny, nano, falling back to the page URL when the
// picker offered no direct media at all.
func (g *GifRef) BestMediaURL() string {
	for _, u := range []string{g.FullURL, g.MediumURL, g.TinyURL, g.NanoURL} {
		if u != "" {
			return u
		}
	}
	return g.PageURL
}
