package models

// ExternalCard is a fetched link preview: the payload behind an
// app.bsky.embed.external embed before its thumbnail has been uploaded.
// Image bytes are session-only and never persisted with drafts.
type ExternalCard struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       []byte `json:"-"`
	ImageMime   string `json:"-"`
}
