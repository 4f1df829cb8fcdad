package models

// schema: app.bsky.feed.post

// FeedPost is the post record as written to a repo. Facet byte offsets
// index into the UTF-8 encoding of Text.
type FeedPost struct {
	LexiconTypeID string             `json:"$type" cborgen:"$type,const=app.bsky.feed.post"`
	Text          string             `json:"text" cborgen:"text"`
	Facets        []*RichtextFacet   `json:"facets,omitempty" cborgen:"facets,omitempty"`
	Langs         []string           `json:"langs,omitempty" cborgen:"langs,omitempty"`
	Tags          []string           `json:"tags,omitempty" cborgen:"tags,omitempty"`
	Reply         *FeedPost_ReplyRef `json:"reply,omitempty" cborgen:"reply,omitempty"`
	Embed         *FeedPost_Embed    `json:"embed,omitempty" cborgen:"embed,omitempty"`
	Labels        *SelfLabels        `json:"labels,omitempty" cborgen:"labels,omitempty"`
	CreatedAt     string             `json:"createdAt" cborgen:"createdAt"`
}

type FeedPost_ReplyRef struct {
	Root   *StrongRef `json:"root" cborgen:"root"`
	Parent *StrongRef `json:"parent" cborgen:"parent"`
}
