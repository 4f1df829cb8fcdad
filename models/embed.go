package models

import (
	"encoding/json"
	"fmt"
)

// schema: app.bsky.embed.images

type EmbedImages struct {
	LexiconTypeID string               `json:"$type,omitempty" cborgen:"$type,const=app.bsky.embed.images"`
	Images        []*EmbedImages_Image `json:"images" cborgen:"images"`
}

type EmbedImages_Image struct {
	Alt         string       `json:"alt" cborgen:"alt"`
	Image       *LexBlob     `json:"image" cborgen:"image"`
	AspectRatio *AspectRatio `json:"aspectRatio,omitempty" cborgen:"aspectRatio,omitempty"`
}

// schema: app.bsky.embed.video

type EmbedVideo struct {
	LexiconTypeID string       `json:"$type,omitempty" cborgen:"$type,const=app.bsky.embed.video"`
	Video         *LexBlob     `json:"video" cborgen:"video"`
	Alt           *string      `json:"alt,omitempty" cborgen:"alt,omitempty"`
	AspectRatio   *AspectRatio `json:"aspectRatio,omitempty" cborgen:"aspectRatio,omitempty"`
}

// schema: app.bsky.embed.external

type EmbedExternal struct {
	LexiconTypeID string                  `json:"$type,omitempty" cborgen:"$type,const=app.bsky.embed.external"`
	External      *EmbedExternal_External `json:"external" cborgen:"external"`
}

type EmbedExternal_External struct {
	Uri         string   `json:"uri" cborgen:"uri"`
	Title       string   `json:"title" cborgen:"title"`
	Description string   `json:"description" cborgen:"description"`
	Thumb       *LexBlob `json:"thumb,omitempty" cborgen:"thumb,omitempty"`
}

// schema: app.bsky.embed.record

type EmbedRecord struct {
	LexiconTypeID string     `json:"$type,omitempty" cborgen:"$type,const=app.bsky.embed.record"`
	Record        *StrongRef `json:"record" cborgen:"record"`
}

// FeedPost_Embed is the closed union of embed kinds a post may carry.
// Exactly one member is non-nil.
type FeedPost_Embed struct {
	EmbedImages   *EmbedImages
	EmbedVideo    *EmbedVideo
	EmbedExternal *EmbedExternal
	EmbedRecord   *EmbedRecord
}

func (t *FeedPost_Embed) MarshalJSON() ([]byte, error) {
	if t.EmbedImages != nil {
		t.EmbedImages.LexiconTypeID = "app.bsky.embed.images"
		return json.Marshal(t.EmbedImages)
	}
	if t.EmbedVideo != nil {
		t.EmbedVideo.LexiconTypeID = "app.bsky.embed.video"
		return json.Marshal(t.EmbedVideo)
	}
	if t.EmbedExternal != nil {
		t.EmbedExternal.LexiconTypeID = "app.bsky.embed.external"
		return json.Marshal(t.EmbedExternal)
	}
	if t.EmbedRecord != nil {
		t.EmbedRecord.LexiconTypeID = "app.bsky.embed.record"
		return json.Marshal(t.EmbedRecord)
	}
	return nil, fmt.Errorf("cannot marshal empty enum")
}

func (t *FeedPost_Embed) UnmarshalJSON(b []byte) error {
	typ, err := typeExtract(b)
	if err != nil {
		return err
	}

	switch typ {
	case "app.bsky.embed.images":
		t.EmbedImages = new(EmbedImages)
		return json.Unmarshal(b, t.EmbedImages)
	case "app.bsky.embed.video":
		t.EmbedVideo = new(EmbedVideo)
		return json.Unmarshal(b, t.EmbedVideo)
	case "app.bsky.embed.external":
		t.EmbedExternal = new(EmbedExternal)
		return json.Unmarshal(b, t.EmbedExternal)
	case "app.bsky.embed.record":
		t.EmbedRecord = new(EmbedRecord)
		return json.Unmarshal(b, t.EmbedRecord)
	default:
		return nil
	}
}
