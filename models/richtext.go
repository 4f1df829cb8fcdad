package models

import (
	"encoding/json"
	"fmt"
)

// schema: app.bsky.richtext.facet

// RichtextFacet annotates a byte range of a post's text with a feature
// (mention, link, or tag). Byte offsets index into the UTF-8 encoding of
// the exact text the facet was derived from.
type RichtextFacet struct {
	Features []*RichtextFacet_Features_Elem `json:"features" cborgen:"features"`
	Index    *RichtextFacet_ByteSlice       `json:"index" cborgen:"index"`
}

type RichtextFacet_ByteSlice struct {
	ByteStart int64 `json:"byteStart" cborgen:"byteStart"`
	ByteEnd   int64 `json:"byteEnd" cborgen:"byteEnd"`
}

type RichtextFacet_Mention struct {
	LexiconTypeID string `json:"$type,omitempty"`
	Did           string `json:"did" cborgen:"did"`
}

type RichtextFacet_Link struct {
	LexiconTypeID string `json:"$type,omitempty"`
	Uri           string `json:"uri" cborgen:"uri"`
}

type RichtextFacet_Tag struct {
	LexiconTypeID string `json:"$type,omitempty"`
	Tag           string `json:"tag" cborgen:"tag"`
}

type RichtextFacet_Features_Elem struct {
	RichtextFacet_Mention *RichtextFacet_Mention
	RichtextFacet_Link    *RichtextFacet_Link
	RichtextFacet_Tag     *RichtextFacet_Tag
}

func (t *RichtextFacet_Features_Elem) MarshalJSON() ([]byte, error) {
	if t.RichtextFacet_Mention != nil {
		t.RichtextFacet_Mention.LexiconTypeID = "app.bsky.richtext.facet#mention"
		return json.Marshal(t.RichtextFacet_Mention)
	}
	if t.RichtextFacet_Link != nil {
		t.RichtextFacet_Link.LexiconTypeID = "app.bsky.richtext.facet#link"
		return json.Marshal(t.RichtextFacet_Link)
	}
	if t.RichtextFacet_Tag != nil {
		t.RichtextFacet_Tag.LexiconTypeID = "app.bsky.richtext.facet#tag"
		return json.Marshal(t.RichtextFacet_Tag)
	}
	return nil, fmt.Errorf("cannot marshal empty enum")
}

func (t *RichtextFacet_Features_Elem) UnmarshalJSON(b []byte) error {
	typ, err := typeExtract(b)
	if err != nil {
		return err
	}

	switch typ {
	case "app.bsky.richtext.facet#mention":
		t.RichtextFacet_Mention = new(RichtextFacet_Mention)
		return json.Unmarshal(b, t.RichtextFacet_Mention)
	case "app.bsky.richtext.facet#link":
		t.RichtextFacet_Link = new(RichtextFacet_Link)
		return json.Unmarshal(b, t.RichtextFacet_Link)
	case "app.bsky.richtext.facet#tag":
		t.RichtextFacet_Tag = new(RichtextFacet_Tag)
		return json.Unmarshal(b, t.RichtextFacet_Tag)
	default:
		return nil
	}
}
