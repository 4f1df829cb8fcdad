package models

import (
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-cid"
)

// LexLink is a CID reference in lexicon JSON form: {"$link": "b..."}.
type LexLink cid.Cid

func (ll LexLink) String() string {
	return cid.Cid(ll).String()
}

func (ll LexLink) Defined() bool {
	return cid.Cid(ll).Defined()
}

type jsonLink struct {
	Link string `json:"$link"`
}

func (ll LexLink) MarshalJSON() ([]byte, error) {
	if !ll.Defined() {
		return nil, fmt.Errorf("tried to marshal nil or undefined cid-link")
	}
	return json.Marshal(jsonLink{Link: ll.String()})
}

func (ll *LexLink) UnmarshalJSON(raw []byte) error {
	var jl jsonLink
	if err := json.Unmarshal(raw, &jl); err != nil {
		return fmt.Errorf("parsing cid-link JSON: %w", err)
	}
	c, err := cid.Decode(jl.Link)
	if err != nil {
		return fmt.Errorf("parsing cid-link CID: %w", err)
	}
	*ll = LexLink(c)
	return nil
}

// LexBlob is an uploaded blob reference, as returned by
// com.atproto.repo.uploadBlob and embedded in records.
type LexBlob struct {
	LexiconTypeID string  `json:"$type,omitempty" cborgen:"$type,const=blob"`
	Ref           LexLink `json:"ref" cborgen:"ref"`
	MimeType      string  `json:"mimeType" cborgen:"mimeType"`
	Size          int64   `json:"size" cborgen:"size"`
}

// AspectRatio is a width/height hint for media embeds.
type AspectRatio struct {
	Width  int64 `json:"width" cborgen:"width"`
	Height int64 `json:"height" cborgen:"height"`
}
