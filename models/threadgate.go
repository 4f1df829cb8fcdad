package models

import (
	"encoding/json"
	"fmt"
)

// schema: app.bsky.feed.threadgate

// FeedThreadgate restricts who may reply to the root post of a thread. An
// empty Allow list means nobody may reply; a nil record means everybody.
type FeedThreadgate struct {
	LexiconTypeID string                       `json:"$type" cborgen:"$type,const=app.bsky.feed.threadgate"`
	Post          string                       `json:"post" cborgen:"post"`
	Allow         []*FeedThreadgate_Allow_Elem `json:"allow,omitempty" cborgen:"allow,omitempty"`
	CreatedAt     string                       `json:"createdAt" cborgen:"createdAt"`
}

type FeedThreadgate_MentionRule struct {
	LexiconTypeID string `json:"$type,omitempty"`
}

type FeedThreadgate_FollowingRule struct {
	LexiconTypeID string `json:"$type,omitempty"`
}

type FeedThreadgate_ListRule struct {
	LexiconTypeID string `json:"$type,omitempty"`
	List          string `json:"list" cborgen:"list"`
}

type FeedThreadgate_Allow_Elem struct {
	FeedThreadgate_MentionRule   *FeedThreadgate_MentionRule
	FeedThreadgate_FollowingRule *FeedThreadgate_FollowingRule
	FeedThreadgate_ListRule      *FeedThreadgate_ListRule
}

func (t *FeedThreadgate_Allow_Elem) MarshalJSON() ([]byte, error) {
	if t.FeedThreadgate_MentionRule != nil {
		t.FeedThreadgate_MentionRule.LexiconTypeID = "app.bsky.feed.threadgate#mentionRule"
		return json.Marshal(t.FeedThreadgate_MentionRule)
	}
	if t.FeedThreadgate_FollowingRule != nil {
		t.FeedThreadgate_FollowingRule.LexiconTypeID = "app.bsky.feed.threadgate#followingRule"
		return json.Marshal(t.FeedThreadgate_FollowingRule)
	}
	if t.FeedThreadgate_ListRule != nil {
		t.FeedThreadgate_ListRule.LexiconTypeID = "app.bsky.feed.threadgate#listRule"
		return json.Marshal(t.FeedThreadgate_ListRule)
	}
	return nil, fmt.Errorf("cannot marshal empty enum")
}

func (t *FeedThreadgate_Allow_Elem) UnmarshalJSON(b []byte) error {
	typ, err := typeExtract(b)
	if err != nil {
		return err
	}

	switch typ {
	case "app.bsky.feed.threadgate#mentionRule":
		t.FeedThreadgate_MentionRule = new(FeedThreadgate_MentionRule)
		return json.Unmarshal(b, t.FeedThreadgate_MentionRule)
	case "app.bsky.feed.threadgate#followingRule":
		t.FeedThreadgate_FollowingRule = new(FeedThreadgate_FollowingRule)
		return json.Unmarshal(b, t.FeedThreadgate_FollowingRule)
	case "app.bsky.feed.threadgate#listRule":
		t.FeedThreadgate_ListRule = new(FeedThreadgate_ListRule)
		return json.Unmarshal(b, t.FeedThreadgate_ListRule)
	default:
		return nil
	}
}
