package compose

import (
	"context"

	"github.com/bluesky-social/quill/models"
)

// DraftSnapshot is the persistable shape of a compose session. Media is
// captured as metadata only (local file reference, alt text); raw bytes
// are re-acquired from the file on restore. Fetched link cards are
// dropped on purpose and refetched later.
type DraftSnapshot struct {
	Entries []DraftEntrySnapshot
	Active  int

	Labels []string

	ReplyRootURI   string
	ReplyRootCid   string
	ReplyParentURI string
	ReplyParentCid string

	QuoteURI string
	QuoteCid string

	GateOverridden bool
	GateRules      []DraftGateRule
}

type DraftEntrySnapshot struct {
	Text  string
	Langs []string
	Tags  []string

	Images []DraftMediaRef
	Video  *DraftMediaRef
	Gif    *DraftGifRef
}

type DraftMediaRef struct {
	Path string
	Alt  string
}

type DraftGifRef struct {
	Title     string
	PageURL   string
	FullURL   string
	MediumURL string
	TinyURL   string
	NanoURL   string
}

// DraftGateRule is a threadgate rule flattened for storage. Kind is one
// of "mention", "following", "list" (List set for the latter).
type DraftGateRule struct {
	Kind string
	List string
}

// Snapshot captures the session for persistence. The live buffer is
// folded into the active entry's slot without disturbing session state.
func (s *Session) Snapshot() *DraftSnapshot {
	snap := &DraftSnapshot{
		Active: s.thread.Active(),
		Labels: append([]string(nil), s.labels...),
	}
	for i, e := range s.thread.Entries() {
		if i == s.thread.Active() {
			e = s.buf
		}
		snap.Entries = append(snap.Entries, snapshotEntry(e))
	}
	if s.replyTo != nil {
		snap.ReplyRootURI = s.replyTo.Root.Uri
		snap.ReplyRootCid = s.replyTo.Root.Cid
		snap.ReplyParentURI = s.replyTo.Parent.Uri
		snap.ReplyParentCid = s.replyTo.Parent.Cid
	}
	if s.quote != nil {
		snap.QuoteURI = s.quote.Uri
		snap.QuoteCid = s.quote.Cid
	}
	if s.gate != nil {
		snap.GateOverridden = true
		for _, rule := range s.gate.Allow {
			switch {
			case rule.FeedThreadgate_MentionRule != nil:
				snap.GateRules = append(snap.GateRules, DraftGateRule{Kind: "mention"})
			case rule.FeedThreadgate_FollowingRule != nil:
				snap.GateRules = append(snap.GateRules, DraftGateRule{Kind: "following"})
			case rule.FeedThreadgate_ListRule != nil:
				snap.GateRules = append(snap.GateRules, DraftGateRule{Kind: "list", List: rule.FeedThreadgate_ListRule.List})
			}
		}
	}
	return snap
}

// Restore rebuilds the session from a snapshot. Media items come back in
// the loading state; the owner re-acquires bytes from each item's Path
// and calls SetLoaded. Derived projections are refreshed from the
// restored text.
func (s *Session) Restore(ctx context.Context, snap *DraftSnapshot) {
	s.thread = NewThread()
	s.buf = &Entry{}

	for i, es := range snap.Entries {
		if i > 0 {
			s.thread.AddEntry(s.buf)
		}
		restoreEntry(s.buf, es)
	}
	if snap.Active >= 0 && snap.Active < s.thread.Len() {
		s.thread.SwitchTo(snap.Active, s.buf)
	}

	s.labels = append([]string(nil), snap.Labels...)

	s.replyTo = nil
	if snap.ReplyParentURI != "" {
		s.replyTo = &models.FeedPost_ReplyRef{
			Root:   &models.StrongRef{Uri: snap.ReplyRootURI, Cid: snap.ReplyRootCid},
			Parent: &models.StrongRef{Uri: snap.ReplyParentURI, Cid: snap.ReplyParentCid},
		}
	}
	s.quote = nil
	if snap.QuoteURI != "" {
		s.quote = &models.StrongRef{Uri: snap.QuoteURI, Cid: snap.QuoteCid}
	}

	s.gate = nil
	if snap.GateOverridden {
		spec := &ThreadgateSpec{}
		for _, r := range snap.GateRules {
			switch r.Kind {
			case "mention":
				spec.Allow = append(spec.Allow, &models.FeedThreadgate_Allow_Elem{
					FeedThreadgate_MentionRule: &models.FeedThreadgate_MentionRule{},
				})
			case "following":
				spec.Allow = append(spec.Allow, &models.FeedThreadgate_Allow_Elem{
					FeedThreadgate_FollowingRule: &models.FeedThreadgate_FollowingRule{},
				})
			case "list":
				spec.Allow = append(spec.Allow, &models.FeedThreadgate_Allow_Elem{
					FeedThreadgate_ListRule: &models.FeedThreadgate_ListRule{List: r.List},
				})
			}
		}
		s.gate = spec
	}

	s.refreshDerived(ctx)
}

func snapshotEntry(e *Entry) DraftEntrySnapshot {
	es := DraftEntrySnapshot{
		Text:  e.Text,
		Langs: append([]string(nil), e.Langs...),
		Tags:  append([]string(nil), e.Tags...),
	}
	for _, m := range e.Images {
		ms := m.Snapshot()
		es.Images = append(es.Images, DraftMediaRef{Path: ms.Path, Alt: ms.Alt})
	}
	if e.Video != nil {
		vs := e.Video.Snapshot()
		es.Video = &DraftMediaRef{Path: vs.Path, Alt: vs.Alt}
	}
	if e.Gif != nil {
		es.Gif = &DraftGifRef{
			Title:     e.Gif.Title,
			PageURL:   e.Gif.PageURL,
			FullURL:   e.Gif.FullURL,
			MediumURL: e.Gif.MediumURL,
			TinyURL:   e.Gif.TinyURL,
			NanoURL:   e.Gif.NanoURL,
		}
	}
	return es
}

func restoreEntry(buf *Entry, es DraftEntrySnapshot) {
	buf.Text = es.Text
	buf.Langs = append([]string(nil), es.Langs...)
	buf.Tags = append([]string(nil), es.Tags...)
	buf.Images = nil
	buf.Video = nil
	buf.Gif = nil
	for _, ms := range es.Images {
		m := NewMediaItem(ms.Path)
		m.SetAlt(ms.Alt)
		buf.Images = append(buf.Images, m)
	}
	if es.Video != nil {
		v := NewMediaItem(es.Video.Path)
		v.SetAlt(es.Video.Alt)
		buf.Video = v
	}
	if es.Gif != nil {
		buf.Gif = &GifRef{
			Title:     es.Gif.Title,
			PageURL:   es.Gif.PageURL,
			FullURL:   es.Gif.FullURL,
			MediumURL: es.Gif.MediumURL,
			TinyURL:   es.Gif.TinyURL,
			NanoURL:   es.Gif.NanoURL,
		}
	}
}
