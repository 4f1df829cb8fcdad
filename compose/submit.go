package compose

import (
	"context"
	"fmt"

	"github.com/rivo/uniseg"

	"github.com/bluesky-social/quill/models"
	"github.com/bluesky-social/quill/richtext"
)

// SubmitPost builds and creates a single post from the live buffer.
// Validation (content, character limit) happens before any network call.
// The posting flag guards against re-entrant submission and is cleared on
// every exit path.
func (s *Session) SubmitPost(ctx context.Context) (*models.StrongRef, error) {
	if !s.posting.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPosting
	}
	defer s.posting.Store(false)

	if s.poster == nil {
		return nil, ErrNoPostingService
	}
	if err := validateEntry(s.buf); err != nil {
		return nil, err
	}

	ref, err := s.createFromEntry(ctx, s.buf, s.replyTo, s.gate, true)
	if err != nil {
		postsFailed.Inc()
		return nil, err
	}
	postsCreated.Inc()
	s.logger().Info("post created", "uri", ref.Uri)
	return ref, nil
}

// SubmitThread flushes the live buffer, drops empty entries, and creates
// the remaining entries in order as a reply chain. The threadgate (if
// overridden) attaches only to the first post; the quote (if any) embeds
// only on the first post. Each created record's returned ref is the
// explicit acknowledgment required before the next entry's reply link is
// built — the pipeline never proceeds on a timer.
//
// On failure the error carries the refs already created; those posts are
// not rolled back.
func (s *Session) SubmitThread(ctx context.Context) ([]*models.StrongRef, error) {
	if !s.posting.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPosting
	}
	defer s.posting.Store(false)

	if s.poster == nil {
		return nil, ErrNoPostingService
	}

	// flush in-progress edits before reading the entry list
	s.thread.Save(s.buf)

	var entries []*Entry
	for _, e := range s.thread.Entries() {
		if e.HasContent() {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil, ErrEmptyThread
	}
	for i, e := range entries {
		if uniseg.GraphemeClusterCount(e.Text) > MaxGraphemes {
			return nil, fmt.Errorf("entry %d: %w", i, ErrOverLimit)
		}
	}

	var (
		created []*models.StrongRef
		root    *models.StrongRef
		reply   = s.replyTo
	)
	if s.replyTo != nil {
		root = s.replyTo.Root
	}

	for i, e := range entries {
		var gate *ThreadgateSpec
		if i == 0 {
			gate = s.gate
		}
		ref, err := s.createFromEntry(ctx, e, reply, gate, i == 0)
		if err != nil {
			postsFailed.Inc()
			threadsSubmitted.WithLabelValues("error").Inc()
			return created, &ThreadPostError{EntryIndex: i, Created: created, Err: err}
		}
		postsCreated.Inc()
		created = append(created, ref)

		if root == nil {
			root = ref
		}
		reply = &models.FeedPost_ReplyRef{Root: root, Parent: ref}
	}

	threadsSubmitted.WithLabelValues("ok").Inc()
	s.logger().Info("thread created", "posts", len(created))
	return created, nil
}

// createFromEntry builds facets and embed for one entry and calls the
// posting service exactly once.
func (s *Session) createFromEntry(ctx context.Context, e *Entry, reply *models.FeedPost_ReplyRef, gate *ThreadgateSpec, includeQuote bool) (*models.StrongRef, error) {
	facets := richtext.BuildFacets(e.Text, s.resolver.Profiles())

	embed, err := s.assembleEmbed(ctx, e, includeQuote)
	if err != nil {
		return nil, fmt.Errorf("assembling embed: %w", err)
	}

	args := PostArgs{
		Text:       e.Text,
		Langs:      append([]string(nil), e.Langs...),
		Facets:     facets,
		Tags:       append([]string(nil), e.Tags...),
		Reply:      reply,
		Labels:     selfLabels(s.labels),
		Embed:      embed,
		Threadgate: gate,
	}

	ref, err := s.poster.CreatePost(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	if ref == nil || ref.Uri == "" {
		return nil, fmt.Errorf("creating post: %w: service returned no record ref", ErrInvalid)
	}
	return ref, nil
}

func validateEntry(e *Entry) error {
	if !e.HasContent() {
		return ErrNoContent
	}
	if uniseg.GraphemeClusterCount(e.Text) > MaxGraphemes {
		return ErrOverLimit
	}
	return nil
}

func selfLabels(labels []string) *models.SelfLabels {
	if len(labels) == 0 {
		return nil
	}
	vals := make([]*models.SelfLabel, len(labels))
	for i, l := range labels {
		vals[i] = &models.SelfLabel{Val: l}
	}
	return &models.SelfLabels{Values: vals}
}
