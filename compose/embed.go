package compose

import (
	"context"
	"fmt"

	"github.com/bluesky-social/quill/models"
	"github.com/bluesky-social/quill/richtext"
)

// assembleEmbed builds the single embed for one entry. Precedence is
// fixed, first match wins:
//
//  1. selected GIF -> external embed at the best direct-media URL
//  2. images -> images embed, order preserved, capped at MaxImages
//  3. video -> video embed
//  4. quoted post -> record embed (first post of a submission only)
//  5. resolved link card for a detected URL -> external embed
//
// Media exclusivity is already enforced at mutation time; the precedence
// here is belt for entries restored from old drafts.
func (s *Session) assembleEmbed(ctx context.Context, e *Entry, includeQuote bool) (*models.FeedPost_Embed, error) {
	if e.Gif != nil {
		return s.assembleGifEmbed(ctx, e.Gif)
	}

	if imgs := e.ImagesSnapshot(); len(imgs) > 0 {
		return s.assembleImagesEmbed(ctx, imgs)
	}

	if e.Video != nil {
		return s.assembleVideoEmbed(ctx, e.Video.Snapshot())
	}

	if includeQuote && s.quote != nil {
		ref := *s.quote
		return &models.FeedPost_Embed{
			EmbedRecord: &models.EmbedRecord{Record: &ref},
		}, nil
	}

	for _, url := range richtext.DetectURLs(e.Text) {
		card, ok := s.cards.Card(url)
		if !ok {
			continue
		}
		return s.assembleCardEmbed(ctx, card)
	}

	return nil, nil
}

func (s *Session) assembleGifEmbed(ctx context.Context, gif *GifRef) (*models.FeedPost_Embed, error) {
	ext := &models.EmbedExternal_External{
		Uri:         gif.BestMediaURL(),
		Title:       gif.Title,
		Description: "Animated GIF",
	}
	if len(gif.Preview) > 0 {
		if s.uploader == nil {
			return nil, ErrNoUploadService
		}
		blob, err := s.uploader.UploadBlob(ctx, gif.Preview, gif.PreviewMime)
		if err != nil {
			// the preview is decoration; the embed still works without it
			s.logger().Warn("gif preview upload failed", "err", err)
		} else {
			ext.Thumb = blob
		}
	}
	return &models.FeedPost_Embed{
		EmbedExternal: &models.EmbedExternal{External: ext},
	}, nil
}

func (s *Session) assembleImagesEmbed(ctx context.Context, imgs []MediaSnapshot) (*models.FeedPost_Embed, error) {
	if s.uploader == nil {
		return nil, ErrNoUploadService
	}
	if len(imgs) > MaxImages {
		imgs = imgs[:MaxImages]
	}
	out := make([]*models.EmbedImages_Image, 0, len(imgs))
	for i, img := range imgs {
		if img.Loading || len(img.Data) == 0 {
			return nil, fmt.Errorf("image %d: %w", i, ErrMediaNotReady)
		}
		blob, err := s.uploader.UploadBlob(ctx, img.Data, img.MimeType)
		if err != nil {
			return nil, fmt.Errorf("uploading image %d: %w", i, err)
		}
		out = append(out, &models.EmbedImages_Image{
			Alt:         img.Alt,
			Image:       blob,
			AspectRatio: img.AspectRatio,
		})
	}
	return &models.FeedPost_Embed{
		EmbedImages: &models.EmbedImages{Images: out},
	}, nil
}

func (s *Session) assembleVideoEmbed(ctx context.Context, video MediaSnapshot) (*models.FeedPost_Embed, error) {
	if s.uploader == nil {
		return nil, ErrNoUploadService
	}
	if video.Loading || len(video.Data) == 0 {
		return nil, fmt.Errorf("video: %w", ErrMediaNotReady)
	}
	blob, err := s.uploader.UploadBlob(ctx, video.Data, video.MimeType)
	if err != nil {
		return nil, fmt.Errorf("uploading video: %w", err)
	}
	ev := &models.EmbedVideo{Video: blob, AspectRatio: video.AspectRatio}
	if video.Alt != "" {
		alt := video.Alt
		ev.Alt = &alt
	}
	return &models.FeedPost_Embed{EmbedVideo: ev}, nil
}

func (s *Session) assembleCardEmbed(ctx context.Context, card *models.ExternalCard) (*models.FeedPost_Embed, error) {
	ext := &models.EmbedExternal_External{
		Uri:         card.URI,
		Title:       card.Title,
		Description: card.Description,
	}
	if len(card.Image) > 0 && s.uploader != nil {
		blob, err := s.uploader.UploadBlob(ctx, card.Image, card.ImageMime)
		if err != nil {
			s.logger().Warn("card thumbnail upload failed", "url", card.URI, "err", err)
		} else {
			ext.Thumb = blob
		}
	}
	return &models.FeedPost_Embed{
		EmbedExternal: &models.EmbedExternal{External: ext},
	}, nil
}
