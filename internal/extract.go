package internal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MetadataFetcher resolves a video ID to its metadata
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoID string) (VideoMetadata, error)
}

// CommentPager fetches one page of comments at a time; the extractor
// drives pagination and applies the caps
type CommentPager interface {
	FetchCommentPage(ctx context.Context, videoID, pageToken string, maxResults int64) (CommentPage, error)
}

// commentPageSize is the Data API maximum page size
const commentPageSize int64 = 100

// Extractor normalizes the three heterogeneous sources (metadata API,
// transcript fallback chain, comment API) into the pipeline's extraction
// types.
type Extractor struct {
	metadata MetadataFetcher
	comments CommentPager
	sources  []TranscriptSource
	log      zerolog.Logger
}

// NewExtractor creates an extraction adapter. Transcript sources are
// tried in the given order; the first non-empty document wins.
func NewExtractor(metadata MetadataFetcher, comments CommentPager, sources []TranscriptSource, log zerolog.Logger) *Extractor {
	return &Extractor{metadata: metadata, comments: comments, sources: sources, log: log}
}

// Metadata fetches video metadata. This is the only fatal extraction
// path: without a video identity there is nothing to report.
func (e *Extractor) Metadata(ctx context.Context, ref VideoReference) (VideoMetadata, error) {
	metadata, err := e.metadata.FetchMetadata(ctx, ref.ID)
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("extracting metadata for %s: %w", ref.ID, err)
	}
	e.log.Info().
		Str("video_id", ref.ID).
		Str("title", metadata.Title).
		Str("channel", metadata.Channel).
		Msg("metadata extracted")
	return metadata, nil
}

// Transcript walks the fallback chain until a source yields a non-empty
// document. All sources failing is not fatal; the caller records the
// failure and the pipeline continues without a transcript track.
func (e *Extractor) Transcript(ctx context.Context, ref VideoReference) (*TranscriptDocument, error) {
	var lastErr error
	for _, source := range e.sources {
		doc, err := source.Fetch(ctx, ref.ID)
		if err != nil {
			e.log.Debug().Err(err).Str("source", source.Name()).Msg("transcript source failed")
			lastErr = err
			continue
		}
		if doc == nil || doc.WordCount == 0 {
			e.log.Debug().Str("source", source.Name()).Msg("transcript source returned empty document")
			continue
		}
		e.log.Info().
			Str("source", source.Name()).
			Int("words", doc.WordCount).
			Int("segments", len(doc.Segments)).
			Msg("transcript extracted")
		return doc, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all transcript sources failed, last error: %w", lastErr)
	}
	return nil, fmt.Errorf("no transcript available for %s", ref.ID)
}

// Comments paginates through the comment API applying both caps.
//
// Truncation policy: pages are requested in the API's relevance order
// (highest engagement first) and retained in arrival order, which makes
// the result deterministic for a fixed API response. Collection stops
// when the count cap is reached, or at the first comment that would push
// the cumulative word count past the word cap. Caps of zero retain
// nothing and are not an error.
func (e *Extractor) Comments(ctx context.Context, ref VideoReference, maxComments, maxWords int) (*CommentSet, error) {
	set := &CommentSet{Comments: []Comment{}}
	if maxComments <= 0 || maxWords <= 0 {
		return set, nil
	}

	pageToken := ""
	for {
		remaining := int64(maxComments - len(set.Comments))
		if remaining <= 0 {
			break
		}
		if remaining > commentPageSize {
			remaining = commentPageSize
		}

		page, err := e.comments.FetchCommentPage(ctx, ref.ID, pageToken, remaining)
		if err != nil {
			return nil, fmt.Errorf("extracting comments for %s: %w", ref.ID, err)
		}

		capped := false
		for _, comment := range page.Comments {
			if len(set.Comments) >= maxComments {
				capped = true
				break
			}
			words := CountWords(comment.Text)
			if set.TotalWordCount+words > maxWords {
				capped = true
				break
			}
			set.Comments = append(set.Comments, comment)
			set.TotalWordCount += words
		}

		if capped || page.NextToken == "" {
			break
		}
		pageToken = page.NextToken
	}

	e.log.Info().
		Int("comments", len(set.Comments)).
		Int("words", set.TotalWordCount).
		Msg("comments extracted")
	return set, nil
}
