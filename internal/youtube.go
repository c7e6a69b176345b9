package internal

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrVideoNotFound indicates the Data API returned no item for the ID
var ErrVideoNotFound = fmt.Errorf("video not found")

// YouTubeClient talks to the YouTube Data API v3 with API-key auth. It
// implements MetadataFetcher and CommentPager for the extractor.
type YouTubeClient struct {
	service *youtube.Service
}

// NewYouTubeClient creates a Data API client
func NewYouTubeClient(ctx context.Context, apiKey string) (*YouTubeClient, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating YouTube service: %w", err)
	}
	return &YouTubeClient{service: service}, nil
}

// FetchMetadata fetches video metadata. Retried with backoff since this is
// the one call whose failure aborts the whole run.
func (c *YouTubeClient) FetchMetadata(ctx context.Context, videoID string) (VideoMetadata, error) {
	var metadata VideoMetadata

	backoff := retry.WithMaxRetries(2, retry.NewExponential(2*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.service.Videos.
			List([]string{"snippet", "contentDetails", "statistics"}).
			Id(videoID).
			Context(ctx).
			Do()
		if err != nil {
			err = fmt.Errorf("fetching video metadata: %w", err)
			// Bad API keys and exhausted quotas fail the same way on
			// every attempt; only retry what might actually recover
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
		}

		item := resp.Items[0]
		publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		metadata = VideoMetadata{
			VideoID:     videoID,
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: publishedAt,
			URL:         "https://www.youtube.com/watch?v=" + videoID,
		}
		if item.ContentDetails != nil {
			metadata.Duration = parseISODuration(item.ContentDetails.Duration)
		}
		if item.Statistics != nil {
			metadata.ViewCount = int64(item.Statistics.ViewCount)
			metadata.LikeCount = int64(item.Statistics.LikeCount)
		}
		return nil
	})

	return metadata, err
}

// CommentPage is one page of top-level comments
type CommentPage struct {
	Comments  []Comment
	NextToken string
}

// FetchCommentPage fetches one page of comment threads. Comments are
// requested in relevance order so the engagement ranking is the API's;
// arrival order within the run is the deterministic tie-break.
func (c *YouTubeClient) FetchCommentPage(ctx context.Context, videoID, pageToken string, maxResults int64) (CommentPage, error) {
	call := c.service.CommentThreads.
		List([]string{"snippet"}).
		VideoId(videoID).
		TextFormat("plainText").
		Order("relevance").
		MaxResults(maxResults).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return CommentPage{}, fmt.Errorf("fetching comment page: %w", err)
	}

	page := CommentPage{NextToken: resp.NextPageToken}
	for _, item := range resp.Items {
		snippet := item.Snippet.TopLevelComment.Snippet
		publishedAt, err := time.Parse(time.RFC3339, snippet.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}
		page.Comments = append(page.Comments, Comment{
			Author:      snippet.AuthorDisplayName,
			Text:        snippet.TextDisplay,
			LikeCount:   snippet.LikeCount,
			PublishedAt: publishedAt,
		})
	}
	return page, nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the Data API's ISO 8601 duration (PT1H2M3S)
// into seconds. Unparseable input yields zero.
func parseISODuration(iso string) float64 {
	matches := isoDurationPattern.FindStringSubmatch(iso)
	if matches == nil {
		return 0
	}
	var seconds float64
	for i, mult := range []float64{3600, 60, 1} {
		if matches[i+1] != "" {
			n, _ := strconv.Atoi(matches[i+1])
			seconds += float64(n) * mult
		}
	}
	return seconds
}
