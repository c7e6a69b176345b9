package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

// TranscriptSource is one strategy in the transcript fallback chain. A
// source that finds no captions returns (nil, error); the extractor moves
// on to the next source.
type TranscriptSource interface {
	Name() string
	Fetch(ctx context.Context, videoID string) (*TranscriptDocument, error)
}

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// YTDLPSource downloads subtitles with yt-dlp and parses the SRT output
type YTDLPSource struct {
	cacheDir string
	log      zerolog.Logger
}

// NewYTDLPSource creates the yt-dlp caption source
func NewYTDLPSource(cacheDir string, log zerolog.Logger) *YTDLPSource {
	return &YTDLPSource{cacheDir: cacheDir, log: log}
}

// Name identifies the source in logs and transcript documents
func (s *YTDLPSource) Name() string { return "ytdlp" }

// Fetch downloads and parses English subtitles for the video
func (s *YTDLPSource) Fetch(ctx context.Context, videoID string) (*TranscriptDocument, error) {
	if err := EnsureDirs(s.cacheDir); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return nil, fmt.Errorf("resolving yt-dlp: %w", err)
	}

	outputPath := filepath.Join(s.cacheDir, "%(id)s")
	dl := ytdlp.New().
		WriteSubs().
		WriteAutoSubs().
		SubLangs("en").
		ConvertSubs("srt").
		SkipDownload().
		Output(outputPath)

	result, err := dl.Run(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		s.log.Debug().Err(err).Str("stderr", runStderr(result)).Msg("yt-dlp subtitle download failed")
		return nil, fmt.Errorf("downloading subtitles: %w", err)
	}

	pattern := filepath.Join(s.cacheDir, videoID+"*.srt")
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return nil, fmt.Errorf("no subtitle files found for %s", videoID)
	}

	content, err := os.ReadFile(files[0])
	if err != nil {
		return nil, fmt.Errorf("reading subtitle file: %w", err)
	}
	defer cleanupFiles(files...)

	segments := parseSRT(string(content))
	if len(segments) == 0 {
		return nil, fmt.Errorf("subtitle file for %s contained no text", videoID)
	}

	doc := &TranscriptDocument{Segments: segments, Source: s.Name()}
	doc.WordCount = CountWords(doc.Text())
	return doc, nil
}

// TimedTextSource fetches captions from YouTube's timedtext endpoint in
// the json3 format, without needing yt-dlp
type TimedTextSource struct {
	httpClient *http.Client
	baseURL    string
}

// NewTimedTextSource creates the timedtext caption source
func NewTimedTextSource(httpClient *http.Client) *TimedTextSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TimedTextSource{httpClient: httpClient, baseURL: "https://www.youtube.com/api/timedtext"}
}

// Name identifies the source in logs and transcript documents
func (s *TimedTextSource) Name() string { return "timedtext" }

// Fetch retrieves the English caption track as json3 events
func (s *TimedTextSource) Fetch(ctx context.Context, videoID string) (*TranscriptDocument, error) {
	query := url.Values{}
	query.Set("v", videoID)
	query.Set("lang", "en")
	query.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building timedtext request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching timedtext captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading timedtext response: %w", err)
	}

	var payload struct {
		Events []struct {
			StartMs    int64 `json:"tStartMs"`
			DurationMs int64 `json:"dDurationMs"`
			Segs       []struct {
				UTF8 string `json:"utf8"`
			} `json:"segs"`
		} `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing timedtext response: %w", err)
	}

	var segments []TranscriptSegment
	for _, event := range payload.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		segments = append(segments, TranscriptSegment{
			Start:    float64(event.StartMs) / 1000,
			Duration: float64(event.DurationMs) / 1000,
			Text:     text,
		})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no caption events for %s", videoID)
	}

	doc := &TranscriptDocument{Segments: segments, Source: s.Name()}
	doc.WordCount = CountWords(doc.Text())
	return doc, nil
}

// WhisperSource downloads the audio with yt-dlp and transcribes it with
// OpenAI's Whisper API. Costs money, so it is disabled by default and
// sits last in the fallback chain.
type WhisperSource struct {
	openai   *OpenAIClient
	cacheDir string
	log      zerolog.Logger
}

// NewWhisperSource creates the Whisper transcription source
func NewWhisperSource(openai *OpenAIClient, cacheDir string, log zerolog.Logger) *WhisperSource {
	return &WhisperSource{openai: openai, cacheDir: cacheDir, log: log}
}

// Name identifies the source in logs and transcript documents
func (s *WhisperSource) Name() string { return "whisper" }

// Fetch downloads the audio track and transcribes it. Audio larger than
// the Whisper upload limit is rejected rather than split.
func (s *WhisperSource) Fetch(ctx context.Context, videoID string) (*TranscriptDocument, error) {
	if err := EnsureDirs(s.cacheDir); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return nil, fmt.Errorf("resolving yt-dlp: %w", err)
	}

	outputPath := filepath.Join(s.cacheDir, "%(id)s.%(ext)s")
	dl := ytdlp.New().
		Format("bestaudio").
		ExtractAudio().
		AudioFormat("mp3").
		NoPlaylist().
		Output(outputPath)

	result, err := dl.Run(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		s.log.Debug().Err(err).Str("stderr", runStderr(result)).Msg("yt-dlp audio download failed")
		return nil, fmt.Errorf("downloading audio: %w", err)
	}

	audioFile := filepath.Join(s.cacheDir, videoID+".mp3")
	defer cleanupFiles(audioFile)

	info, err := os.Stat(audioFile)
	if err != nil {
		return nil, fmt.Errorf("locating downloaded audio: %w", err)
	}
	if info.Size() > WhisperLimit {
		return nil, fmt.Errorf("audio file too large for Whisper (%d bytes, limit %d)", info.Size(), WhisperLimit)
	}

	s.log.Info().Str("video_id", videoID).Msg("transcribing audio with Whisper")
	text, err := s.openai.Transcribe(ctx, audioFile)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("whisper returned an empty transcript for %s", videoID)
	}

	doc := &TranscriptDocument{
		Segments:  []TranscriptSegment{{Text: text}},
		Source:    s.Name(),
		WordCount: CountWords(text),
	}
	return doc, nil
}

var srtTimestampPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3}) --> (\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)

// parseSRT extracts timed segments from SRT subtitle content, dropping
// the consecutive duplicate lines auto-generated captions produce
func parseSRT(content string) []TranscriptSegment {
	var segments []TranscriptSegment
	prevText := ""

	for block := range strings.SplitSeq(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}

		matches := srtTimestampPattern.FindStringSubmatch(lines[1])
		if matches == nil {
			continue
		}
		start := srtTime(matches[1], matches[2], matches[3], matches[4])
		end := srtTime(matches[5], matches[6], matches[7], matches[8])

		var textLines []string
		for _, line := range lines[2:] {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				textLines = append(textLines, trimmed)
			}
		}
		text := strings.Join(textLines, " ")
		if text == "" {
			continue
		}

		// Auto-generated captions repeat the previous cue's text
		if prevText != "" && (strings.Contains(text, prevText) || strings.Contains(prevText, text)) {
			if len(text) > len(prevText) {
				segments[len(segments)-1].Text = text
				segments[len(segments)-1].Duration = end - segments[len(segments)-1].Start
				prevText = text
			}
			continue
		}

		segments = append(segments, TranscriptSegment{Start: start, Duration: end - start, Text: text})
		prevText = text
	}

	return segments
}

// srtTime converts SRT timestamp components to seconds
func srtTime(h, m, s, ms string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

// runStderr reads stderr from a yt-dlp result, which is nil when the
// command failed before it could start
func runStderr(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	return result.Stderr
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove file %s: %v\n", file, err)
		}
	}
}
