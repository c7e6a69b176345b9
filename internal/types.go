package internal

import (
	"fmt"
	"strings"
	"time"
)

// Track identifies one of the two content channels carried through
// summarization.
type Track int

const (
	TrackTranscript Track = iota
	TrackComments
)

// String returns a human-readable representation of the track
func (t Track) String() string {
	switch t {
	case TrackTranscript:
		return "transcript"
	case TrackComments:
		return "comments"
	default:
		return "unknown"
	}
}

// VideoReference is a parsed video identifier with its canonical URL.
// Immutable once constructed by ParseArg.
type VideoReference struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// VideoMetadata contains YouTube video information from the Data API
type VideoMetadata struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	PublishedAt time.Time `json:"published_at"`
	Duration    float64   `json:"duration"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`
	URL         string    `json:"url"`
}

// TranscriptSegment is a single timed caption line
type TranscriptSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// TranscriptDocument holds an extracted transcript. A nil
// *TranscriptDocument means "no transcript available", which is distinct
// from a document with zero segments.
type TranscriptDocument struct {
	Segments  []TranscriptSegment `json:"segments"`
	Source    string              `json:"source"`
	WordCount int                 `json:"word_count"`
}

// Text joins all segments into the full transcript text
func (d *TranscriptDocument) Text() string {
	parts := make([]string, 0, len(d.Segments))
	for _, seg := range d.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Comment is a single top-level video comment
type Comment struct {
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	LikeCount   int64     `json:"like_count"`
	PublishedAt time.Time `json:"published_at"`
}

// CommentSet holds the retained comments after extraction caps were
// applied. A nil *CommentSet means comments were never fetched; an empty
// set means fetching succeeded but nothing was retained.
type CommentSet struct {
	Comments       []Comment `json:"comments"`
	TotalWordCount int       `json:"total_word_count"`
}

// TrackSummary is the summarization output for one track
type TrackSummary struct {
	Track           Track    `json:"-"`
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	SourceWordCount int      `json:"source_word_count"`
}

// SynthesisResult is the compressed insight set produced from the
// available track summaries.
type SynthesisResult struct {
	Headline string   `json:"headline"`
	Bullets  []string `json:"bullets"`
	Raw      string   `json:"raw"`
}

// Standard is one of the eight fixed critical-thinking standards
type Standard int

const (
	StandardClarity Standard = iota
	StandardAccuracy
	StandardPrecision
	StandardDepth
	StandardBreadth
	StandardLogic
	StandardSignificance
	StandardFairness
)

// NumStandards is the size of the closed standard set
const NumStandards = 8

// String returns the canonical standard name
func (s Standard) String() string {
	switch s {
	case StandardClarity:
		return "Clarity"
	case StandardAccuracy:
		return "Accuracy"
	case StandardPrecision:
		return "Precision"
	case StandardDepth:
		return "Depth"
	case StandardBreadth:
		return "Breadth"
	case StandardLogic:
		return "Logic"
	case StandardSignificance:
		return "Significance"
	case StandardFairness:
		return "Fairness"
	default:
		return "unknown"
	}
}

// AllStandards lists the standards in their fixed evaluation order
func AllStandards() [NumStandards]Standard {
	return [NumStandards]Standard{
		StandardClarity,
		StandardAccuracy,
		StandardPrecision,
		StandardDepth,
		StandardBreadth,
		StandardLogic,
		StandardSignificance,
		StandardFairness,
	}
}

// StandardFromName resolves a model-provided name to a Standard. Matching
// is case-insensitive and tolerates the longer names some models emit
// ("Logicalness", "Fair Thinking").
func StandardFromName(name string) (Standard, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range AllStandards() {
		if strings.HasPrefix(n, strings.ToLower(s.String())) {
			return s, true
		}
	}
	switch {
	case strings.HasPrefix(n, "logic"):
		return StandardLogic, true
	case strings.HasPrefix(n, "fair"):
		return StandardFairness, true
	}
	return 0, false
}

// StandardScore is the rating and justification for one standard
type StandardScore struct {
	Standard          Standard `json:"-"`
	Name              string   `json:"name"`
	Rating            int      `json:"rating"`
	Justification     string   `json:"justification"`
	FollowupQuestions []string `json:"followup_questions"`
}

// CriticalAssessment holds scores for all eight standards plus the ranked
// priority questions. Scores is a fixed-size array, indexed by Standard,
// so a partially populated assessment cannot be represented.
type CriticalAssessment struct {
	Scores            [NumStandards]StandardScore `json:"scores"`
	SelectedQuestions []string                    `json:"selected_questions"`
}

// StepStatus describes the outcome of one pipeline step
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepFailed
	StepSkippedDisabled
	StepSkippedNoInput
)

// String returns a human-readable status
func (s StepStatus) String() string {
	switch s {
	case StepSuccess:
		return "success"
	case StepFailed:
		return "failed"
	case StepSkippedDisabled:
		return "skipped (disabled)"
	case StepSkippedNoInput:
		return "skipped (no input)"
	default:
		return "unknown"
	}
}

// ProcessingStepRecord captures one attempted or skipped pipeline step
type ProcessingStepRecord struct {
	Step    string        `json:"step"`
	Status  StepStatus    `json:"-"`
	Elapsed time.Duration `json:"-"`
	Detail  string        `json:"detail,omitempty"`
	Err     string        `json:"error,omitempty"`
}

// Succeeded reports whether the step completed successfully
func (r ProcessingStepRecord) Succeeded() bool { return r.Status == StepSuccess }

// AnalysisResult is the terminal envelope for one pipeline run. It is
// assembled exclusively by the Pipeline and never mutated afterwards.
// Optional stages that did not run leave their fields nil.
type AnalysisResult struct {
	Metadata          VideoMetadata
	Transcript        *TranscriptDocument
	Comments          *CommentSet
	TranscriptSummary *TrackSummary
	CommentsSummary   *TrackSummary
	Synthesis         *SynthesisResult
	Assessment        *CriticalAssessment
	Steps             []ProcessingStepRecord
	TotalElapsed      time.Duration
}

// StepCounts returns completed and total step counts for summary metrics
func (r *AnalysisResult) StepCounts() (succeeded, total int) {
	for _, step := range r.Steps {
		if step.Succeeded() {
			succeeded++
		}
	}
	return succeeded, len(r.Steps)
}

// CountWords counts whitespace-separated words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// FormatDuration renders a duration in seconds for reports
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
