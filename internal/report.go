package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarkdownReport renders the analysis as a markdown document with a
// fixed section order. It reads only the result, so rendering the same
// result twice yields identical output.
func MarkdownReport(result *AnalysisResult) string {
	var sb strings.Builder
	meta := result.Metadata

	fmt.Fprintf(&sb, "# %s\n\n", meta.Title)
	fmt.Fprintf(&sb, "- **Channel**: %s\n", meta.Channel)
	if !meta.PublishedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Published**: %s\n", meta.PublishedAt.Format("2006-01-02"))
	}
	if meta.Duration > 0 {
		fmt.Fprintf(&sb, "- **Duration**: %s\n", formatVideoDuration(meta.Duration))
	}
	fmt.Fprintf(&sb, "- **Views**: %d\n", meta.ViewCount)
	fmt.Fprintf(&sb, "- **Likes**: %d\n", meta.LikeCount)
	fmt.Fprintf(&sb, "- **URL**: %s\n\n", meta.URL)

	sb.WriteString("## Extraction\n\n")
	if result.Transcript != nil {
		fmt.Fprintf(&sb, "- Transcript: %d words (%s)\n", result.Transcript.WordCount, result.Transcript.Source)
	} else {
		sb.WriteString("- Transcript: not available\n")
	}
	if result.Comments != nil {
		fmt.Fprintf(&sb, "- Comments: %d retained, %d words\n", len(result.Comments.Comments), result.Comments.TotalWordCount)
	} else {
		sb.WriteString("- Comments: not available\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Key Insights\n\n")
	switch {
	case result.Synthesis != nil:
		if result.Synthesis.Headline != "" {
			fmt.Fprintf(&sb, "**%s**\n\n", result.Synthesis.Headline)
		}
		for _, bullet := range result.Synthesis.Bullets {
			fmt.Fprintf(&sb, "- %s\n", bullet)
		}
		sb.WriteString("\n")
	case result.TranscriptSummary != nil || result.CommentsSummary != nil:
		if result.TranscriptSummary != nil {
			fmt.Fprintf(&sb, "### Transcript\n\n%s\n\n", result.TranscriptSummary.Summary)
		}
		if result.CommentsSummary != nil {
			fmt.Fprintf(&sb, "### Comments\n\n%s\n\n", result.CommentsSummary.Summary)
		}
	default:
		sb.WriteString("No insights were produced.\n\n")
	}

	if result.Assessment != nil && len(result.Assessment.SelectedQuestions) > 0 {
		sb.WriteString("## Priority Questions\n\n")
		for i, question := range result.Assessment.SelectedQuestions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, question)
		}
		sb.WriteString("\n")
	}

	if result.Assessment != nil {
		sb.WriteString("## Critical Thinking Assessment\n\n")
		sb.WriteString("| Standard | Rating | Justification |\n")
		sb.WriteString("|----------|-------:|---------------|\n")
		for _, score := range result.Assessment.Scores {
			fmt.Fprintf(&sb, "| %s | %d/10 | %s |\n",
				score.Name, score.Rating, truncateForTable(score.Justification, 160))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Processing Steps\n\n")
	sb.WriteString("| Step | Status | Time | Detail |\n")
	sb.WriteString("|------|--------|-----:|--------|\n")
	for _, step := range result.Steps {
		elapsed := "-"
		if step.Status == StepSuccess || step.Status == StepFailed {
			elapsed = FormatDuration(step.Elapsed)
		}
		detail := step.Detail
		if step.Err != "" {
			detail = step.Err
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			step.Step, step.Status, elapsed, truncateForTable(detail, 80))
	}
	sb.WriteString("\n")

	succeeded, total := result.StepCounts()
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Steps completed: %d/%d\n", succeeded, total)
	fmt.Fprintf(&sb, "- Total processing time: %s\n", FormatDuration(result.TotalElapsed))

	return sb.String()
}

// jsonAssessment mirrors CriticalAssessment with the fixed-size array
// flattened for serialization
type jsonAssessment struct {
	Standards         []StandardScore `json:"standards"`
	SelectedQuestions []string        `json:"selected_questions"`
}

type jsonReport struct {
	VideoMetadata       VideoMetadata    `json:"video_metadata"`
	CompressedSummary   *SynthesisResult `json:"compressed_summary"`
	CriticalAssessment  *jsonAssessment  `json:"critical_assessment"`
	TotalProcessingTime string           `json:"total_processing_time"`
}

// JSONReport renders the analysis as an indented JSON document. Stages
// that did not run serialize as null.
func JSONReport(result *AnalysisResult) (string, error) {
	report := jsonReport{
		VideoMetadata:       result.Metadata,
		CompressedSummary:   result.Synthesis,
		TotalProcessingTime: FormatDuration(result.TotalElapsed),
	}
	if result.Assessment != nil {
		assessment := &jsonAssessment{
			Standards:         result.Assessment.Scores[:],
			SelectedQuestions: result.Assessment.SelectedQuestions,
		}
		if assessment.SelectedQuestions == nil {
			assessment.SelectedQuestions = []string{}
		}
		report.CriticalAssessment = assessment
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(data) + "\n", nil
}

// ConsoleReport renders the markdown report styled for the terminal,
// falling back to plain markdown if the renderer fails
func ConsoleReport(result *AnalysisResult) string {
	md := MarkdownReport(result)
	rendered, err := RenderMarkdown(md)
	if err != nil {
		return md
	}
	return rendered
}

// formatVideoDuration renders a video length in h/m/s form
func formatVideoDuration(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
