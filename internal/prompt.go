package internal

import (
	"fmt"
	"strings"
)

// buildTranscriptPrompt assembles the transcript-track summarization prompt
func buildTranscriptPrompt(instruction string, metadata VideoMetadata, transcript *TranscriptDocument) string {
	var sb strings.Builder
	sb.WriteString("Given the following transcript of a video, follow this instruction: ")
	sb.WriteString(strings.TrimSpace(instruction))
	sb.WriteString("\n\n")
	if metadata.Title != "" {
		fmt.Fprintf(&sb, "Video: %s\nChannel: %s\n\n", metadata.Title, metadata.Channel)
	}
	sb.WriteString("Transcript:\n\n")
	sb.WriteString(transcript.Text())
	sb.WriteString("\n")
	return sb.String()
}

// buildCommentsPrompt assembles the comments-track summarization prompt
func buildCommentsPrompt(comments *CommentSet) string {
	var sb strings.Builder
	sb.WriteString("Given the following user comments in their native language, " +
		"understand the problem and core insights around the subject. " +
		"Summarise the information so it includes core insights, guidelines, and opportunities useful in context. " +
		"Structure the output as prioritised bullet points, ranked by topic hotness and like count. " +
		"Capture concrete facts: prices, tools, technologies, locations, people, organizations, financial data, and links.\n\n")
	sb.WriteString("Comments and like counts:\n\n")
	for _, comment := range comments.Comments {
		fmt.Fprintf(&sb, "[%d likes] %s: %s\n", comment.LikeCount, comment.Author, comment.Text)
	}
	return sb.String()
}

// compressionPrompt is the synthesis-stage template. The stage fills in
// whichever track summaries exist.
const compressionPrompt = `Extract maximum value through rigorous intellectual processing before communicating. Identify essential concepts by first thinking deeply about what would save the recipient cognitive effort.

Process:

- Analyze for conceptual redundancies and merge related ideas
- Structure content in a problem-to-solution narrative arc
- Eliminate cliches and repetitive phrasing
- Discard information that doesn't contribute meaningful depth

Deliver:

1. A 3-10 word headline, primarily nouns, as the first line, formatted as a markdown heading.
2. Minimal bullet points preserving only vital information.

Remember: the value lies not in what you include, but in what you've thoughtfully eliminated through deep analysis.

Here is the input:

===
Summary of the topic or claims made by the speaker:

%s

===
Summary of community comments on the topic:

%s
`

// buildCompressionPrompt fills the synthesis template with the available
// summaries
func buildCompressionPrompt(transcriptSummary, commentsSummary string) string {
	if transcriptSummary == "" {
		transcriptSummary = "No transcript summary available."
	}
	if commentsSummary == "" {
		commentsSummary = "No comments summary available."
	}
	return fmt.Sprintf(compressionPrompt, transcriptSummary, commentsSummary)
}

// evaluationPrompt asks for a JSON assessment against the eight fixed
// critical-thinking standards. The response shape is validated by the
// evaluation stage.
const evaluationPrompt = `Assess the content below against the eight critical thinking standards: Clarity, Accuracy, Precision, Depth, Breadth, Logic, Significance, Fairness.

For each standard provide:
- "name": the standard name, exactly as listed above
- "justification": a short evaluation of how the content meets or misses the standard
- "rating": an integer from 1 (poor) to 10 (excellent)
- "followup_questions": questions that would raise the content to a higher standard

Guidance per standard:
- Clarity: could the content be elaborated or illustrated with examples? Vague claims need unpacking.
- Accuracy: how could the claims be checked, verified, or tested?
- Precision: where would more specifics, details, or exact figures help?
- Depth: what complexities and difficulties does the content gloss over?
- Breadth: which relevant viewpoints, especially opposing ones, are missing?
- Logic: do the parts fit together, and do conclusions follow from the evidence?
- Significance: is this the most important problem and the central idea to focus on?
- Fairness: are assumptions justified by evidence, or distorted by self-interest?

Respond with a JSON object of the form:
{"standards": [{"name": "...", "justification": "...", "rating": 7, "followup_questions": ["..."]}]}
Include exactly one entry for each of the eight standards. Output JSON only.

Here is the content to assess:

===
Synthesized insights:

%s

===
Summary of the topic or claims made by the speaker:

%s

===
Summary of community comments on the topic:

%s
`

// strictEvaluationSuffix is appended when the first response fails
// validation
const strictEvaluationSuffix = `

IMPORTANT: the previous response was rejected. Return a single JSON object with a "standards" array of EXACTLY eight entries, one per standard named above, each with an integer "rating" between 1 and 10 inclusive. No markdown, no commentary, JSON only.`

// buildEvaluationPrompt fills the evaluation template
func buildEvaluationPrompt(synthesis *SynthesisResult, transcriptSummary, commentsSummary string, strict bool) string {
	if transcriptSummary == "" {
		transcriptSummary = "No transcript summary available."
	}
	if commentsSummary == "" {
		commentsSummary = "No comments summary available."
	}
	prompt := fmt.Sprintf(evaluationPrompt, synthesis.Raw, transcriptSummary, commentsSummary)
	if strict {
		prompt += strictEvaluationSuffix
	}
	return prompt
}

// buildPrioritizationPrompt asks the backend to rank candidate follow-up
// questions by expected research value
func buildPrioritizationPrompt(synthesis *SynthesisResult, candidates []string, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From the candidate follow-up questions below, select the %d with the highest expected research value: "+
		"the questions whose answers would most improve understanding of the content. "+
		"Prefer coverage across different critical thinking standards over near-duplicates.\n\n", n)
	sb.WriteString("Content under analysis:\n\n")
	sb.WriteString(synthesis.Raw)
	sb.WriteString("\n\nCandidate questions:\n\n")
	for i, question := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, question)
	}
	fmt.Fprintf(&sb, "\nRespond with the selected questions only, one per line, most valuable first, at most %d lines. "+
		"Repeat each question verbatim with no numbering or commentary.\n", n)
	return sb.String()
}
