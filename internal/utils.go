package internal

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseArg normalizes a YouTube video URL or bare ID into a VideoReference
func ParseArg(arg string) (VideoReference, error) {
	arg = strings.TrimSpace(arg)

	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		id, err := getVideoID(arg)
		if err != nil {
			return VideoReference{}, err
		}
		return VideoReference{ID: id, URL: "https://www.youtube.com/watch?v=" + id}, nil
	}

	if !IsValidYouTubeID(arg) {
		return VideoReference{}, fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID", arg)
	}
	return VideoReference{ID: arg, URL: "https://www.youtube.com/watch?v=" + arg}, nil
}

// getVideoID extracts the video ID from YouTube URLs
func getVideoID(youtubeURL string) (string, error) {
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	host := strings.TrimPrefix(u.Host, "www.")
	if host != "youtube.com" && host != "youtu.be" && host != "m.youtube.com" {
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if v := u.Query().Get("v"); v != "" {
		if !IsValidYouTubeID(v) {
			return "", fmt.Errorf("invalid video ID in URL: %s", v)
		}
		return v, nil
	}

	// youtu.be/<id>, /embed/<id>, /shorts/<id>
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 {
		candidate := parts[len(parts)-1]
		if IsValidYouTubeID(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("could not extract video ID from URL: %s", youtubeURL)
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a
// file path rather than inline instruction text
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}
	if strings.HasSuffix(s, ".txt") || strings.HasSuffix(s, ".md") ||
		strings.HasSuffix(s, ".tmpl") {
		return true
	}
	if len(s) > 200 {
		return false
	}
	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	if width > 10 {
		return width - 4
	}
	return width
}

// RenderMarkdown renders markdown content for the terminal with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return rendered, nil
}

// truncateForTable flattens a string into something safe for a one-line
// markdown table cell
func truncateForTable(s string, limit int) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
