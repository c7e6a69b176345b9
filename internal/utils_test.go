package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		name   string
		arg    string
		wantID string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile URL", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare ID", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"ID with whitespace", "  dQw4w9WgXcQ ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseArg(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ref.ID)
			assert.Equal(t, "https://www.youtube.com/watch?v="+tt.wantID, ref.URL)
		})
	}
}

func TestParseArg_Invalid(t *testing.T) {
	for _, arg := range []string{
		"",
		"not-an-id",
		"https://vimeo.com/12345",
		"https://www.youtube.com/watch?v=tooshort",
		"mcp",
	} {
		_, err := ParseArg(arg)
		assert.Error(t, err, "arg %q", arg)
	}
}

func TestIsValidYouTubeID(t *testing.T) {
	assert.True(t, IsValidYouTubeID("dQw4w9WgXcQ"))
	assert.True(t, IsValidYouTubeID("a-b_c123XYZ"))
	assert.False(t, IsValidYouTubeID("short"))
	assert.False(t, IsValidYouTubeID("exactly12chr"))
	assert.False(t, IsValidYouTubeID("has spaces!"))
}

func TestIsLikelyFilePath(t *testing.T) {
	assert.True(t, IsLikelyFilePath("/etc/instruction.txt"))
	assert.True(t, IsLikelyFilePath("notes.md"))
	assert.True(t, IsLikelyFilePath("instruction.txt"))
	assert.False(t, IsLikelyFilePath("Summarize the key claims"))
	assert.False(t, IsLikelyFilePath("one\ntwo"))
}

func TestTruncateForTable(t *testing.T) {
	assert.Equal(t, "a\\|b c", truncateForTable("a|b\nc", 20))
	assert.Equal(t, "abcde...", truncateForTable("abcdefgh", 5))
	assert.Equal(t, "short", truncateForTable("short", 20))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   \n\t"))
	assert.Equal(t, 3, CountWords("one  two\nthree"))
}
