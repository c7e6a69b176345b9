package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EvaluationBackendGemini and EvaluationBackendOpenAI select which
// generative backend serves the evaluation and prioritization stages.
const (
	EvaluationBackendGemini = "gemini"
	EvaluationBackendOpenAI = "openai"
)

// PipelineConfig controls which stages run and with what budgets
type PipelineConfig struct {
	MaxComments       int
	MaxCommentWords   int
	NumQuestions      int
	OpenAIModel       string
	OpenAITemperature float64
	GeminiModel       string
	GeminiTemperature float64
	EvaluationBackend string
	Instruction       string
	StageTimeout      time.Duration

	EnableTranscript           bool
	EnableComments             bool
	EnableTranscriptProcessing bool
	EnableCommentsProcessing   bool
	EnableSynthesis            bool
	EnableEvaluation           bool
	EnablePrioritization       bool
	EnableWhisperFallback      bool
}

// DefaultPipelineConfig returns the pipeline defaults, matching the
// embedded config.toml.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxComments:                5000,
		MaxCommentWords:            80000,
		NumQuestions:               6,
		OpenAIModel:                "gpt-4o-mini",
		OpenAITemperature:          0.35,
		GeminiModel:                "gemini-1.5-flash",
		GeminiTemperature:          0.5,
		EvaluationBackend:          EvaluationBackendGemini,
		StageTimeout:               3 * time.Minute,
		EnableTranscript:           true,
		EnableComments:             true,
		EnableTranscriptProcessing: true,
		EnableCommentsProcessing:   true,
		EnableSynthesis:            true,
		EnableEvaluation:           true,
		EnablePrioritization:       true,
	}
}

// Config holds application settings
type Config struct {
	Pipeline PipelineConfig

	// API credentials, loaded once at startup and read-only afterwards
	YouTubeAPIKey string
	OpenAIAPIKey  string
	GeminiAPIKey  string

	Verbose bool
	Quiet   bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

//go:embed config.toml instruction.txt
var defaultFS embed.FS

// ensureDefaultFile creates a file in configDir from the embedded default
// if it does not exist yet
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Printf("Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig materializes the default config.toml in the XDG
// config directory on first run
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultInstruction materializes the default summarization
// instruction in the XDG config directory on first run
func EnsureDefaultInstruction(configDir string) error {
	return ensureDefaultFile(configDir, "instruction.txt", "summarization instruction")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// Local .env, if present, augments the environment before viper reads it
	_ = godotenv.Load()

	configDir := filepath.Join(xdg.ConfigHome, "vidsight")
	dataDir := filepath.Join(xdg.DataHome, "vidsight")
	cacheDir := filepath.Join(xdg.CacheHome, "vidsight")

	v := viper.New()

	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_temperature", 0.35)
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("gemini_temperature", 0.5)
	v.SetDefault("evaluation_backend", EvaluationBackendGemini)
	v.SetDefault("max_comments", 5000)
	v.SetDefault("max_comment_words", 80000)
	v.SetDefault("num_questions", 6)
	v.SetDefault("instruction", "") // empty means use instruction.txt from config dir
	v.SetDefault("stage_timeout", 3*time.Minute)
	v.SetDefault("enable_transcript", true)
	v.SetDefault("enable_comments", true)
	v.SetDefault("enable_transcript_processing", true)
	v.SetDefault("enable_comments_processing", true)
	v.SetDefault("enable_synthesis", true)
	v.SetDefault("enable_evaluation", true)
	v.SetDefault("enable_prioritization", true)
	v.SetDefault("enable_whisper_fallback", false)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("VIDSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("_", "_"))

	// API keys follow the conventional unprefixed variable names too
	_ = v.BindEnv("youtube_api_key", "YOUTUBE_API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GOOGLE_GENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		Pipeline: PipelineConfig{
			MaxComments:                v.GetInt("max_comments"),
			MaxCommentWords:            v.GetInt("max_comment_words"),
			NumQuestions:               v.GetInt("num_questions"),
			OpenAIModel:                v.GetString("openai_model"),
			OpenAITemperature:          v.GetFloat64("openai_temperature"),
			GeminiModel:                v.GetString("gemini_model"),
			GeminiTemperature:          v.GetFloat64("gemini_temperature"),
			EvaluationBackend:          v.GetString("evaluation_backend"),
			Instruction:                v.GetString("instruction"),
			StageTimeout:               v.GetDuration("stage_timeout"),
			EnableTranscript:           v.GetBool("enable_transcript"),
			EnableComments:             v.GetBool("enable_comments"),
			EnableTranscriptProcessing: v.GetBool("enable_transcript_processing"),
			EnableCommentsProcessing:   v.GetBool("enable_comments_processing"),
			EnableSynthesis:            v.GetBool("enable_synthesis"),
			EnableEvaluation:           v.GetBool("enable_evaluation"),
			EnablePrioritization:       v.GetBool("enable_prioritization"),
			EnableWhisperFallback:      v.GetBool("enable_whisper_fallback"),
		},
		YouTubeAPIKey: v.GetString("youtube_api_key"),
		OpenAIAPIKey:  v.GetString("openai_api_key"),
		GeminiAPIKey:  v.GetString("gemini_api_key"),
		Verbose:       v.GetBool("verbose"),
		Quiet:         v.GetBool("quiet"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
	}

	if config.Verbose && v.ConfigFileUsed() != "" {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// ValidateKeys checks that the API keys required by the enabled stages are
// present. Extraction always needs the YouTube key; the backends are only
// required when a stage that calls them is enabled.
func (c *Config) ValidateKeys() error {
	var missing []string
	if c.YouTubeAPIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	p := c.Pipeline
	needsEval := p.EnableEvaluation || p.EnablePrioritization
	if (p.EnableTranscriptProcessing || p.EnableCommentsProcessing ||
		(needsEval && p.EvaluationBackend == EvaluationBackendOpenAI)) && c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if (p.EnableSynthesis || (needsEval && p.EvaluationBackend == EvaluationBackendGemini)) && c.GeminiAPIKey == "" {
		missing = append(missing, "GOOGLE_GENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing API keys: %s - set them in config.toml, .env, or the environment", strings.Join(missing, ", "))
	}
	if p.EvaluationBackend != EvaluationBackendGemini && p.EvaluationBackend != EvaluationBackendOpenAI {
		return fmt.Errorf("unsupported evaluation backend: %s (supported: %s, %s)",
			p.EvaluationBackend, EvaluationBackendGemini, EvaluationBackendOpenAI)
	}
	return nil
}

// DefaultInstruction returns the custom instruction from config, falling
// back to instruction.txt in the config directory
func (c *Config) DefaultInstruction() (string, error) {
	if c.Pipeline.Instruction != "" {
		if IsLikelyFilePath(c.Pipeline.Instruction) && FileExists(c.Pipeline.Instruction) {
			content, err := os.ReadFile(c.Pipeline.Instruction)
			if err != nil {
				return "", fmt.Errorf("reading instruction file: %w", err)
			}
			return string(content), nil
		}
		return c.Pipeline.Instruction, nil
	}

	content, err := os.ReadFile(filepath.Join(c.ConfigDir, "instruction.txt"))
	if err != nil {
		// Fall back to the embedded default when the config dir was never set up
		embedded, embErr := defaultFS.ReadFile("instruction.txt")
		if embErr != nil {
			return "", fmt.Errorf("reading instruction template: %w", err)
		}
		return string(embedded), nil
	}
	return string(content), nil
}
