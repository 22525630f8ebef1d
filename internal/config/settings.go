package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings holds everything that comes from the process environment.
// Secrets never live in the const block.
type Settings struct {
	IsProd     bool
	LogLevel   slog.Level
	ListenAddr string

	RedisAddr     string
	RedisPassword string

	AuthToken    string
	NoAuthBypass bool

	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	GeminiModel    string
	OpenAIModel    string
	AnthropicModel string

	NarrativeProvider  string
	TableProvider      string
	ClassifierProvider string

	TuningFile string
}

// LoadSettings reads an optional .env file and then the environment.
// Values already present in the environment win over the file.
func LoadSettings(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, err
		}
	}

	s := Settings{
		IsProd:     boolEnv("IS_PROD", IS_PROD),
		LogLevel:   levelEnv("LOG_LEVEL", slog.LevelDebug),
		ListenAddr: stringEnv("LISTEN_ADDR", ServerListenAddr),

		RedisAddr:     stringEnv("REDIS_ADDR", RedisAddr),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AuthToken:    os.Getenv("AUTH_TOKEN"),
		NoAuthBypass: boolEnv("NO_AUTH_BYPASS", false),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		GeminiModel:    stringEnv("GEMINI_MODEL", GeminiModelName),
		OpenAIModel:    stringEnv("OPENAI_MODEL", OpenAIModelName),
		AnthropicModel: stringEnv("ANTHROPIC_MODEL", AnthropicModelName),

		NarrativeProvider:  strings.ToLower(stringEnv("NARRATIVE_PROVIDER", ProviderAnthropic)),
		TableProvider:      strings.ToLower(stringEnv("TABLE_PROVIDER", ProviderGemini)),
		ClassifierProvider: strings.ToLower(stringEnv("CLASSIFIER_PROVIDER", ProviderAnthropic)),

		TuningFile: os.Getenv("TUNING_FILE"),
	}
	if s.IsProd && !s.NoAuthBypass && s.AuthToken == "" {
		return s, errors.New("AUTH_TOKEN must be set in production")
	}
	return s, nil
}

// APIKey returns the key configured for the named provider.
func (s Settings) APIKey(provider string) string {
	switch provider {
	case ProviderGemini:
		return s.GeminiAPIKey
	case ProviderOpenAI:
		return s.OpenAIAPIKey
	case ProviderAnthropic:
		return s.AnthropicAPIKey
	}
	return ""
}

// Model returns the model name configured for the named provider.
func (s Settings) Model(provider string) string {
	switch provider {
	case ProviderGemini:
		return s.GeminiModel
	case ProviderOpenAI:
		return s.OpenAIModel
	case ProviderAnthropic:
		return s.AnthropicModel
	}
	return ""
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func levelEnv(key string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return level
}
