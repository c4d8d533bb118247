package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/adpulse/adpulse/internal/llm"
)

// AppConfig is the full application configuration, loaded from the config
// file, environment variables (ADPULSE_*) and defaults.
type AppConfig struct {
	DataDir string        `mapstructure:"dataDir" validate:"required"`
	Verbose bool          `mapstructure:"verbose"`
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Tracker TrackerConfig `mapstructure:"tracker"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// LLMConfig selects and authenticates the chat-model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=openai ollama anthropic gemini"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"apiKey"`
	BaseURL  string `mapstructure:"baseUrl"`
}

// AgentConfig configures the conversational agent.
type AgentConfig struct {
	Category     string `mapstructure:"category"`
	MaxTurns     int    `mapstructure:"maxTurns" validate:"min=1,max=20"`
	TemplatesDir string `mapstructure:"templatesDir"`
}

// TrackerConfig points the collector at the external tracker API. An empty
// BaseURL disables scheduled collection.
type TrackerConfig struct {
	BaseURL     string `mapstructure:"baseUrl"`
	APIKey      string `mapstructure:"apiKey"`
	PollMinutes int    `mapstructure:"pollMinutes" validate:"min=1"`
}

var validate = validator.New()

// SetDefaults registers every default on v. Called once before flags and
// config files are read.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dataDir", DefaultDataDir)
	v.SetDefault("verbose", false)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("llm.provider", string(llm.DefaultProvider))
	v.SetDefault("llm.model", "")
	v.SetDefault("agent.category", DefaultAgentCategory)
	v.SetDefault("agent.maxTurns", DefaultAgentMaxTurns)
	v.SetDefault("tracker.pollMinutes", DefaultTrackerPollMinutes)
}

// Load reads configuration from cfgFile (or the default search path when
// empty), layered under ADPULSE_* environment variables, and validates the
// result. A missing config file is not an error; everything can come from
// env and defaults.
func Load(cfgFile string) (*AppConfig, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
