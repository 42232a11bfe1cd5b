package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the weather checker
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// LLMConfig contains the reasoning backend configuration
type LLMConfig struct {
	Type        string        `mapstructure:"type"` // openai, or any OpenAI-compatible endpoint
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AgentConfig controls the reasoning loop behaviour
type AgentConfig struct {
	Policy        string   `mapstructure:"policy"`    // scripted | llm
	MaxSteps      int      `mapstructure:"max_steps"` // capability invocation ceiling per run
	SigningSecret string   `mapstructure:"signing_secret"`
	RequiredTools []string `mapstructure:"required_tools"`
}

func (a AgentConfig) Validate() error {
	switch a.Policy {
	case "scripted", "llm":
	default:
		return fmt.Errorf("agent.policy must be 'scripted' or 'llm', got %q", a.Policy)
	}
	if a.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be > 0")
	}
	return nil
}

// FetchConfig controls the headless browser fetcher
type FetchConfig struct {
	Type           string `mapstructure:"type"` // chromedp
	TimeoutMS      int    `mapstructure:"timeout_ms"`
	SettleMS       int    `mapstructure:"settle_ms"`
	StrategyWaitMS int    `mapstructure:"strategy_wait_ms"`
	MaxTextNodes   int    `mapstructure:"max_text_nodes"`
	ScreenshotDir  string `mapstructure:"screenshot_dir"`
	UserAgent      string `mapstructure:"user_agent"`
	Headless       bool   `mapstructure:"headless"`
}

func (f FetchConfig) Validate() error {
	if f.TimeoutMS <= 0 {
		return fmt.Errorf("fetch.timeout_ms must be > 0")
	}
	if f.StrategyWaitMS <= 0 {
		return fmt.Errorf("fetch.strategy_wait_ms must be > 0")
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", time.Minute)
	viper.SetDefault("llm.type", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("agent.policy", "scripted")
	viper.SetDefault("agent.max_steps", 3)
	viper.SetDefault("fetch.type", "chromedp")
	viper.SetDefault("fetch.timeout_ms", 15000)
	viper.SetDefault("fetch.settle_ms", 5000)
	viper.SetDefault("fetch.strategy_wait_ms", 3000)
	viper.SetDefault("fetch.max_text_nodes", 400)
	viper.SetDefault("fetch.screenshot_dir", ".")
	viper.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("fetch.headless", true)

	if path == "" {
		viper.AddConfigPath("./config") // path to look for the config file in
		viper.AddConfigPath(".")        // optionally look for config in the working directory
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("WEATHERCHECK")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (WEATHERCHECK_*)

	// Config file is optional; defaults plus env cover the whole surface.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Agent.Validate(); err != nil {
		panic(err)
	}
	if err := config.Fetch.Validate(); err != nil {
		panic(err)
	}
	return &config
}
