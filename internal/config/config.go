package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	JWTTokenTTL       time.Duration
	JudgeBaseURL      string
	JudgeAPIKey       string
	JudgeAPIHost      string
	JudgeLanguageID   int
	JudgeTimeout      time.Duration
	JudgePollInterval time.Duration
	SubmitCooldown    time.Duration
	SessionCacheTTL   time.Duration
	AIProvider        string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	HintModel         string
	HintMaxTokens     int
	HintTimeout       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KODELAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "KodeLab API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.token_ttl", "8h")
	v.SetDefault("judge.base_url", "https://judge0-ce.p.rapidapi.com")
	v.SetDefault("judge.language_id", 71)
	v.SetDefault("judge.timeout", "30s")
	v.SetDefault("judge.poll_interval", "900ms")
	v.SetDefault("submit.cooldown", "15s")
	v.SetDefault("session.cache_ttl", "1m")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("hint.model", "gpt-4o-mini")
	v.SetDefault("hint.max_tokens", 450)
	v.SetDefault("hint.timeout", "30s")

	parseDuration := func(key string) (time.Duration, error) {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return parsed, nil
	}

	tokenTTL, err := parseDuration("jwt.token_ttl")
	if err != nil {
		return Config{}, err
	}
	judgeTimeout, err := parseDuration("judge.timeout")
	if err != nil {
		return Config{}, err
	}
	pollInterval, err := parseDuration("judge.poll_interval")
	if err != nil {
		return Config{}, err
	}
	cooldown, err := parseDuration("submit.cooldown")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration("session.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	hintTimeout, err := parseDuration("hint.timeout")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTTokenTTL:       tokenTTL,
		JudgeBaseURL:      strings.TrimRight(v.GetString("judge.base_url"), "/"),
		JudgeAPIKey:       v.GetString("judge.api_key"),
		JudgeAPIHost:      v.GetString("judge.api_host"),
		JudgeLanguageID:   v.GetInt("judge.language_id"),
		JudgeTimeout:      judgeTimeout,
		JudgePollInterval: pollInterval,
		SubmitCooldown:    cooldown,
		SessionCacheTTL:   cacheTTL,
		AIProvider:        strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		AnthropicAPIKey:   v.GetString("anthropic_api_key"),
		HintModel:         v.GetString("hint.model"),
		HintMaxTokens:     v.GetInt("hint.max_tokens"),
		HintTimeout:       hintTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.JudgeLanguageID <= 0 {
		cfg.JudgeLanguageID = 71
	}

	if cfg.HintMaxTokens <= 0 {
		cfg.HintMaxTokens = 450
	}

	if cfg.SubmitCooldown <= 0 {
		cfg.SubmitCooldown = 15 * time.Second
	}

	return cfg, nil
}
