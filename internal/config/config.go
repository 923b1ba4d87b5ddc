package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the api and bot processes.
type Config struct {
	Addr               string
	ConfirmAddr        string
	MongoURI           string
	MongoDatabase      string
	PingCollection     string
	UketsukeCollection string
	Timeout            time.Duration
	Timezone           string
	ServerLog          *log.Logger
	BotLog             *log.Logger
	JWTConfigs         []JWTConfig
	JWTAudience        string
	AllowedOrigins     []string
	AppBaseURL         string
	ConfirmEndpoint    string
	SlackBotToken      string
	SlackAppToken      string
	SlackDebug         bool
	AnthropicAPIKey    string
	AnthropicModel     string
	ExtractMaxTokens   int64
	ExtractTimeout     time.Duration
	LegacyLinks        bool
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	extractTimeout := 60 * time.Second
	if raw := strings.TrimSpace(os.Getenv("EXTRACT_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			extractTimeout = parsed
		}
	}

	appBaseURL := strings.TrimSpace(os.Getenv("APP_BASE_URL"))
	if appBaseURL == "" {
		appBaseURL = "http://localhost:8080"
	}

	confirmEndpoint := strings.TrimSpace(os.Getenv("CONFIRM_ENDPOINT"))
	if confirmEndpoint == "" {
		confirmEndpoint = "http://localhost:3001/api/confirm"
	}

	// 受付表リンクはスレッド共有前提のため認証は任意。秘密鍵が設定されて
	// いるときだけ書き込み系エンドポイントを JWT で守る。
	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "uketsuke-auth"),
			Secret: []byte(secret),
		})
	}

	cfg := Config{
		Addr:               envOrDefault("HTTP_ADDR", ":8080"),
		ConfirmAddr:        envOrDefault("CONFIRM_ADDR", ":3001"),
		MongoURI:           envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:      envOrDefault("MONGO_DB", "uketsuke"),
		PingCollection:     envOrDefault("PING_COLLECTION", "pings"),
		UketsukeCollection: envOrDefault("UKETSUKE_COLLECTION", "uketsuke"),
		Timeout:            timeout,
		Timezone:           envOrDefault("TIMEZONE", "Asia/Tokyo"),
		ServerLog:          log.New(os.Stdout, "[uketsuke-api] ", log.LstdFlags|log.Lshortfile),
		BotLog:             log.New(os.Stdout, "[uketsuke-bot] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:         jwtConfigs,
		JWTAudience:        strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AllowedOrigins:     parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		AppBaseURL:         appBaseURL,
		ConfirmEndpoint:    confirmEndpoint,
		SlackBotToken:      strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")),
		SlackAppToken:      strings.TrimSpace(os.Getenv("SLACK_APP_TOKEN")),
		SlackDebug:         strings.EqualFold(strings.TrimSpace(os.Getenv("SLACK_DEBUG")), "true"),
		AnthropicAPIKey:    strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:     strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL")),
		ExtractMaxTokens:   2048,
		ExtractTimeout:     extractTimeout,
		LegacyLinks:        strings.EqualFold(strings.TrimSpace(os.Getenv("UKETSUKE_LEGACY_LINKS")), "true"),
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
