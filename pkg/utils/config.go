package utils

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig carries everything cmd/api-server needs beyond the database
// path (which pkg/database resolves itself). Values come from BOOKHUB_* env
// vars, with an optional config.yaml in the working directory for local dev.
type ServerConfig struct {
	HTTPAddr        string
	ProviderBaseURL string
	ProviderAPIKey  string
	ProviderTimeout time.Duration
	SearchCooldown  time.Duration
}

func LoadServerConfig() ServerConfig {
	v := viper.New()
	v.SetEnvPrefix("BOOKHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("provider_base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("provider_api_key", "")
	v.SetDefault("provider_timeout", "10s")
	v.SetDefault("search_cooldown", "60s")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	// missing config.yaml is fine; env + defaults cover everything
	_ = v.ReadInConfig()

	return ServerConfig{
		HTTPAddr:        v.GetString("http_addr"),
		ProviderBaseURL: v.GetString("provider_base_url"),
		ProviderAPIKey:  v.GetString("provider_api_key"),
		ProviderTimeout: v.GetDuration("provider_timeout"),
		SearchCooldown:  v.GetDuration("search_cooldown"),
	}
}
