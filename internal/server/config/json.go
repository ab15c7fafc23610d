package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/michosso/memepump-auth/internal/flagx"
	"github.com/michosso/memepump-auth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	AccessTokenSecret            string         `json:"access_token_secret"`
	RefreshTokenSecret           string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	BotToken                     string         `json:"bot_token"`
	TelegramAPIURL               string         `json:"telegram_api_url"`
	FrontendURL                  string         `json:"frontend_url"`
	PollTimeout                  timex.Duration `json:"poll_timeout"`
	WalletKeySecret              string         `json:"wallet_key_secret"`
	SecureCookies                bool           `json:"secure_cookies"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// A loaded file replaces the whole Config, so JSON files are expected to be
// complete. The caller merges the result with environment variables and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.AccessTokenSecret = c.AccessTokenSecret
	config.RefreshTokenSecret = c.RefreshTokenSecret
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.BotToken = c.BotToken
	config.TelegramAPIURL = c.TelegramAPIURL
	config.FrontendURL = c.FrontendURL
	config.PollTimeout = time.Duration(c.PollTimeout.Duration)
	config.WalletKeySecret = c.WalletKeySecret
	config.SecureCookies = c.SecureCookies
}
