package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unlike the
// JSON overlay, only variables that are actually set override anything, so
// the environment can patch single values. Duration variables accept
// time.ParseDuration syntax ("15m", "168h"); invalid values panic.
func parseEnv(config *Config) {
	setString := func(name string, target *string) {
		if v, ok := os.LookupEnv(name); ok {
			*target = v
		}
	}
	setDuration := func(name string, target *time.Duration) {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*target = d
		}
	}

	setString("ENDPOINT_ADDR", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("ACCESS_TOKEN_SECRET", &config.AccessTokenSecret)
	setString("REFRESH_TOKEN_SECRET", &config.RefreshTokenSecret)
	setDuration("ACCESS_TOKEN_VALIDITY_DURATION", &config.AccessTokenValidityDuration)
	setDuration("REFRESH_TOKEN_VALIDITY_DURATION", &config.RefreshTokenValidityDuration)
	setString("TELEGRAM_BOT_TOKEN", &config.BotToken)
	setString("TELEGRAM_API_URL", &config.TelegramAPIURL)
	setString("FRONTEND_URL", &config.FrontendURL)
	setDuration("POLL_TIMEOUT", &config.PollTimeout)
	setString("WALLET_KEY_SECRET", &config.WalletKeySecret)

	if v, ok := os.LookupEnv("SECURE_COOKIES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SecureCookies = b
	}
}
