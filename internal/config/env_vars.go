package config

import (
	"fmt"
	"os"
	"time"
)

const (
	baseURLVar     = "HMS_BASE_URL"
	timeoutVar     = "HMS_REQUEST_TIMEOUT"
	sessionFileVar = "HMS_SESSION_FILE"
	logLevelVar    = "HMS_LOG_LEVEL"

	portVar        = "PORT"
	tokenSecretVar = "HMS_TOKEN_SECRET"
	accessTTLVar   = "HMS_ACCESS_TOKEN_TTL"
	refreshTTLVar  = "HMS_REFRESH_TOKEN_TTL"
	seedFileVar    = "HMS_SEED_FILE"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return getDuration(timeoutVar, 10*time.Second)
}

func (EnvVars) GetSessionFile() string {
	return GetEnv(sessionFileVar, ".hms-session.json")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetPort() string {
	port := GetEnv(portVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetTokenSecret returns the devserver's JWT signing secret. The default is
// fine for local development; set the variable when the port is shared.
func (EnvVars) GetTokenSecret() string {
	return GetEnv(tokenSecretVar, "hms-devserver-secret")
}

func (EnvVars) GetAccessTokenExpiry() time.Duration {
	return getDuration(accessTTLVar, 15*time.Minute)
}

func (EnvVars) GetRefreshTokenExpiry() time.Duration {
	return getDuration(refreshTTLVar, 7*24*time.Hour)
}

func (EnvVars) GetSeedFile() string {
	return GetEnv(seedFileVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
