package config

import "time"

type Config interface {
	ClientConfig
	DevServerConfig
}

// ClientConfig configures the SDK side: where the backend lives and where
// the session snapshot is persisted.
type ClientConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetSessionFile() string
	GetLogLevel() string
}

// DevServerConfig configures the development backend.
type DevServerConfig interface {
	GetPort() string
	GetTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetSeedFile() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
