package config

import "time"

type Config interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetDataFolder() string
	GetStoreBackend() string
	GetStoreSecret() string
	GetHTTPTimeout() time.Duration
	GetPort() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
