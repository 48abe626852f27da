package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	folderEnvVar  = "FOLDER"
	apiBaseURLVar = "API_BASE_URL"
	backendVar    = "STORE_BACKEND"
	secretVar     = "STORE_SECRET"
	timeoutVar    = "HTTP_TIMEOUT"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Medibook")
}

// GetAPIBaseURL returns the base URL of the booking platform's REST API.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetStoreBackend selects the session persistence backend: "file", "sqlite"
// or "memory".
func (EnvVars) GetStoreBackend() string {
	return strings.ToLower(GetEnv(backendVar, "file"))
}

// GetStoreSecret returns the at-rest encryption secret for the file backend.
// Empty means the store is written in the clear.
func (EnvVars) GetStoreSecret() string {
	return GetEnv(secretVar, "")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	raw := GetEnv(timeoutVar, "30s")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
