package config

import "time"

// File locations
const (
	// ConfigFileEnv names the environment variable pointing at the YAML config
	ConfigFileEnv = "OSVILLAGE_CONFIG_FILE"
	// DefaultConfigFile is read from the working directory when ConfigFileEnv is unset
	DefaultConfigFile = "config.yaml"
)

// Server defaults
const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = "8000"
	DefaultCORSOrigin = "http://localhost:3000"

	// DefaultServiceName is reported to OpenTelemetry when none is configured
	DefaultServiceName = "osvillage-backend"
)

// Timeout constants
const (
	// HTTP timeouts
	ServerReadHeaderTimeout = 10 * time.Second
	ServerShutdownTimeout   = 30 * time.Second

	// AIRequestTimeout bounds one chat-completion round trip
	AIRequestTimeout = 60 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute
)

// AI provider defaults
const (
	DefaultAIModel   = "glm-4"
	DefaultAIBaseURL = "https://open.bigmodel.cn/api/paas/v4/"
)

// Game defaults
const (
	// DefaultExpectedGameTypes is the fixed number of games in the village
	DefaultExpectedGameTypes = 6
	DefaultHistoryLimit      = 10
	MaxHistoryLimit          = 100

	// DefaultLevel is assigned to sessions started without a level
	DefaultLevel = "beginner"
)

// Security configuration constants
const (
	// Content Security Policy for a JSON-only API
	DefaultCSP = "default-src 'none'; frame-ancestors 'none'"
)
