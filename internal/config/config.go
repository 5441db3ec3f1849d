package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andriansah/cf-dashboard/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                         string
	ServiceName                    string
	ServiceVersion                 string
	HTTPAddr                       string
	ReadTimeout                    time.Duration
	WriteTimeout                   time.Duration
	CORSAllowedOrigins             []string
	LogLevel                       logging.Level
	CodeforcesBaseURL              string
	CodeforcesTimeout              time.Duration
	CodeforcesCacheTTL             time.Duration
	CodeforcesMinRequestInterval   time.Duration
	CodeforcesPageSize             int
	CodeforcesCircuitEnabled       bool
	CodeforcesCircuitFailureCount  int
	CodeforcesCircuitOpenTimeout   time.Duration
	CodeforcesCircuitHalfOpenMax   int
	PerformanceMaxWorkers          int
	PerformanceMaxContests         int
	SettingsPath                   string
	PprofEnabled                   bool
	PprofAddr                      string
	UptraceEnabled                 bool
	UptraceDSN                     string
	PyroscopeEnabled               bool
	PyroscopeServerAddress         string
	PyroscopeAppName               string
	PyroscopeAuthToken             string
	PyroscopeUploadRate            time.Duration
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfTimeout, err := time.ParseDuration(getEnv("CODEFORCES_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_TIMEOUT: %w", err)
	}
	if cfTimeout <= 0 {
		return Config{}, fmt.Errorf("CODEFORCES_TIMEOUT must be > 0")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CODEFORCES_CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CODEFORCES_CACHE_TTL must be > 0")
	}

	minInterval, err := time.ParseDuration(getEnv("CODEFORCES_MIN_REQUEST_INTERVAL", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_MIN_REQUEST_INTERVAL: %w", err)
	}
	if minInterval < 0 {
		return Config{}, fmt.Errorf("CODEFORCES_MIN_REQUEST_INTERVAL must be >= 0")
	}

	pageSize, err := getEnvAsInt("CODEFORCES_PAGE_SIZE", 10000)
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_PAGE_SIZE: %w", err)
	}
	if pageSize < 1 {
		return Config{}, fmt.Errorf("CODEFORCES_PAGE_SIZE must be >= 1")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("CODEFORCES_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("CODEFORCES_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CODEFORCES_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("CODEFORCES_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CODEFORCES_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMax, err := getEnvAsInt("CODEFORCES_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CODEFORCES_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("CODEFORCES_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	performanceMaxWorkers, err := getEnvAsInt("PERFORMANCE_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse PERFORMANCE_MAX_WORKERS: %w", err)
	}
	if performanceMaxWorkers < 1 {
		return Config{}, fmt.Errorf("PERFORMANCE_MAX_WORKERS must be >= 1")
	}
	performanceMaxContests, err := getEnvAsInt("PERFORMANCE_MAX_CONTESTS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse PERFORMANCE_MAX_CONTESTS: %w", err)
	}
	if performanceMaxContests < 1 {
		return Config{}, fmt.Errorf("PERFORMANCE_MAX_CONTESTS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "cf-dashboard-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		CodeforcesBaseURL:             getEnv("CODEFORCES_BASE_URL", "https://codeforces.com/api"),
		CodeforcesTimeout:             cfTimeout,
		CodeforcesCacheTTL:            cacheTTL,
		CodeforcesMinRequestInterval:  minInterval,
		CodeforcesPageSize:            pageSize,
		CodeforcesCircuitEnabled:      circuitEnabled,
		CodeforcesCircuitFailureCount: circuitFailureCount,
		CodeforcesCircuitOpenTimeout:  circuitOpenTimeout,
		CodeforcesCircuitHalfOpenMax:  circuitHalfOpenMax,
		PerformanceMaxWorkers:         performanceMaxWorkers,
		PerformanceMaxContests:        performanceMaxContests,
		SettingsPath:                  strings.TrimSpace(getEnv("SETTINGS_PATH", "")),
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
