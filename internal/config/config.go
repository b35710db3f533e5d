package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/party-leaderboard/internal/platform/resilience"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	CORSAllowedOrigins         []string
	SwaggerEnabled             bool
	AdminKey                   string
	PublicBaseURL              string
	StoreDriver                string
	StoreSeed                  bool
	DBURL                      string
	DBBinaryParameters         bool
	StoreListenEnabled         bool
	StoreListenChannel         string
	StoreCircuit               resilience.CircuitBreakerConfig
	HighlightDuration          time.Duration
	SnapshotCachePath          string
	DirectoryPath              string
	StreamBuffer               int
	MinigameSessionTTL         time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	adminKey := strings.TrimSpace(getEnv("ADMIN_KEY", ""))
	if adminKey == "" && appEnv == EnvProd {
		return Config{}, fmt.Errorf("ADMIN_KEY is required when APP_ENV=%s", EnvProd)
	}

	storeDriver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreDriverMemory)))
	if storeDriver != StoreDriverMemory && storeDriver != StoreDriverPostgres {
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", storeDriver, StoreDriverMemory, StoreDriverPostgres)
	}
	storeSeed, err := strconv.ParseBool(getEnv("STORE_SEED", strconv.FormatBool(storeDriver == StoreDriverMemory)))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_SEED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeDriver == StoreDriverPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
	}
	dbBinaryParameters, err := strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}
	listenEnabled, err := strconv.ParseBool(getEnv("STORE_LISTEN_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_LISTEN_ENABLED: %w", err)
	}

	storeCircuitEnabled, err := strconv.ParseBool(getEnv("STORE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_ENABLED: %w", err)
	}
	storeCircuitFailureCount, err := getEnvAsInt("STORE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if storeCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STORE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	storeCircuitOpenTimeout, err := time.ParseDuration(getEnv("STORE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if storeCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STORE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	storeCircuitHalfOpenMaxReq, err := getEnvAsInt("STORE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if storeCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STORE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	highlightDuration, err := time.ParseDuration(getEnv("HIGHLIGHT_DURATION", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HIGHLIGHT_DURATION: %w", err)
	}
	if highlightDuration <= 0 {
		return Config{}, fmt.Errorf("HIGHLIGHT_DURATION must be > 0")
	}
	streamBuffer, err := getEnvAsInt("STREAM_BUFFER", 16)
	if err != nil {
		return Config{}, fmt.Errorf("parse STREAM_BUFFER: %w", err)
	}
	if streamBuffer < 1 {
		return Config{}, fmt.Errorf("STREAM_BUFFER must be >= 1")
	}
	minigameTTL, err := time.ParseDuration(getEnv("MINIGAME_SESSION_TTL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MINIGAME_SESSION_TTL: %w", err)
	}
	if minigameTTL <= 0 {
		return Config{}, fmt.Errorf("MINIGAME_SESSION_TTL must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel, ok := logging.ParseLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))
	if !ok {
		return Config{}, fmt.Errorf("invalid BETTERSTACK_MIN_LEVEL %q", os.Getenv("BETTERSTACK_MIN_LEVEL"))
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
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

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	logLevel, ok := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if !ok {
		return Config{}, fmt.Errorf("invalid APP_LOG_LEVEL %q", os.Getenv("APP_LOG_LEVEL"))
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "party-leaderboard"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:     swaggerEnabled,
		AdminKey:           adminKey,
		PublicBaseURL:      strings.TrimSpace(getEnv("PUBLIC_BASE_URL", "")),
		StoreDriver:        storeDriver,
		StoreSeed:          storeSeed,
		DBURL:              dbURL,
		DBBinaryParameters: dbBinaryParameters,
		StoreListenEnabled: listenEnabled,
		StoreListenChannel: strings.TrimSpace(getEnv("STORE_LISTEN_CHANNEL", "roster_changes")),
		StoreCircuit: resilience.CircuitBreakerConfig{
			Enabled:          storeCircuitEnabled,
			FailureThreshold: storeCircuitFailureCount,
			OpenTimeout:      storeCircuitOpenTimeout,
			HalfOpenMaxReq:   storeCircuitHalfOpenMaxReq,
		},
		HighlightDuration:          highlightDuration,
		SnapshotCachePath:          strings.TrimSpace(getEnv("SNAPSHOT_CACHE_PATH", "")),
		DirectoryPath:              strings.TrimSpace(getEnv("DIRECTORY_PATH", "")),
		StreamBuffer:               streamBuffer,
		MinigameSessionTTL:         minigameTTL,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		BetterStackEnabled:         betterStackEnabled,
		BetterStackEndpoint:        betterStackEndpoint,
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:         betterStackTimeout,
		BetterStackMinLevel:        betterStackMinLevel,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   logLevel,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.StoreListenChannel == "" {
		return Config{}, fmt.Errorf("STORE_LISTEN_CHANNEL cannot be empty")
	}

	return cfg, nil
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

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
