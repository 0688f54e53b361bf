package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

// Config stores runtime configuration for the room service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	LogLevel           logging.Level

	RoomCommandPrefix string
	RoomMaxScore      int
	RoomSnapCooldown  time.Duration
	RoomInboxSize     int
	RoomToken         string
	RoomChatLogLimit  int

	RoomHostEnabled               bool
	RoomHostBaseURL               string
	RoomHostToken                 string
	RoomHostTimeout               time.Duration
	RoomHostWorkers               int
	RoomHostQueueSize             int
	RoomHostCircuitEnabled        bool
	RoomHostCircuitFailureCount   int
	RoomHostCircuitOpenTimeout    time.Duration
	RoomHostCircuitHalfOpenMaxReq int

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
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

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	room, err := loadRoom()
	if err != nil {
		return Config{}, err
	}

	if err := loadRoomHost(&room); err != nil {
		return Config{}, err
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

	cfg := room
	cfg.AppEnv = appEnv
	cfg.ServiceName = getEnv("APP_SERVICE_NAME", "haxfootball-room")
	cfg.ServiceVersion = getEnv("APP_SERVICE_VERSION", "dev")
	cfg.HTTPAddr = getEnv("APP_HTTP_ADDR", ":8080")
	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	cfg.SwaggerEnabled = swaggerEnabled
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))
	cfg.PprofEnabled = pprofEnabled
	cfg.PprofAddr = pprofAddr
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = uptraceDSN
	cfg.PyroscopeEnabled = pyroscopeEnabled
	cfg.PyroscopeServerAddress = pyroscopeServerAddress
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	cfg.PyroscopeUploadRate = pyroscopeUploadRate

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func loadRoom() (Config, error) {
	prefix := strings.TrimSpace(getEnv("ROOM_COMMAND_PREFIX", "!"))
	if strings.ContainsAny(prefix, " \t") {
		return Config{}, fmt.Errorf("ROOM_COMMAND_PREFIX cannot contain whitespace")
	}

	maxScore, err := getEnvAsInt("ROOM_MAX_SCORE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROOM_MAX_SCORE: %w", err)
	}
	if maxScore <= 0 {
		return Config{}, fmt.Errorf("ROOM_MAX_SCORE must be > 0")
	}

	snapCooldown, err := time.ParseDuration(getEnv("ROOM_SNAP_COOLDOWN", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROOM_SNAP_COOLDOWN: %w", err)
	}
	if snapCooldown < 0 {
		return Config{}, fmt.Errorf("ROOM_SNAP_COOLDOWN must be >= 0")
	}

	inboxSize, err := getEnvAsInt("ROOM_INBOX_SIZE", 256)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROOM_INBOX_SIZE: %w", err)
	}
	if inboxSize <= 0 {
		return Config{}, fmt.Errorf("ROOM_INBOX_SIZE must be > 0")
	}

	chatLogLimit, err := getEnvAsInt("ROOM_CHAT_LOG_LIMIT", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROOM_CHAT_LOG_LIMIT: %w", err)
	}
	if chatLogLimit < 0 {
		return Config{}, fmt.Errorf("ROOM_CHAT_LOG_LIMIT must be >= 0")
	}

	return Config{
		RoomCommandPrefix: prefix,
		RoomMaxScore:      maxScore,
		RoomSnapCooldown:  snapCooldown,
		RoomInboxSize:     inboxSize,
		RoomToken:         strings.TrimSpace(getEnv("ROOM_TOKEN", "")),
		RoomChatLogLimit:  chatLogLimit,
	}, nil
}

func loadRoomHost(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("ROOM_HOST_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_ENABLED: %w", err)
	}
	timeout, err := time.ParseDuration(getEnv("ROOM_HOST_TIMEOUT", "3s"))
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("ROOM_HOST_TIMEOUT must be > 0")
	}
	workers, err := getEnvAsInt("ROOM_HOST_WORKERS", 1)
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_WORKERS: %w", err)
	}
	if workers < 1 {
		return fmt.Errorf("ROOM_HOST_WORKERS must be >= 1")
	}
	queueSize, err := getEnvAsInt("ROOM_HOST_QUEUE_SIZE", 512)
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_QUEUE_SIZE: %w", err)
	}
	if queueSize < 1 {
		return fmt.Errorf("ROOM_HOST_QUEUE_SIZE must be >= 1")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("ROOM_HOST_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("ROOM_HOST_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return fmt.Errorf("ROOM_HOST_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("ROOM_HOST_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return fmt.Errorf("ROOM_HOST_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("ROOM_HOST_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return fmt.Errorf("parse ROOM_HOST_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("ROOM_HOST_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	baseURL := strings.TrimSpace(getEnv("ROOM_HOST_BASE_URL", "http://localhost:9090"))
	if enabled && baseURL == "" {
		return fmt.Errorf("ROOM_HOST_BASE_URL is required when ROOM_HOST_ENABLED=true")
	}

	cfg.RoomHostEnabled = enabled
	cfg.RoomHostBaseURL = baseURL
	cfg.RoomHostToken = strings.TrimSpace(getEnv("ROOM_HOST_TOKEN", ""))
	cfg.RoomHostTimeout = timeout
	// a single worker keeps chat lines in the order the room produced them
	cfg.RoomHostWorkers = workers
	cfg.RoomHostQueueSize = queueSize
	cfg.RoomHostCircuitEnabled = circuitEnabled
	cfg.RoomHostCircuitFailureCount = circuitFailureCount
	cfg.RoomHostCircuitOpenTimeout = circuitOpenTimeout
	cfg.RoomHostCircuitHalfOpenMaxReq = circuitHalfOpenMaxReq
	return nil
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
