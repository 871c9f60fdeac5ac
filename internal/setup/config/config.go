package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrMissingConfig    = errors.New("missing required configuration")
	ErrDuplicateServer  = errors.New("duplicate server name")
	ErrInvalidServerRow = errors.New("invalid server directory entry")
	ErrUnknownLedger    = errors.New("unknown ledger backend")
)

// DefaultScoreThreshold is the combined-score cut-off used by the player resolver.
const DefaultScoreThreshold = 3.0

// legacyThresholdCeiling marks threshold values that were configured as a
// probability by older deployments. Such values are replaced by the default.
const legacyThresholdCeiling = 1.0

// Config represents the entire application configuration.
type Config struct {
	Discord  Discord  `koanf:"discord"`
	API      API      `koanf:"api"`
	AI       AI       `koanf:"ai"`
	Redis    Redis    `koanf:"redis"`
	Debug    Debug    `koanf:"debug"`
	Sentry   Sentry   `koanf:"sentry"`
	Report   Report   `koanf:"report"`
	Servers  []Server `koanf:"servers"`
	Language string   `koanf:"language"`
	DryRun   bool     `koanf:"-"`

	// LegacyThreshold is set when the configured threshold looked like a probability.
	LegacyThreshold float64 `koanf:"-"`
}

// Discord contains chat-platform configuration.
type Discord struct {
	// Bot token for authentication.
	Token string `koanf:"token"`
	// Channel that reports are read from.
	ChannelID uint64 `koanf:"channel_id"`
}

// API contains admin-API configuration.
type API struct {
	// Bearer token sent with every request.
	Token string `koanf:"token"`
	// Optional login credentials.
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Extra attempts for failed reads; zero disables retries.
	ReadRetries int `koanf:"read_retries"`
}

// AI contains language-model configuration.
type AI struct {
	// Base URL for an OpenAI-compatible endpoint; empty uses the provider default.
	BaseURL string `koanf:"base_url"`
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Model identifier.
	Model string `koanf:"model"`
	// Maximum concurrent requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Debug contains logging configuration.
type Debug struct {
	// Base directory for log sessions.
	LogDir string `koanf:"log_dir"`
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
	// Mirror logs to stderr.
	Console bool `koanf:"console"`
}

// Sentry contains error forwarding configuration.
type Sentry struct {
	DSN         string `koanf:"dsn"`
	Environment string `koanf:"environment"`
}

// Report contains report pipeline configuration.
type Report struct {
	// Maximum combined score accepted by the player resolver.
	ScoreThreshold float64 `koanf:"score_threshold"`
	// Warning ledger backend (memory or redis).
	LedgerBackend string `koanf:"ledger_backend"`
	// Directory holding per-language prompt bundles.
	PromptsDir string `koanf:"prompts_dir"`
	// Path to the translation table.
	TranslationsFile string `koanf:"translations_file"`
}

// Server is one entry of the server directory.
type Server struct {
	Name    string `koanf:"name"`
	BaseURL string `koanf:"base_url"`
}

// envKeys maps flat environment variables onto koanf paths.
var envKeys = map[string]string{
	"DISCORD_TOKEN":                "discord.token",
	"ALLOWED_CHANNEL_ID":           "discord.channel_id",
	"API_TOKEN":                    "api.token",
	"API_USERNAME":                 "api.username",
	"API_PASSWORD":                 "api.password",
	"REQUEST_TIMEOUT_MS":           "api.request_timeout",
	"API_READ_RETRIES":             "api.read_retries",
	"AI_BASE_URL":                  "ai.base_url",
	"AI_API_KEY":                   "ai.api_key",
	"AI_MODEL":                     "ai.model",
	"AI_MAX_CONCURRENT":            "ai.max_concurrent",
	"REDIS_HOST":                   "redis.host",
	"REDIS_PORT":                   "redis.port",
	"REDIS_USERNAME":               "redis.username",
	"REDIS_PASSWORD":               "redis.password",
	"LOG_DIR":                      "debug.log_dir",
	"LOG_LEVEL":                    "debug.log_level",
	"SENTRY_DSN":                   "sentry.dsn",
	"SENTRY_ENVIRONMENT":           "sentry.environment",
	"MAX_COMBINED_SCORE_THRESHOLD": "report.score_threshold",
	"LEDGER_BACKEND":               "report.ledger_backend",
	"PROMPTS_DIR":                  "report.prompts_dir",
	"TRANSLATIONS_FILE":            "report.translations_file",
	"USER_LANG":                    "language",
	"DRY_RUN":                      "dry_run",
	"MAX_SERVERS":                  "directory.max",
}

// defaults are loaded before any file or environment provider.
var defaults = map[string]any{
	"api.request_timeout":      10000,
	"api.read_retries":         0,
	"ai.model":                 "gpt-4o-mini",
	"ai.max_concurrent":        4,
	"redis.host":               "localhost",
	"redis.port":               6379,
	"debug.log_dir":            "logs",
	"debug.log_level":          "info",
	"debug.max_logs_to_keep":   10,
	"debug.max_log_lines":      100000,
	"debug.console":            true,
	"report.score_threshold":   DefaultScoreThreshold,
	"report.ledger_backend":    "memory",
	"report.prompts_dir":       "prompts",
	"report.translations_file": "translations.json",
	"language":                 "en",
}

// configPaths lists the directories searched for config.toml.
var configPaths = []string{".", "config", "/etc/reportbot"}

// LoadConfig loads defaults, the first config.toml found and then the environment.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range configPaths {
		if err := k.Load(file.Provider(path+"/config.toml"), toml.Parser()); err == nil {
			break
		}
	}

	if err := k.Load(env.Provider("", ".", mapEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	return fromKoanf(k)
}

// mapEnvKey translates environment variable names to koanf paths.
// Returning an empty string makes the env provider skip the variable.
func mapEnvKey(key string) string {
	if path, ok := envKeys[key]; ok {
		return path
	}

	if strings.HasPrefix(key, "SERVER_NAME_") || strings.HasPrefix(key, "API_BASE_URL_") {
		return "directory." + strings.ToLower(key)
	}

	return ""
}

// fromKoanf builds and validates a Config from loaded koanf state.
func fromKoanf(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.DryRun = ParseDryRun(k.String("dry_run"))

	servers, err := serversFromDirectory(k)
	if err != nil {
		return nil, err
	}

	if servers != nil {
		cfg.Servers = servers
	}

	if cfg.Report.ScoreThreshold < legacyThresholdCeiling {
		cfg.LegacyThreshold = cfg.Report.ScoreThreshold
		cfg.Report.ScoreThreshold = DefaultScoreThreshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// serversFromDirectory reads MAX_SERVERS paired SERVER_NAME_i / API_BASE_URL_i entries.
// Returns nil when no directory is configured through the environment.
func serversFromDirectory(k *koanf.Koanf) ([]Server, error) {
	raw := k.String("directory.max")
	if raw == "" {
		return nil, nil
	}

	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: MAX_SERVERS=%q", ErrInvalidServerRow, raw)
	}

	servers := make([]Server, 0, count)
	for i := 1; i <= count; i++ {
		name := strings.TrimSpace(k.String(fmt.Sprintf("directory.server_name_%d", i)))
		baseURL := strings.TrimSpace(k.String(fmt.Sprintf("directory.api_base_url_%d", i)))

		if name == "" || baseURL == "" {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidServerRow, i)
		}

		servers = append(servers, Server{Name: name, BaseURL: strings.TrimRight(baseURL, "/")})
	}

	return servers, nil
}

// Validate checks required fields and directory invariants.
func (c *Config) Validate() error {
	var missing []string

	if c.Discord.Token == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}

	if c.Discord.ChannelID == 0 {
		missing = append(missing, "ALLOWED_CHANNEL_ID")
	}

	if c.API.Token == "" {
		missing = append(missing, "API_TOKEN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	switch c.Report.LedgerBackend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("%w: %s", ErrUnknownLedger, c.Report.LedgerBackend)
	}

	seen := make(map[string]struct{}, len(c.Servers))
	for _, server := range c.Servers {
		if _, ok := seen[server.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateServer, server.Name)
		}

		seen[server.Name] = struct{}{}
	}

	return nil
}

// ParseDryRun reports whether value enables dry-run mode ("true" or "1").
func ParseDryRun(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// Hostname returns the machine name used to tag telemetry.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return name
}

// FindServer looks up a server in servers by exact name.
func FindServer(servers []Server, name string) (Server, bool) {
	for _, server := range servers {
		if server.Name == name {
			return server, true
		}
	}

	return Server{}, false
}
