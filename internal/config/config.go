package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileEnvKey names an optional YAML file whose top-level keys use the same
// names as the environment variables. Environment values win over the file.
const FileEnvKey = "LAB_CONFIG_FILE"

// Config is the lab service configuration.
type Config struct {
	APIPort  string
	LogLevel string

	OllamaURL      string
	OllamaGenModel string

	UploadMaxBytes    int64
	UploadArchivePath string
	PreviewChars      int

	CORSAllowedOrigins []string

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxInFlight    int
	APIOverloadWait   time.Duration

	LLMRetryMaxAttempts    int
	LLMRetryInitialBackoff time.Duration
	LLMBreakerEnabled      bool
	LLMBreakerOpenTimeout  time.Duration
	LLMBreakerMinRequests  int
	LLMBreakerFailureRatio float64

	MetricsEnabled bool
}

// ClientConfig is the terminal client configuration.
type ClientConfig struct {
	APIBaseURL string
	LogFile    string
	LogLevel   string
}

// LoadDotEnv exports variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	src, err := newSource()
	if err != nil {
		return Config{}, err
	}

	return Config{
		APIPort:  src.mustEnv("API_PORT", "8000"),
		LogLevel: src.mustEnv("LOG_LEVEL", "info"),

		OllamaURL:      src.mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel: src.mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),

		UploadMaxBytes:    int64(src.mustEnvInt("UPLOAD_MAX_BYTES", 25<<20)),
		UploadArchivePath: src.mustEnv("UPLOAD_ARCHIVE_PATH", ""),
		PreviewChars:      src.mustEnvInt("PREVIEW_CHARS", 300),

		CORSAllowedOrigins: src.mustEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),

		APIRateLimitRPS:   src.mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: src.mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:    src.mustEnvInt("API_MAX_INFLIGHT", 0),
		APIOverloadWait:   src.mustEnvDuration("API_OVERLOAD_WAIT", 250*time.Millisecond),

		LLMRetryMaxAttempts:    src.mustEnvInt("LLM_RETRY_MAX_ATTEMPTS", 3),
		LLMRetryInitialBackoff: src.mustEnvDuration("LLM_RETRY_INITIAL_BACKOFF", 250*time.Millisecond),
		LLMBreakerEnabled:      src.mustEnvBool("LLM_BREAKER_ENABLED", true),
		LLMBreakerOpenTimeout:  src.mustEnvDuration("LLM_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		LLMBreakerMinRequests:  src.mustEnvInt("LLM_BREAKER_MIN_REQUESTS", 5),
		LLMBreakerFailureRatio: src.mustEnvFloat("LLM_BREAKER_FAILURE_RATIO", 0.6),

		MetricsEnabled: src.mustEnvBool("METRICS_ENABLED", true),
	}, nil
}

func LoadClient() (ClientConfig, error) {
	src, err := newSource()
	if err != nil {
		return ClientConfig{}, err
	}
	return ClientConfig{
		APIBaseURL: src.mustEnv("LAB_API_BASE_URL", "http://localhost:8000"),
		LogFile:    src.mustEnv("LAB_CLIENT_LOG_FILE", "./data/labclient.log"),
		LogLevel:   src.mustEnv("LOG_LEVEL", "info"),
	}, nil
}

type source struct {
	file map[string]string
}

func newSource() (source, error) {
	path := strings.TrimSpace(os.Getenv(FileEnvKey))
	if path == "" {
		return source{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read config file: %w", err)
	}
	file, err := parseFile(raw)
	if err != nil {
		return source{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return source{file: file}, nil
}

func parseFile(raw []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[strings.ToUpper(key)] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("key %s: nested values are not supported", key)
		default:
			out[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return out, nil
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) mustEnv(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) mustEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s.lookup(key)))
	if err != nil {
		return fallback
	}
	return n
}

func (s source) mustEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s.lookup(key)), 64)
	if err != nil {
		return fallback
	}
	return f
}

func (s source) mustEnvBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(s.lookup(key)))
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) mustEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s.lookup(key)))
	if err != nil {
		return fallback
	}
	return d
}

func (s source) mustEnvList(key string, fallback []string) []string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
