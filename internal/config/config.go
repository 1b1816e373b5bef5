package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
)

// LoadEnv loads variables from a .env file when one is present. Values
// already set in the environment take precedence.
func LoadEnv() {
	envFile := getEnv("ENV_FILE", ".env")
	if err := gotenv.Load(envFile); err != nil {
		log.Printf("No %s file found, using OS environment", envFile)
	}
}

// SecurityConfig represents security middleware configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

type Config struct {
	// Worker
	Port             int
	DataDir          string
	CacheTTL         time.Duration
	RefreshInterval  time.Duration
	CategoryDelay    time.Duration
	ArticleRetention time.Duration
	FeedAPIURL       string
	ExtractorURL     string
	RequestTimeout   time.Duration
	MaxAllResults    int
	EnableSwagger    bool
	Security         SecurityConfig

	// Extractor
	ExtractorPort    int
	FetchTimeout     time.Duration
	LLMAPIURL        string
	LLMAPIKey        string
	LLMModel         string
	SummaryMaxTokens int

	// Feed API
	FeedAPIPort    int
	FeedSources    map[string][]string
	ItemsPerSource int
}

func Load() *Config {
	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		DataDir:          getEnv("DATA_DIR", "./data"),
		CacheTTL:         getEnvAsDuration("CACHE_TTL", 15*time.Minute),
		RefreshInterval:  getEnvAsDuration("REFRESH_INTERVAL", 30*time.Minute),
		CategoryDelay:    getEnvAsDuration("CATEGORY_DELAY", 2*time.Second),
		ArticleRetention: getEnvAsDuration("ARTICLE_RETENTION", 7*24*time.Hour),
		FeedAPIURL:       getEnv("FEED_API_URL", "http://localhost:8081"),
		ExtractorURL:     getEnv("EXTRACTOR_URL", "http://localhost:8082"),
		RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		MaxAllResults:    getEnvAsInt("MAX_ALL_RESULTS", 10000),
		EnableSwagger:    getEnvAsBool("ENABLE_SWAGGER", true),
		Security:         loadSecurityConfig(),

		ExtractorPort:    getEnvAsInt("EXTRACTOR_PORT", 8082),
		FetchTimeout:     getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
		LLMAPIURL:        getEnv("LLM_API_URL", "https://text.pollinations.ai/openai/v1"),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMModel:         getEnv("LLM_MODEL", "openai-fast"),
		SummaryMaxTokens: getEnvAsInt("SUMMARY_MAX_TOKENS", 300),

		FeedAPIPort:    getEnvAsInt("FEED_API_PORT", 8081),
		FeedSources:    loadFeedSourcesFromEnv(),
		ItemsPerSource: getEnvAsInt("FEED_ITEMS_PER_SOURCE", 10),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 10<<20), // 10MB
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
	}
}

// loadFeedSourcesFromEnv reads FEED_SOURCE_<CATEGORY> variables, each a
// comma-separated list of RSS URLs. Categories without an override use the
// built-in source list.
func loadFeedSourcesFromEnv() map[string][]string {
	sources := defaultFeedSources()

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "FEED_SOURCE_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		category := strings.ToLower(strings.TrimPrefix(parts[0], "FEED_SOURCE_"))
		urls := strings.Split(parts[1], ",")
		for i := range urls {
			urls[i] = strings.TrimSpace(urls[i])
		}
		sources[category] = urls
	}

	return sources
}

func defaultFeedSources() map[string][]string {
	return map[string][]string{
		"business": {
			"https://www.cnbc.com/id/10001147/device/rss/rss.html",
			"https://feeds.bbci.co.uk/news/business/rss.xml",
		},
		"entertainment": {
			"https://www.cnbc.com/id/10000108/device/rss/rss.html",
			"https://feeds.bbci.co.uk/news/entertainment_and_arts/rss.xml",
		},
		"health": {
			"https://www.cnbc.com/id/10000108/device/rss/rss.html",
			"https://feeds.bbci.co.uk/news/health/rss.xml",
		},
		"science": {
			"https://www.wired.com/feed/category/science/latest/rss",
			"https://feeds.bbci.co.uk/news/science_and_environment/rss.xml",
		},
		"sports": {
			"https://www.espn.com/espn/rss/news",
			"https://feeds.bbci.co.uk/sport/rss.xml",
		},
		"technology": {
			"https://www.wired.com/feed/rss",
			"https://feeds.bbci.co.uk/news/technology/rss.xml",
		},
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return defaultVal
}
