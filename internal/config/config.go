package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ContentPipeline/internal/domain"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "CONTENT_PIPELINE_CONFIG"

	BackendREST     = "rest"
	BackendPostgres = "postgres"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	News          NewsConfig         `yaml:"news"`
	LLM           LLMConfig          `yaml:"llm"`
	Enricher      EnricherConfig     `yaml:"enricher"`
	Publisher     PublisherConfig    `yaml:"publisher"`
	Dedup         DedupConfig        `yaml:"dedup"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig controls slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewsConfig describes the news search provider and the category queries.
type NewsConfig struct {
	Endpoint    string                 `yaml:"endpoint"`
	APIKey      string                 `yaml:"apiKey"`
	Domains     []string               `yaml:"domains"`
	Language    string                 `yaml:"language"`
	SortBy      string                 `yaml:"sortBy"`
	PageSize    int                    `yaml:"pageSize"`
	Timeout     time.Duration          `yaml:"timeout"`
	Concurrency int                    `yaml:"concurrency"`
	Categories  []domain.CategoryQuery `yaml:"categories"`
}

// LLMConfig selects the generative model provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Gemini   GeminiConfig  `yaml:"gemini"`
	ChatGPT  ChatGPTConfig `yaml:"chatgpt"`
}

// GeminiConfig defines how to contact the Generative Language API.
type GeminiConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// EnricherConfig bounds the model-call fan-out.
type EnricherConfig struct {
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// PublisherConfig chooses the destination backend for suggestion rows.
type PublisherConfig struct {
	Backend  string         `yaml:"backend"`
	Table    string         `yaml:"table"`
	REST     RESTConfig     `yaml:"rest"`
	Database DatabaseConfig `yaml:"database"`
}

// RESTConfig holds the hosted backend endpoint and its service-role key.
type RESTConfig struct {
	URL        string        `yaml:"url"`
	ServiceKey string        `yaml:"serviceKey"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DedupConfig enables the optional seen-URL filter.
type DedupConfig struct {
	Enabled bool          `yaml:"enabled"`
	Redis   RedisConfig   `yaml:"redis"`
	TTL     time.Duration `yaml:"ttl"`
}

// RedisConfig wires the seen-URL store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines when the pipeline should run. An empty
// CronExpression means a single run per process invocation.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig controls Prometheus exposure.
type MetricsConfig struct {
	ListenAddr     string `yaml:"listenAddr"`
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	JobName        string `yaml:"jobName"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.News.Categories) == 0 {
		cfg.News.Categories = defaultCategories()
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	strOverrides := map[string]*string{
		"LOG_LEVEL":                 &c.Logging.Level,
		"LOG_FORMAT":                &c.Logging.Format,
		"NEWS_API_KEY":              &c.News.APIKey,
		"LLM_PROVIDER":              &c.LLM.Provider,
		"GEMINI_API_KEY":            &c.LLM.Gemini.APIKey,
		"GEMINI_MODEL":              &c.LLM.Gemini.Model,
		"OPENAI_API_KEY":            &c.LLM.ChatGPT.APIKey,
		"OPENAI_MODEL":              &c.LLM.ChatGPT.Model,
		"PUBLISHER_BACKEND":         &c.Publisher.Backend,
		"SUPABASE_URL":              &c.Publisher.REST.URL,
		"SUPABASE_SERVICE_ROLE_KEY": &c.Publisher.REST.ServiceKey,
		"DATABASE_DSN":              &c.Publisher.Database.DSN,
		"REDIS_ADDR":                &c.Dedup.Redis.Addr,
		"REDIS_PASSWORD":            &c.Dedup.Redis.Password,
		"TELEGRAM_BOT_TOKEN":        &c.Notifications.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":          &c.Notifications.Telegram.ChatID,
		"SCHEDULE_CRON":             &c.Scheduler.CronExpression,
		"METRICS_ADDR":              &c.Metrics.ListenAddr,
		"PUSHGATEWAY_URL":           &c.Metrics.PushgatewayURL,
	}
	for key, dst := range strOverrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("DEDUP_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Dedup.Enabled = enabled
		} else {
			log.Printf("config: invalid DEDUP_ENABLED %q: %v", v, err)
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultCategories() []domain.CategoryQuery {
	return []domain.CategoryQuery{
		{Category: "health", Query: `(dog OR puppy) AND (health OR veterinary OR disease)`},
		{Category: "training", Query: `(dog OR puppy) AND (training OR behavior OR obedience)`},
		{Category: "nutrition", Query: `(dog OR puppy) AND (food OR nutrition OR diet)`},
		{Category: "lifestyle", Query: `(dog OR puppy) AND (travel OR adoption OR lifestyle)`},
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		News: NewsConfig{
			Endpoint: "https://newsapi.org/v2/everything",
			Domains: []string{
				"akc.org",
				"petmd.com",
				"thesprucepets.com",
				"dogster.com",
				"rover.com",
				"vcahospitals.com",
				"nytimes.com",
				"theguardian.com",
			},
			Language:    "en",
			SortBy:      "publishedAt",
			PageSize:    5,
			Timeout:     20 * time.Second,
			Concurrency: 4,
			Categories:  defaultCategories(),
		},
		LLM: LLMConfig{
			Provider: ProviderGemini,
			Gemini: GeminiConfig{
				Endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
				Model:    "gemini-1.5-flash",
				Timeout:  60 * time.Second,
			},
			ChatGPT: ChatGPTConfig{
				Endpoint:     "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: "You write short Korean blog copy for dog owners and answer with JSON only.",
				Timeout:      60 * time.Second,
			},
		},
		Enricher: EnricherConfig{Concurrency: 20},
		Publisher: PublisherConfig{
			Backend: BackendREST,
			Table:   "content_suggestions",
			REST:    RESTConfig{Timeout: 20 * time.Second},
		},
		Dedup: DedupConfig{
			Redis: RedisConfig{Addr: "localhost:6379", KeyPrefix: "contentpipeline:published"},
			TTL:   90 * 24 * time.Hour,
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Metrics:   MetricsConfig{JobName: "content_pipeline"},
	}
}
