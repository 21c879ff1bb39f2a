package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ContentPublisher/internal/domain"
)

const (
	configPathEnv     = "CONTENT_PUBLISHER_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	storageDriverEnv  = "STORAGE_DRIVER"
	sqlitePathEnv     = "SQLITE_PATH"
	redisAddrEnv      = "REDIS_ADDR"
	redisPasswordEnv  = "REDIS_PASSWORD"
	redisDBEnv        = "REDIS_DB"
	mlInferenceURLEnv = "ML_INFERENCE_URL"
	mlAPIKeyEnv       = "ML_API_KEY"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

const (
	ScoringPlaceholder = "placeholder"
	ScoringReports     = "reports"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	Redis         RedisConfig        `yaml:"redis"`
	Site          SiteConfig         `yaml:"site"`
	ML            MLConfig           `yaml:"ml"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Notifications NotificationConfig `yaml:"notifications"`
	Workflow      WorkflowConfig     `yaml:"workflow"`
	Monitor       MonitorConfig      `yaml:"monitor"`
	FeatureFlags  map[string]bool    `yaml:"featureFlags"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig picks the content repository implementation.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlitePath"`
}

// RedisConfig enables the shared flag store and alert channel when Addr is set.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	FlagPrefix   string `yaml:"flagPrefix"`
	AlertChannel string `yaml:"alertChannel"`
}

// SiteConfig describes the public site content is published to.
type SiteConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	Organization string `yaml:"organization"`
}

// MLConfig describes inference-service integration parameters.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound alert channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WorkflowConfig tunes the publishing workflow.
type WorkflowConfig struct {
	ReviewMinimum *float64      `yaml:"reviewMinimum"`
	StepTimeout   time.Duration `yaml:"stepTimeout"`
	Scoring       string        `yaml:"scoring"`
}

// MonitorConfig tunes the performance monitor and its periodic summary.
type MonitorConfig struct {
	BufferSize           int                                `yaml:"bufferSize"`
	SummaryInterval      time.Duration                      `yaml:"summaryInterval"`
	SummaryWindowMinutes int                                `yaml:"summaryWindowMinutes"`
	Thresholds           map[domain.Metric]domain.Threshold `yaml:"thresholds"`
	Triggers             []domain.RollbackTrigger           `yaml:"triggers"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(sqlitePathEnv); v != "" {
		c.Storage.SQLitePath = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(redisPasswordEnv); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(redisDBEnv); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		} else {
			log.Printf("config: invalid %s=%q: %v", redisDBEnv, v, err)
		}
	}

	if v := os.Getenv(mlInferenceURLEnv); v != "" {
		c.ML.InferenceURL = v
	}
	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}
	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.SQLitePath != "" {
		base.Storage.SQLitePath = override.Storage.SQLitePath
	}

	if override.Redis.Addr != "" {
		base.Redis.Addr = override.Redis.Addr
		base.Redis.Password = override.Redis.Password
		base.Redis.DB = override.Redis.DB
	}
	if override.Redis.FlagPrefix != "" {
		base.Redis.FlagPrefix = override.Redis.FlagPrefix
	}
	if override.Redis.AlertChannel != "" {
		base.Redis.AlertChannel = override.Redis.AlertChannel
	}

	if override.Site.BaseURL != "" {
		base.Site.BaseURL = override.Site.BaseURL
	}
	if override.Site.Organization != "" {
		base.Site.Organization = override.Site.Organization
	}

	if override.ML.InferenceURL != "" {
		base.ML.InferenceURL = override.ML.InferenceURL
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Workflow.ReviewMinimum != nil {
		base.Workflow.ReviewMinimum = override.Workflow.ReviewMinimum
	}
	if override.Workflow.StepTimeout > 0 {
		base.Workflow.StepTimeout = override.Workflow.StepTimeout
	}
	if override.Workflow.Scoring != "" {
		base.Workflow.Scoring = override.Workflow.Scoring
	}

	if override.Monitor.BufferSize > 0 {
		base.Monitor.BufferSize = override.Monitor.BufferSize
	}
	if override.Monitor.SummaryInterval > 0 {
		base.Monitor.SummaryInterval = override.Monitor.SummaryInterval
	}
	if override.Monitor.SummaryWindowMinutes > 0 {
		base.Monitor.SummaryWindowMinutes = override.Monitor.SummaryWindowMinutes
	}
	for metric, threshold := range override.Monitor.Thresholds {
		base.Monitor.Thresholds[metric] = threshold
	}
	if len(override.Monitor.Triggers) > 0 {
		base.Monitor.Triggers = override.Monitor.Triggers
	}

	for name, enabled := range override.FeatureFlags {
		base.FeatureFlags[name] = enabled
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{Driver: StorageMemory, SQLitePath: "data/content.db"},
		Redis: RedisConfig{
			FlagPrefix:   "feature-flags",
			AlertChannel: "performance:alerts",
		},
		Site: SiteConfig{
			BaseURL:      "https://www.example-ventures.com",
			Organization: "Example Ventures",
		},
		ChatGPT: ChatGPTConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Workflow: WorkflowConfig{
			ReviewMinimum: floatPtr(70),
			StepTimeout:   2 * time.Minute,
			Scoring:       ScoringPlaceholder,
		},
		Monitor: MonitorConfig{
			BufferSize:           1000,
			SummaryInterval:      15 * time.Minute,
			SummaryWindowMinutes: 60,
			Thresholds:           DefaultThresholds(),
			Triggers:             DefaultTriggers(),
		},
		FeatureFlags: map[string]bool{
			"hero-animations":         true,
			"dynamic-content-loading": true,
			"ai-content-suggestions":  true,
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

// DefaultThresholds is the built-in warning/critical table.
func DefaultThresholds() map[domain.Metric]domain.Threshold {
	return map[domain.Metric]domain.Threshold{
		domain.MetricLCP:       {Warning: 2500, Critical: 4000},
		domain.MetricFID:       {Warning: 100, Critical: 300},
		domain.MetricCLS:       {Warning: 0.1, Critical: 0.25},
		domain.MetricTTFB:      {Warning: 800, Critical: 1800},
		domain.MetricSEOScore:  {Warning: 80, Critical: 60},
		domain.MetricLoadTime:  {Warning: 3000, Critical: 5000},
		domain.MetricErrorRate: {Warning: 0.01, Critical: 0.05},
	}
}

// DefaultTriggers is the built-in rollback trigger table.
func DefaultTriggers() []domain.RollbackTrigger {
	return []domain.RollbackTrigger{
		{Metric: domain.MetricLCP, Level: domain.LevelCritical, ConsecutiveFailures: 3, TimeWindowMinutes: 5, Action: domain.ActionDisableFeature, FeatureFlag: "hero-animations"},
		{Metric: domain.MetricCLS, Level: domain.LevelCritical, ConsecutiveFailures: 3, TimeWindowMinutes: 5, Action: domain.ActionDisableFeature, FeatureFlag: "dynamic-content-loading"},
		{Metric: domain.MetricErrorRate, Level: domain.LevelCritical, ConsecutiveFailures: 5, TimeWindowMinutes: 10, Action: domain.ActionRollbackDeployment},
		{Metric: domain.MetricSEOScore, Level: domain.LevelCritical, ConsecutiveFailures: 3, TimeWindowMinutes: 30, Action: domain.ActionAlertOnly},
	}
}
