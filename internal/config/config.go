package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AdminUserID      int64   `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Storage
	ConversationDir   string `env:"CONVERSATION_DIR" envDefault:"data/conversations"`
	LogFilePath       string `env:"LOG_FILE_PATH" envDefault:"logs/log.jsonl"`
	AllowlistFilePath string `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`
	ExportFileName    string `env:"EXPORT_FILE_NAME" envDefault:"updated_medicine_inventory.csv"`

	// Shared data sources
	InventoryCSVPath  string        `env:"INVENTORY_CSV_PATH"`
	PurchasesCSVPath  string        `env:"PURCHASES_CSV_PATH"`
	UploadCacheTTL    time.Duration `env:"UPLOAD_CACHE_TTL" envDefault:"1h"`
	SheetsCredentials string        `env:"GOOGLE_SHEETS_CREDENTIALS_PATH"`
	InventorySheetID  string        `env:"INVENTORY_SHEET_ID"`
	InventorySheetRng string        `env:"INVENTORY_SHEET_RANGE" envDefault:"Inventory!A:G"`

	// Daily report, UTC cron spec
	ReportCron string `env:"REPORT_CRON" envDefault:"0 8 * * *"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// HasSheetSource reports whether a Google Sheet is configured as inventory source.
func (c *Config) HasSheetSource() bool {
	return c.SheetsCredentials != "" && c.InventorySheetID != ""
}
