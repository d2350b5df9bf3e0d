package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// Catalog source: an http(s) URL or a local file path.
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"data/products.json"`

	// LLM settings. The worker provider posts the transcript to a
	// completion proxy; openai talks to the API directly.
	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"worker"`
	WorkerURL     string `env:"WORKER_URL"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Storage
	StateDirPath string `env:"STATE_DIR_PATH" envDefault:"data/state"`
	LogFilePath  string `env:"LOG_FILE_PATH" envDefault:"logs/log.jsonl"`

	// UI behavior
	AdvisoryTTL      time.Duration `env:"ADVISORY_TTL" envDefault:"7s"`
	MessageParseMode string        `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
