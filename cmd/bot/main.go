package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"glow-routine/internal/catalog"
	"glow-routine/internal/chat"
	"glow-routine/internal/config"
	"glow-routine/internal/llm"
	"glow-routine/internal/scheduler"
	"glow-routine/internal/selection"
	"glow-routine/internal/storage"
	"glow-routine/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	repo, err := selection.NewFileRepository(cfg.StateDirPath)
	if err != nil {
		log.Fatalf("failed to init selection repository: %v", err)
	}
	store := selection.NewStore(repo)

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	factory := &llm.Factory{
		WorkerURL:     cfg.WorkerURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	systemPrompt := readSystemPrompt(cfg.SystemPromptPath)
	sessions := chat.NewManager(llmClient, systemPrompt)
	loader := catalog.NewLoader(cfg.CatalogSource)

	sched := scheduler.New()
	sched.SetRefreshFunction(func(ctx context.Context) error {
		products, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		log.Printf("catalog refreshed: %d products, %d categories", len(products), len(catalog.Categories(products)))
		return nil
	})
	if err := sched.Start(); err != nil {
		log.Printf("failed to start catalog scheduler: %v", err)
	}
	defer sched.Stop()

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		loader,
		store,
		sessions,
		rec,
		cfg.MessageParseMode,
		cfg.AdvisoryTTL,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start(context.Background())
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return ""
	}
	return string(data)
}
