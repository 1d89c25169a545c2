package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pharmacy-assistant/internal/analytics"
	"pharmacy-assistant/internal/assistant"
	"pharmacy-assistant/internal/auth"
	"pharmacy-assistant/internal/config"
	"pharmacy-assistant/internal/conversation"
	"pharmacy-assistant/internal/datacache"
	"pharmacy-assistant/internal/llm"
	"pharmacy-assistant/internal/scheduler"
	"pharmacy-assistant/internal/session"
	"pharmacy-assistant/internal/sources"
	"pharmacy-assistant/internal/storage"
	"pharmacy-assistant/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var allowRepo auth.Repository
	if cfg.AllowlistFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Printf("failed to init allowlist repo: %v", err)
		} else {
			allowRepo = repo
		}
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers, cfg.AdminUserID)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}

	llmClient, err := llm.FromConfig(cfg)
	if err != nil {
		log.Printf("⚠️ LLM disabled, only inventory questions will be answered: %v", err)
	}

	store, err := conversation.NewFileStore(cfg.ConversationDir)
	if err != nil {
		log.Fatalf("failed to init conversation store: %v", err)
	}

	var rec storage.Recorder
	var fileRec *storage.FileRecorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec, fileRec = fr, fr
		}
	}

	asst := assistant.New(llmClient, store, rec, readSystemPrompt(cfg.SystemPromptPath))
	sessions := session.NewRegistry(store)

	shared, err := sources.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init shared sources: %v", err)
	}
	if shared.Configured() {
		tables, err := shared.Load(ctx)
		if err != nil {
			log.Fatalf("failed to load shared sources: %v", err)
		}
		sessions.SetShared(tables)
		log.Printf("📦 Shared sources loaded (inventory: %d rows, purchases: %d rows)", tables.Inventory.Len(), tables.Purchases.Len())
		if err := shared.Watch(ctx, sessions); err != nil {
			log.Printf("⚠️ shared sources will not be reloaded: %v", err)
		}
	}

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		authSvc,
		asst,
		sessions,
		datacache.NewLoader(cfg.UploadCacheTTL),
		cfg.ExportFileName,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if cfg.AdminUserID != 0 && (sessions.Shared().Inventory != nil || fileRec != nil) {
		sched := scheduler.New()
		sched.SetReportFunction(func(ctx context.Context) error {
			now := time.Now().UTC()
			var events []storage.Event
			if fileRec != nil {
				y := now.AddDate(0, 0, -1)
				evs, err := fileRec.LoadSince(time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC))
				if err != nil {
					return err
				}
				events = append([]storage.Event{}, evs...)
			}
			return bot.SendReport(ctx, analytics.DailyReport(sessions.Shared().Inventory, events, now))
		})
		if err := sched.Start(cfg.ReportCron); err != nil {
			log.Printf("failed to start scheduler: %v", err)
		}
		if !sched.IsRunning() {
			log.Printf("⚠️ Daily report disabled")
		}
		defer sched.Stop()
	}

	bot.Start(ctx)
	log.Println("👋 Bot stopped")
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
