package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"pharmacy-assistant/internal/assistant"
	"pharmacy-assistant/internal/config"
	"pharmacy-assistant/internal/conversation"
	"pharmacy-assistant/internal/datacache"
	"pharmacy-assistant/internal/llm"
	"pharmacy-assistant/internal/session"
	"pharmacy-assistant/internal/sources"
	"pharmacy-assistant/internal/storage"
)

const chatHelp = `/load <path> - load an inventory or purchase history CSV
/export [path] - write the inventory CSV
/quit - exit`

func main() {
	inventoryPath := flag.String("inventory", "", "Path to the medicine inventory CSV")
	purchasesPath := flag.String("purchases", "", "Path to the customer purchase history CSV")
	sessionID := flag.String("session", "", "Session id to resume")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmClient, err := llm.FromConfig(cfg)
	if err != nil {
		log.Printf("⚠️ LLM disabled, only inventory questions will be answered: %v", err)
	}
	store, err := conversation.NewFileStore(cfg.ConversationDir)
	if err != nil {
		log.Fatalf("failed to init conversation store: %v", err)
	}
	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		if fr, err := storage.NewFileRecorder(cfg.LogFilePath); err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	shared := &sources.Shared{InventoryPath: *inventoryPath, PurchasesPath: *purchasesPath}
	tables, err := shared.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load data: %v", err)
	}

	sess, err := session.Open(store, *sessionID, tables)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}

	asst := assistant.New(llmClient, store, rec, readSystemPrompt(cfg.SystemPromptPath))
	loader := datacache.NewLoader(cfg.UploadCacheTTL)

	fmt.Printf("Session: %s\n", sess.ID)
	if last, ok := sess.Conversation.Last(); ok {
		fmt.Printf("assistant> %s\n", last.Content)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("you> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case l, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			name, args, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
			args = strings.TrimSpace(args)
			switch name {
			case "quit", "exit":
				return
			case "load":
				fmt.Println("assistant> " + load(asst, loader, sess, args))
			case "export":
				fmt.Println("assistant> " + export(sess, args, cfg.ExportFileName))
			default:
				out, ok := asst.Command(sess, name, args)
				if !ok {
					out = "Unknown command.\n\n" + assistant.HelpText + "\n" + chatHelp
				} else if name == "help" || name == "start" {
					out += "\n" + chatHelp
				}
				fmt.Println("assistant> " + out)
			}
			continue
		}

		reply, err := asst.Respond(ctx, sess, line)
		if err != nil {
			log.Printf("failed to answer: %v", err)
			if reply.Text == "" {
				fmt.Println("assistant> Sorry, something went wrong.")
				continue
			}
		}
		fmt.Println("assistant> " + reply.Text)
	}
}

func load(asst *assistant.Assistant, loader *datacache.Loader, sess *session.Session, path string) string {
	if path == "" {
		return "Usage: /load <path>"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Could not read %s: %v", path, err)
	}
	up, err := loader.Parse(data)
	if err != nil {
		return fmt.Sprintf("Could not read %s: %v", path, err)
	}
	return asst.Load(sess, up)
}

func export(sess *session.Session, path, defaultName string) string {
	inv := sess.Inventory()
	if inv == nil {
		return "Please upload the medicine inventory file first."
	}
	if path == "" {
		path = defaultName
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Sprintf("Could not export the inventory: %v", err)
	}
	if err := inv.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Sprintf("Could not export the inventory: %v", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Sprintf("Could not export the inventory: %v", err)
	}
	return fmt.Sprintf("Inventory saved to %s (%d rows)", path, inv.Len())
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
