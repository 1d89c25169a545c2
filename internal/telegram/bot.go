package telegram

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pharmacy-assistant/internal/assistant"
	"pharmacy-assistant/internal/auth"
	"pharmacy-assistant/internal/datacache"
	"pharmacy-assistant/internal/session"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4000

type Bot struct {
	s          sender
	authSvc    *auth.Service
	assistant  *assistant.Assistant
	sessions   *session.Registry
	loader     *datacache.Loader
	exportName string
	httpClient *http.Client
	updates    func() tgbotapi.UpdatesChannel
}

func New(botToken string, authSvc *auth.Service, asst *assistant.Assistant, sessions *session.Registry, loader *datacache.Loader, exportName string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("🤖 Authorized on account @%s", api.Self.UserName)
	return &Bot{
		s:          botAPISender{api: api},
		authSvc:    authSvc,
		assistant:  asst,
		sessions:   sessions,
		loader:     loader,
		exportName: exportName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		updates: func() tgbotapi.UpdatesChannel {
			u := tgbotapi.NewUpdate(0)
			u.Timeout = 60
			return api.GetUpdatesChan(u)
		},
	}, nil
}

// Start handles updates one at a time until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	updates := b.updates()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.authSvc.IsAllowed(msg.From.ID) {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "You are not allowed to use this assistant. Ask the administrator for access.")
		return
	}

	switch {
	case msg.Document != nil:
		b.handleDocument(msg)
	case msg.IsCommand():
		b.handleCommand(msg)
	case strings.TrimSpace(msg.Text) != "":
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	sess, err := b.sessions.Get(msg.Chat.ID)
	if err != nil {
		log.Printf("failed to open session for chat %d: %v", msg.Chat.ID, err)
		b.sendMessage(msg.Chat.ID, "Sorry, something went wrong.")
		return
	}

	log.Printf("Incoming message from %d (@%s) [session=%s]: %q", msg.From.ID, msg.From.UserName, sess.ID, msg.Text)

	reply, err := b.assistant.Respond(ctx, sess, msg.Text)
	if err != nil {
		log.Printf("failed to answer [session=%s]: %v", sess.ID, err)
		if reply.Text == "" {
			b.sendMessage(msg.Chat.ID, "Sorry, something went wrong.")
			return
		}
	}
	b.sendMessage(msg.Chat.ID, reply.Text)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	for _, part := range splitMessage(text, maxMessageLen) {
		out := tgbotapi.NewMessage(chatID, part)
		if _, err := b.s.Send(out); err != nil {
			log.Printf("failed to send message: %v", err)
		}
	}
}

// SendReport delivers a scheduled report to the admin.
func (b *Bot) SendReport(ctx context.Context, text string) error {
	if b.authSvc.AdminID() == 0 || text == "" {
		return nil
	}
	b.sendMessage(b.authSvc.AdminID(), text)
	return nil
}

// splitMessage cuts text into parts of at most limit bytes, preferring line
// boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
