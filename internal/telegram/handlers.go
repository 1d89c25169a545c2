package telegram

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pharmacy-assistant/internal/auth"
)

// maxUploadSize bounds CSV downloads.
const maxUploadSize = 10 << 20

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "new":
		sess, err := b.sessions.Restart(chatID)
		if err != nil {
			log.Printf("failed to restart session for chat %d: %v", chatID, err)
			b.sendMessage(chatID, "Sorry, something went wrong.")
			return
		}
		b.sendMessage(chatID, "Started a new session: "+sess.ID)
		return
	case "export":
		b.handleExport(chatID)
		return
	case "allow", "revoke", "members":
		b.handleAdminCommand(msg, args)
		return
	}

	sess, err := b.sessions.Get(chatID)
	if err != nil {
		log.Printf("failed to open session for chat %d: %v", chatID, err)
		b.sendMessage(chatID, "Sorry, something went wrong.")
		return
	}
	out, ok := b.assistant.Command(sess, msg.Command(), args)
	if !ok {
		b.sendMessage(chatID, "Unknown command. Send /help for the list of commands.")
		return
	}
	b.sendMessage(chatID, out)
}

func (b *Bot) handleAdminCommand(msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	if !b.authSvc.IsAdmin(msg.From.ID) {
		b.sendMessage(chatID, "This command is available to the administrator only.")
		return
	}

	if msg.Command() == "members" {
		var bld strings.Builder
		bld.WriteString("Allowlist:\n")
		for _, m := range b.authSvc.List() {
			bld.WriteString(fmt.Sprintf("- id=%d %s %s\n", m.ID, m.Username, m.Name))
		}
		b.sendMessage(chatID, strings.TrimRight(bld.String(), "\n"))
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 1 {
		b.sendMessage(chatID, fmt.Sprintf("Usage: /%s <user_id>", msg.Command()))
		return
	}
	uid, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.sendMessage(chatID, "Invalid user_id")
		return
	}

	if msg.Command() == "allow" {
		err = b.authSvc.Allow(auth.Member{ID: uid, AddedBy: msg.From.ID, AddedAt: time.Now().UTC()})
	} else {
		err = b.authSvc.Revoke(uid)
	}
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf("Failed to update allowlist: %v", err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Done: /%s %d", msg.Command(), uid))
}

func (b *Bot) handleExport(chatID int64) {
	sess, err := b.sessions.Get(chatID)
	if err != nil {
		log.Printf("failed to open session for chat %d: %v", chatID, err)
		b.sendMessage(chatID, "Sorry, something went wrong.")
		return
	}
	inv := sess.Inventory()
	if inv == nil {
		b.sendMessage(chatID, "Please upload the medicine inventory file first.")
		return
	}
	var buf bytes.Buffer
	if err := inv.WriteCSV(&buf); err != nil {
		log.Printf("failed to export inventory [session=%s]: %v", sess.ID, err)
		b.sendMessage(chatID, "Could not export the inventory.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: b.exportName, Bytes: buf.Bytes()})
	doc.Caption = fmt.Sprintf("Inventory saved to %s (%d rows)", b.exportName, inv.Len())
	if _, err := b.s.Send(doc); err != nil {
		log.Printf("failed to send export: %v", err)
	}
}

func (b *Bot) handleDocument(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := msg.Document.FileName
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		b.sendMessage(chatID, "Please send the inventory or purchase history as a .csv file.")
		return
	}
	if msg.Document.FileSize > maxUploadSize {
		b.sendMessage(chatID, "The file is too large.")
		return
	}

	log.Printf("📥 Upload from %d: %s (%d bytes)", msg.From.ID, name, msg.Document.FileSize)

	data, err := b.download(msg.Document.FileID)
	if err != nil {
		log.Printf("failed to download %s: %v", name, err)
		b.sendMessage(chatID, "Could not download the file.")
		return
	}
	up, err := b.loader.Parse(data)
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf("Could not read %s: %v", name, err))
		return
	}
	sess, err := b.sessions.Get(chatID)
	if err != nil {
		log.Printf("failed to open session for chat %d: %v", chatID, err)
		b.sendMessage(chatID, "Sorry, something went wrong.")
		return
	}
	b.sendMessage(chatID, b.assistant.Load(sess, up))
}

func (b *Bot) download(fileID string) ([]byte, error) {
	url, err := b.s.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := b.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxUploadSize))
}
