// Package assistant routes a user message either to the structured inventory
// lookup or to the chat model, and keeps the session's conversation on disk.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pharmacy-assistant/internal/conversation"
	"pharmacy-assistant/internal/llm"
	"pharmacy-assistant/internal/session"
	"pharmacy-assistant/internal/storage"
)

var ErrNoModel = errors.New("chat model is not configured")

// Reply is the assistant's answer to one user message.
type Reply struct {
	Text     string
	Source   string
	Medicine string
	Model    string
	Tokens   int
}

type Assistant struct {
	llmClient    llm.Client
	store        conversation.Store
	recorder     storage.Recorder
	systemPrompt string
	now          func() time.Time
}

// New wires the router. llmClient and recorder may be nil: without a client
// only inventory questions can be answered, without a recorder nothing is
// logged.
func New(llmClient llm.Client, store conversation.Store, recorder storage.Recorder, systemPrompt string) *Assistant {
	return &Assistant{
		llmClient:    llmClient,
		store:        store,
		recorder:     recorder,
		systemPrompt: systemPrompt,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Respond appends the user message, answers it and persists the session.
// If no answer can be produced the user message is taken back and nothing is
// written.
func (a *Assistant) Respond(ctx context.Context, s *session.Session, text string) (Reply, error) {
	s.Conversation.AppendUser(text)

	reply, ok := a.structured(s, text)
	if !ok {
		var err error
		reply, err = a.fallback(ctx, s)
		if err != nil {
			s.Conversation.DropLast(llm.RoleUser)
			return Reply{}, err
		}
	}

	s.Conversation.AppendAssistant(reply.Text)
	if err := a.store.Save(s.ID, s.Conversation); err != nil {
		return reply, fmt.Errorf("persist conversation: %w", err)
	}
	a.record(s.ID, text, reply)
	return reply, nil
}

func (a *Assistant) structured(s *session.Session, text string) (Reply, bool) {
	inv := s.Inventory()
	if inv == nil {
		return Reply{}, false
	}
	m, ok := inv.FindMedicine(text)
	if !ok {
		return Reply{}, false
	}
	return Reply{Text: m.Details(), Source: storage.SourceInventory, Medicine: m.Name}, true
}

func (a *Assistant) fallback(ctx context.Context, s *session.Session) (Reply, error) {
	if a.llmClient == nil {
		return Reply{}, ErrNoModel
	}
	var msgs []llm.Message
	if a.systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: a.systemPrompt})
	}
	msgs = append(msgs, s.Conversation.Messages()...)

	resp, err := a.llmClient.Generate(ctx, msgs)
	if err != nil {
		return Reply{}, fmt.Errorf("chat fallback: %w", err)
	}
	log.Printf("LLM response [session=%s, model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		s.ID, resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)
	return Reply{Text: resp.Content, Source: storage.SourceModel, Model: resp.Model, Tokens: resp.TotalTokens}, nil
}

func (a *Assistant) record(sessionID, text string, reply Reply) {
	if a.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:         a.now(),
		SessionID:         sessionID,
		UserMessage:       text,
		AssistantResponse: reply.Text,
		Source:            reply.Source,
		Medicine:          reply.Medicine,
	}
	if err := a.recorder.AppendInteraction(ev); err != nil {
		log.Printf("failed to record interaction: %v", err)
	}
}
