// Package conversation keeps the ordered message list of a session and
// persists it to a per-session JSON file.
package conversation

import (
	"sync"

	"pharmacy-assistant/internal/llm"
)

// Greeting seeds a session that has no saved history.
const Greeting = "How can I assist you with your medicine inventory?"

// Conversation is an append-only list of messages.
type Conversation struct {
	mu       sync.RWMutex
	messages []llm.Message
}

func New(messages []llm.Message) *Conversation {
	return &Conversation{messages: append([]llm.Message(nil), messages...)}
}

// Seeded returns a conversation holding only the greeting.
func Seeded() *Conversation {
	return New([]llm.Message{{Role: llm.RoleAssistant, Content: Greeting}})
}

func (c *Conversation) AppendUser(content string) {
	c.append(llm.Message{Role: llm.RoleUser, Content: content})
}

func (c *Conversation) AppendAssistant(content string) {
	c.append(llm.Message{Role: llm.RoleAssistant, Content: content})
}

func (c *Conversation) append(msg llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// DropLast removes the most recent message if it has the given role. Used to
// undo a user turn whose reply could not be produced.
func (c *Conversation) DropLast(role string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.messages)
	if n == 0 || c.messages[n-1].Role != role {
		return false
	}
	c.messages = c.messages[:n-1]
	return true
}

// Messages returns a copy of the list.
func (c *Conversation) Messages() []llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message.
func (c *Conversation) Last() (llm.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return llm.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
