package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pharmacy-assistant/internal/config"
)

func TestOpenAIClient_SendsHistoryAndHeaders(t *testing.T) {
	var got struct {
		Model    string    `json:"model"`
		Messages []Message `json:"messages"`
	}
	var referer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "gpt-3.5-turbo", "https://example.org", "")
	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleAssistant, Content: "How can I help?"},
		{Role: RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "hello there" || resp.TotalTokens != 5 || resp.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got.Model != "gpt-3.5-turbo" || len(got.Messages) != 2 || got.Messages[1].Content != "hi" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if referer != "https://example.org" {
		t.Fatalf("referrer header missing: %q", referer)
	}
}

func TestOpenAIClient_PropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "m", "", "")
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactory(&config.Config{OpenAIAPIKey: "k"})
	if _, err := f.CreateClient("nope", "m"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := (&Factory{}).CreateClient(config.ProviderOpenAI, "m"); err == nil {
		t.Fatalf("expected error without api key")
	}
	c, err := f.CreateClient("OpenAI", "m")
	if err != nil || c == nil {
		t.Fatalf("openai client: %v", err)
	}
}
