package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
)

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			t.Errorf("missing api key header")
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer server.Close()

	g := NewGeminiClient(config.GeminiConfig{Endpoint: server.URL + "/models/", Model: "gemini-test", APIKey: "key"}, server.Client())
	text, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != `{"a":1}` {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestGeminiGenerateNoCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := NewGeminiClient(config.GeminiConfig{Endpoint: server.URL, Model: "m", APIKey: "key"}, server.Client())
	_, err := g.Generate(context.Background(), "hello")
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestGeminiValidate(t *testing.T) {
	t.Parallel()

	g := NewGeminiClient(config.GeminiConfig{Endpoint: "https://example.org", Model: "m"}, nil)
	err := g.Validate()

	var missing *domain.MissingConfigError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingConfigError, got %v", err)
	}
	if missing.Stage != "enricher" || len(missing.Keys) != 1 || missing.Keys[0] != "GEMINI_API_KEY" {
		t.Fatalf("unexpected missing config: %+v", missing)
	}
}

func TestChatGPTGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "gpt-test" || len(body.Messages) != 2 || body.Messages[1]["content"] != "prompt" {
			t.Errorf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"answer"}}]}`))
	}))
	defer server.Close()

	c := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "gpt-test", APIKey: "key"}, server.Client())
	text, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != "answer" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestChatGPTGenerateErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "gpt-test", APIKey: "key"}, server.Client())
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	gen, err := New(config.LLMConfig{Provider: "openai"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := gen.(*ChatGPTClient); !ok {
		t.Fatalf("expected ChatGPTClient, got %T", gen)
	}

	gen, err = New(config.LLMConfig{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := gen.(*GeminiClient); !ok {
		t.Fatalf("expected GeminiClient, got %T", gen)
	}

	if _, err := New(config.LLMConfig{Provider: "unknown"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
