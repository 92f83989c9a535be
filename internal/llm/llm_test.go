package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "  Paris.  ",
			InputTokens:  10,
			OutputTokens: 2,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// --- Tests ---

func TestChatSendsPrompt(t *testing.T) {
	mock := NewMockProvider("test")
	chat := NewChat(mock, "test-model", "Be brief.")

	reply, err := chat.Chat(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Paris." {
		t.Errorf("reply = %q, want trimmed %q", reply, "Paris.")
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem || req.Messages[1].Role != RoleUser {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
	if req.Messages[1].Content != "What is the capital of France?" {
		t.Errorf("prompt = %q", req.Messages[1].Content)
	}
}

func TestChatWithoutProvider(t *testing.T) {
	chat := NewChat(nil, "", "")
	if _, err := chat.Chat(context.Background(), "hi"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestChatEmptyPrompt(t *testing.T) {
	chat := NewChat(NewMockProvider("test"), "", "")
	if _, err := chat.Chat(context.Background(), "   "); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestChatPropagatesProviderError(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Err = errors.New("quota exceeded")
	chat := NewChat(mock, "", "")
	_, err := chat.Chat(context.Background(), "hi")
	if err == nil || err.Error() != "quota exceeded" {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewProvider(Options{Provider: "openai", Model: "gpt-4o-mini"}); err == nil {
		t.Error("expected error for openai with missing API key")
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	if _, err := NewProvider(Options{Provider: "unknown"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryNone(t *testing.T) {
	p, err := NewProvider(Options{Provider: "none"})
	if err != nil || p != nil {
		t.Errorf("expected nil provider and nil error, got %v, %v", p, err)
	}
}

func TestFactoryCreatesOllamaWithDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	provider, err := NewProvider(Options{Provider: "ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ollamaP, ok := provider.(*OllamaProvider)
	if !ok {
		t.Fatal("expected *OllamaProvider")
	}
	if ollamaP.baseURL != "http://localhost:11434" {
		t.Errorf("expected default host, got %q", ollamaP.baseURL)
	}
}

func TestFactoryCreatesOpenAIProviderWithLimiter(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	provider, err := NewProvider(Options{Provider: "openai", Model: "gpt-4o-mini", RateLimitRPM: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := provider.(*RateLimitedProvider); !ok {
		t.Errorf("expected rate limited provider, got %T", provider)
	}
	if provider.Name() != "openai" {
		t.Errorf("expected name 'openai', got %q", provider.Name())
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message:    ollamaMessage{Role: "assistant", Content: "Paris"},
			Model:      req.Model,
			Done:       true,
			DoneReason: "stop",
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "capital of France?"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "Paris" || resp.Model != "llama3" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nope")
	_, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil || err.Error() != "ollama returned status 404: model 'nope' not found" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRateLimiterPassesThrough(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 60)

	resp, err := rl.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "  Paris.  " {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if rl.Name() != "test" {
		t.Errorf("expected name 'test', got %q", rl.Name())
	}
}

func TestRateLimiterLimitsRequests(t *testing.T) {
	mock := NewMockProvider("test")
	// Allow only 2 requests per minute.
	rl := NewRateLimitedProvider(mock, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req := CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hello"}}}

	// First two should succeed immediately.
	for i := 0; i < 2; i++ {
		if _, err := rl.Complete(ctx, req); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	// Third should block and eventually fail due to context timeout.
	if _, err := rl.Complete(ctx, req); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls to reach the provider, got %d", mock.CallCount())
	}
}
