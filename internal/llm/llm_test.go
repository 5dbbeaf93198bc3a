package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/testgen/internal/config"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Focus on login edge cases", "The system shall lock accounts after 5 failures.")

	assert.Contains(t, prompt, "QA engineer")
	assert.Contains(t, prompt, "The system shall lock accounts after 5 failures.")
	assert.Contains(t, prompt, "Focus on login edge cases")
	assert.Contains(t, prompt, "||")
	assert.Contains(t, prompt, "Test Case 1")
	assert.Less(t, strings.Index(prompt, "Context:"), strings.Index(prompt, "Instruction:"))
}

func TestBuildPrompt_emptyContext(t *testing.T) {
	prompt := BuildPrompt("anything", "")
	assert.Contains(t, prompt, "Context:\n\n")
	assert.Contains(t, prompt, "anything")
}

func TestRequester_RequestCompletion(t *testing.T) {
	fake := &fakeCompleter{reply: "  a || b || c\n\n"}
	r := NewRequester(fake, "fake")

	reply, err := r.RequestCompletion(context.Background(), "do it", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "a || b || c", reply)
	require.Len(t, fake.prompts, 1)
	assert.Equal(t, BuildPrompt("do it", "ctx"), fake.prompts[0])
}

func TestRequester_emptyContextStillCalls(t *testing.T) {
	fake := &fakeCompleter{reply: ""}
	r := NewRequester(fake, "fake")

	reply, err := r.RequestCompletion(context.Background(), "do it", "")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Len(t, fake.prompts, 1)
}

func TestRequester_serviceError(t *testing.T) {
	cause := errors.New("connection refused")
	fake := &fakeCompleter{err: cause}
	r := NewRequester(fake, "groq")

	_, err := r.RequestCompletion(context.Background(), "do it", "ctx")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "groq", svcErr.Provider)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, fake.prompts, 1, "no retry")
}

func newChatServer(t *testing.T, handler http.HandlerFunc) (*ChatClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewChatClientWithEndpoint(ChatOptions{
		APIKey:      "test-key",
		Model:       "llama3-70b-8192",
		Temperature: 0.3,
		MaxTokens:   1500,
		Timeout:     5 * time.Second,
	}, srv.URL+"/chat/completions")
	return c, srv
}

func TestChatClient_Complete(t *testing.T) {
	var got chatRequest
	c, _ := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Login || Enter creds || Logged in"},"finish_reason":"stop"}]}`))
	})

	reply, err := c.Complete(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "Login || Enter creds || Logged in", reply)

	assert.Equal(t, "llama3-70b-8192", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	assert.Equal(t, 1500, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "the prompt", got.Messages[0].Content)
}

func TestChatClient_statusError(t *testing.T) {
	c, _ := newChatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
	})

	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestChatClient_statusErrorRawBody(t *testing.T) {
	c, _ := newChatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	})

	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Less(t, len(err.Error()), 700)
}

func TestChatClient_noChoices(t *testing.T) {
	c, _ := newChatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatClient_badJSON(t *testing.T) {
	c, _ := newChatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
}

func TestChatClient_contextCanceled(t *testing.T) {
	c, _ := newChatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewChatClient_endpoint(t *testing.T) {
	c := NewChatClient(ChatOptions{BaseURL: "https://api.groq.com/openai/v1/"})
	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", c.endpoint)
	assert.Equal(t, 120*time.Second, c.client.Timeout)
}

func TestFirstText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("a || b"), genai.Text(" || c")}},
		}},
	}
	got, err := firstText(resp)
	require.NoError(t, err)
	assert.Equal(t, "a || b || c", got)

	_, err = firstText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
	_, err = firstText(nil)
	assert.Error(t, err)
}

func TestNewGeminiClient_requiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiOptions{Model: "gemini-1.5-flash"})
	assert.Error(t, err)
}

func TestNewCompleter(t *testing.T) {
	cfg := config.Config{}
	config.ApplyDefaults(&cfg)
	cfg.LLM.APIKey = "k"

	c, closer, err := NewCompleter(context.Background(), cfg.LLM)
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())
	chat, ok := c.(*ChatClient)
	require.True(t, ok)
	assert.Equal(t, config.DefaultBaseURL+"/chat/completions", chat.endpoint)
	assert.Equal(t, config.DefaultModel, chat.model)

	cfg.LLM.Provider = "unknown"
	_, _, err = NewCompleter(context.Background(), cfg.LLM)
	assert.Error(t, err)
}
