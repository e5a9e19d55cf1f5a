package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-hub/internal/apperror"
	"github.com/magabrotheeeer/user-hub/internal/config"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

func newTestService(baseURL string) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(config.AI{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		Model:     "test-model",
		TimeoutAI: 5 * time.Second,
	}, logger)
}

func TestChat_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"model": "test-model",
			"choices": [{"message": {"role": "assistant", "content": "hello there"}, "finish_reason": "stop"}],
			"usage": {"total_tokens": 17}
		}`)
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	res, err := service.Chat(context.Background(), models.ChatRequest{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "hello there", res.Content)
	assert.Equal(t, "test-model", res.Model)
	assert.Equal(t, 17, res.TotalTokens)
	assert.Equal(t, "stop", res.FinishReason)
}

func TestChat_RequestModelOverride(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "custom-model", req["model"])

		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)
	model := "custom-model"

	res, err := service.Chat(context.Background(), models.ChatRequest{Message: "hi", Model: &model})

	require.NoError(t, err)
	// Провайдер не вернул поле model, берется модель запроса
	assert.Equal(t, "custom-model", res.Model)
}

func TestChat_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error": "model overloaded"}`)
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	_, err := service.Chat(context.Background(), models.ChatRequest{Message: "hi"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
	assert.Contains(t, err.Error(), "502")
}

func TestChat_NoChoices(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	_, err := service.Chat(context.Background(), models.ChatRequest{Message: "hi"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
}

func TestChat_UpstreamUnreachable(t *testing.T) {
	service := newTestService("http://127.0.0.1:1")

	_, err := service.Chat(context.Background(), models.ChatRequest{Message: "hi"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
}

func TestSimpleChat(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": [{"message": {"content": "short answer"}}]}`)
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	content, err := service.SimpleChat(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "short answer", content)
}

func TestStreamChat_TokensInOrder(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	events, err := service.StreamChat(context.Background(), models.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	var tokens []string
	for event := range events {
		require.Equal(t, models.StreamEventToken, event.Type)
		tokens = append(tokens, event.Data)
	}
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
}

func TestStreamChat_ReasoningFallbackAndSkips(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		// Пустая дельта пропускается, reasoning_content используется как запасной источник
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"reasoning_content\":\"thinking\"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"done\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	events, err := service.StreamChat(context.Background(), models.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	var tokens []string
	for event := range events {
		require.Equal(t, models.StreamEventToken, event.Type)
		tokens = append(tokens, event.Data)
	}
	assert.Equal(t, []string{"thinking", "done"}, tokens)
}

func TestStreamChat_ClientCancelStopsReader(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		w.(http.Flusher).Flush()
		// Поток остается открытым, пока клиент не отменит запрос
		<-r.Context().Done()
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := service.StreamChat(ctx, models.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, models.StreamEventToken, first.Type)

	// Потребитель отключается и больше не читает канал
	cancel()

	assert.Eventually(t, func() bool {
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		return !strings.Contains(string(buf[:n]), "readStream")
	}, 2*time.Second, 50*time.Millisecond, "reader goroutine must exit after cancel")
}

func TestStreamChat_UpstreamErrorBeforeStream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	service := newTestService(upstream.URL)

	_, err := service.StreamChat(context.Background(), models.ChatRequest{Message: "hi"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
}
