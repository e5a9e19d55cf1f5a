// Package chat проксирует сообщения к внешнему chat-completion сервису
// с OpenAI-совместимым API. Поддерживаются обычный запрос-ответ и
// потоковый режим, в котором токены по мере прихода транслируются
// в канал событий.
package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/user-hub/internal/apperror"
	"github.com/magabrotheeeer/user-hub/internal/config"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// streamDonePayload - сигнальное сообщение конца потока от провайдера.
const streamDonePayload = "[DONE]"

// Service выполняет запросы к внешнему AI-сервису.
type Service struct {
	cfg config.AI
	log *slog.Logger
	// client используется для обычных запросов и ограничен таймаутом.
	client *http.Client
	// streamClient без таймаута: поток живет до конца генерации.
	streamClient *http.Client
}

// New создает новый Service с настройками подключения к провайдеру.
func New(cfg config.AI, log *slog.Logger) *Service {
	return &Service{
		cfg:          cfg,
		log:          log,
		client:       &http.Client{Timeout: cfg.TimeoutAI},
		streamClient: &http.Client{},
	}
}

// Типы для обмена с провайдером.

type upstreamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamRequest struct {
	Model       string            `json:"model"`
	Messages    []upstreamMessage `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
}

type upstreamChoice struct {
	Message      upstreamMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
	Delta        struct {
		Content          string `json:"content"`
		ReasoningContent string `json:"reasoning_content"`
	} `json:"delta"`
}

type upstreamResponse struct {
	Model   string           `json:"model"`
	Choices []upstreamChoice `json:"choices"`
	Usage   struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat отправляет одно пользовательское сообщение провайдеру и возвращает
// ответ целиком. Любая ошибка транспорта, статуса или разбора заворачивается
// в ошибку внешнего сервиса, ретраев нет.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	body := s.buildRequest(req, false)

	resp, err := s.doRequest(ctx, s.client, body)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperror.External("chat completion failed",
			fmt.Errorf("upstream returned %d: %s", resp.StatusCode, payload))
	}

	var parsed upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperror.External("chat completion failed", fmt.Errorf("decode upstream response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return nil, apperror.External("chat completion failed", fmt.Errorf("upstream returned no choices"))
	}

	model := parsed.Model
	if model == "" {
		model = body.Model
	}
	return &models.ChatResponse{
		Content:      parsed.Choices[0].Message.Content,
		Model:        model,
		TotalTokens:  parsed.Usage.TotalTokens,
		FinishReason: parsed.Choices[0].FinishReason,
	}, nil
}

// SimpleChat отправляет сообщение по тому же пути и возвращает только текст.
func (s *Service) SimpleChat(ctx context.Context, message string) (string, error) {
	resp, err := s.Chat(ctx, models.ChatRequest{Message: message})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// StreamChat открывает потоковый запрос к провайдеру и возвращает канал
// событий. Каждый пришедший токен отправляется отдельным событием в порядке
// прихода; сигнал конца потока закрывает канал; ошибка транспорта дает
// единственное событие ошибки и закрывает канал. Цикл чтения работает в
// отдельной горутине, вызывающая сторона - единственный потребитель.
func (s *Service) StreamChat(ctx context.Context, req models.ChatRequest) (<-chan models.StreamEvent, error) {
	body := s.buildRequest(req, true)

	resp, err := s.doRequest(ctx, s.streamClient, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, apperror.External("chat completion failed",
			fmt.Errorf("upstream returned %d: %s", resp.StatusCode, payload))
	}

	streamID := uuid.New().String()
	log := s.log.With(slog.String("stream_id", streamID))
	log.Info("chat stream opened")

	events := make(chan models.StreamEvent)
	go s.readStream(ctx, resp.Body, events, log)
	return events, nil
}

// readStream читает SSE-строки провайдера и транслирует токены в канал.
// Каждая отправка в канал конкурирует с отменой контекста: если потребитель
// отключился и больше не читает, горутина завершается, а не виснет на отправке.
func (s *Service) readStream(ctx context.Context, body io.ReadCloser, events chan<- models.StreamEvent, log *slog.Logger) {
	defer close(events)
	defer func() {
		_ = body.Close()
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if payload == streamDonePayload {
			log.Info("chat stream completed")
			return
		}

		var chunk upstreamResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			log.Warn("failed to decode stream chunk", sl.Err(err))
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token == "" {
			token = chunk.Choices[0].Delta.ReasoningContent
		}
		if token != "" {
			select {
			case events <- models.StreamEvent{Type: models.StreamEventToken, Data: token}:
			case <-ctx.Done():
				log.Info("chat stream canceled by client")
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error("chat stream failed", sl.Err(err))
		select {
		case events <- models.StreamEvent{Type: models.StreamEventError, Data: err.Error()}:
		case <-ctx.Done():
		}
		return
	}
	log.Info("chat stream closed by upstream")
}

func (s *Service) buildRequest(req models.ChatRequest, stream bool) upstreamRequest {
	model := s.cfg.Model
	if req.Model != nil && *req.Model != "" {
		model = *req.Model
	}
	temperature := req.Temperature
	if temperature == nil && s.cfg.Temperature > 0 {
		t := s.cfg.Temperature
		temperature = &t
	}
	maxTokens := req.MaxTokens
	if maxTokens == nil && s.cfg.MaxTokens > 0 {
		m := s.cfg.MaxTokens
		maxTokens = &m
	}
	return upstreamRequest{
		Model:       model,
		Messages:    []upstreamMessage{{Role: "user", Content: req.Message}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	}
}

func (s *Service) doRequest(ctx context.Context, client *http.Client, body upstreamRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperror.External("chat completion failed", fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, apperror.External("chat completion failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if s.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, apperror.External("chat completion failed", err)
	}
	return resp, nil
}
