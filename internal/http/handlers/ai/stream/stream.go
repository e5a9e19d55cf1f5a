// Package stream реализует HTTP-обработчик потокового чата с языковой
// моделью по протоколу Server-Sent Events.
//
// Каждый фрагмент ответа модели отправляется клиенту отдельным событием
// token сразу после получения от внешнего сервиса. Ошибки потока
// передаются событием error, после чего соединение закрывается.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// Handler управляет потоковыми HTTP-запросами чата.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис потокового общения с моделью
}

// Service описывает интерфейс потокового общения с моделью.
type Service interface {
	StreamChat(ctx context.Context, req models.ChatRequest) (<-chan models.StreamEvent, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Потоковый чат с моделью
// @Description Отправляет сообщение модели и транслирует ответ по частям через Server-Sent Events.
// @Tags AI
// @Produce  text/event-stream
// @Param message query string true "Текст сообщения"
// @Success 200 {string} string "Поток событий token и error"
// @Failure 400 {object} response.Response "Пустое сообщение"
// @Failure 500 {object} response.Response "Внешний сервис недоступен"
// @Router /ai/stream [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.stream"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		log.Error("empty message")
		response.Error(w, r, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support flushing")
		response.Error(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, err := h.service.StreamChat(r.Context(), models.ChatRequest{Message: message})
	if err != nil {
		log.Error("failed to start stream", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			log.Info("client disconnected")
			return
		case event, open := <-events:
			if !open {
				log.Info("stream completed")
				return
			}
			writeEvent(w, event)
			flusher.Flush()
			if event.Type == models.StreamEventError {
				log.Warn("stream failed", slog.String("error", event.Data))
				return
			}
		}
	}
}

// writeEvent сериализует одно событие в формат Server-Sent Events.
// Токен с переводами строк разбивается на несколько строк data:,
// иначе клиент молча отбросит все после первого перевода строки.
func writeEvent(w http.ResponseWriter, event models.StreamEvent) {
	fmt.Fprintf(w, "event: %s\n", event.Type)
	for _, line := range strings.Split(event.Data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
