// Package chat реализует HTTP-обработчики синхронного общения
// с языковой моделью через внешний совместимый API.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// Handler управляет HTTP-запросами синхронного чата.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис общения с языковой моделью
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс синхронного общения с моделью.
type Service interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	SimpleChat(ctx context.Context, message string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить сообщение модели
// @Description Отправляет сообщение языковой модели и возвращает полный ответ.
// @Tags AI
// @Accept  json
// @Produce  json
// @Param request body models.ChatRequest true "Сообщение и параметры генерации"
// @Success 200 {object} response.Response "Ответ модели"
// @Failure 400 {object} response.Response "Некорректный JSON или пустое сообщение"
// @Failure 500 {object} response.Response "Внешний сервис недоступен"
// @Router /ai/chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.chat"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		response.ValidationError(w, r, err.(validator.ValidationErrors))
		return
	}

	res, err := h.service.Chat(r.Context(), req)
	if err != nil {
		log.Error("chat completion failed", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("chat completion done", slog.Int("total_tokens", res.TotalTokens))
	response.OK(w, r, res)
}

// Simple godoc
// @Summary Отправить сообщение модели строкой
// @Description Упрощенный вариант чата: сообщение передается параметром запроса.
// @Tags AI
// @Produce  json
// @Param message query string true "Текст сообщения"
// @Success 200 {object} response.Response "Ответ модели"
// @Failure 400 {object} response.Response "Пустое сообщение"
// @Failure 500 {object} response.Response "Внешний сервис недоступен"
// @Router /ai/simple-chat [post]
func (h *Handler) Simple(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.chat.simple"
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

	content, err := h.service.SimpleChat(r.Context(), message)
	if err != nil {
		log.Error("chat completion failed", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("chat completion done")
	response.OK(w, r, map[string]string{"content": content})
}

// Health godoc
// @Summary Проверить доступность чат-сервиса
// @Tags AI
// @Produce  json
// @Success 200 {object} response.Response "Статус сервиса"
// @Router /ai/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, map[string]string{
		"status":  "ok",
		"service": "ai-chat",
	})
}
