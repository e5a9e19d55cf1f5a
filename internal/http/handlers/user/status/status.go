// Package status реализует HTTP-обработчики включения и отключения
// пользователей.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// Handler управляет HTTP-запросами смены статуса пользователей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики смены статуса
}

// Service описывает интерфейс бизнес-логики смены статуса пользователя.
type Service interface {
	Enable(ctx context.Context, id int64) (*models.UserResponse, error)
	Disable(ctx context.Context, id int64) (*models.UserResponse, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Enable godoc
// @Summary Включить пользователя
// @Description Переводит пользователя в активный статус.
// @Tags Users
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Обновленные данные пользователя"
// @Failure 400 {object} response.Response "Некорректный идентификатор"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/{id}/enable [post]
func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "handlers.user.status.enable", h.service.Enable)
}

// Disable godoc
// @Summary Отключить пользователя
// @Description Переводит пользователя в отключенный статус.
// @Tags Users
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Обновленные данные пользователя"
// @Failure 400 {object} response.Response "Некорректный идентификатор"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/{id}/disable [post]
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "handlers.user.status.disable", h.service.Disable)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, id int64) (*models.UserResponse, error)) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		log.Error("invalid user id", slog.String("raw", chi.URLParam(r, "id")))
		response.Error(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := fn(r.Context(), id)
	if err != nil {
		log.Warn("failed to change user status", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("user status changed",
		slog.Int64("id", user.ID),
		slog.Int("status", user.Status))
	response.OK(w, r, user)
}
