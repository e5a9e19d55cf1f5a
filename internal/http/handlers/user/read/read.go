// Package read реализует HTTP-обработчики для получения пользователя
// по идентификатору или по имени.
package read

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

// Handler управляет HTTP-запросами чтения пользователей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики чтения пользователей
}

// Service описывает интерфейс бизнес-логики чтения пользователя.
type Service interface {
	GetByID(ctx context.Context, id int64) (*models.UserResponse, error)
	GetByUsername(ctx context.Context, username string) (*models.UserResponse, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ByID godoc
// @Summary Получить пользователя по ID
// @Description Возвращает данные пользователя по его идентификатору.
// @Tags Users
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Данные пользователя"
// @Failure 400 {object} response.Response "Некорректный идентификатор"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/{id} [get]
func (h *Handler) ByID(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read.byid"
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

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		log.Warn("failed to get user", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("user found", slog.Int64("id", user.ID))
	response.OK(w, r, user)
}

// ByUsername godoc
// @Summary Получить пользователя по имени
// @Description Возвращает данные пользователя по его имени.
// @Tags Users
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response "Данные пользователя"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/username/{username} [get]
func (h *Handler) ByUsername(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read.byusername"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")
	if username == "" {
		log.Error("empty username")
		response.Error(w, r, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		log.Warn("failed to get user", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("user found", slog.String("username", user.Username))
	response.OK(w, r, user)
}
