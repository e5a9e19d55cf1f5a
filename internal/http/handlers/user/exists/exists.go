// Package exists реализует HTTP-обработчики проверки занятости
// имени пользователя и почты.
package exists

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
)

// Handler управляет HTTP-запросами проверки занятости.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики проверок
}

// Service описывает интерфейс бизнес-логики проверки занятости.
type Service interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Username godoc
// @Summary Проверить занятость имени пользователя
// @Description Возвращает true, если имя пользователя уже занято.
// @Tags Users
// @Produce  json
// @Param username query string true "Имя пользователя"
// @Success 200 {object} response.Response "Результат проверки"
// @Failure 400 {object} response.Response "Не указано имя пользователя"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/check/username [get]
func (h *Handler) Username(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.exists.username"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := r.URL.Query().Get("username")
	if username == "" {
		log.Error("missing username parameter")
		response.Error(w, r, http.StatusBadRequest, "username is required")
		return
	}

	taken, err := h.service.ExistsByUsername(r.Context(), username)
	if err != nil {
		log.Error("failed to check username", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("username checked", slog.String("username", username), slog.Bool("taken", taken))
	response.OK(w, r, map[string]bool{"exists": taken})
}

// Email godoc
// @Summary Проверить занятость почты
// @Description Возвращает true, если почта уже занята.
// @Tags Users
// @Produce  json
// @Param email query string true "Адрес почты"
// @Success 200 {object} response.Response "Результат проверки"
// @Failure 400 {object} response.Response "Не указан адрес почты"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/check/email [get]
func (h *Handler) Email(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.exists.email"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	if email == "" {
		log.Error("missing email parameter")
		response.Error(w, r, http.StatusBadRequest, "email is required")
		return
	}

	taken, err := h.service.ExistsByEmail(r.Context(), email)
	if err != nil {
		log.Error("failed to check email", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("email checked", slog.String("email", email), slog.Bool("taken", taken))
	response.OK(w, r, map[string]bool{"exists": taken})
}
