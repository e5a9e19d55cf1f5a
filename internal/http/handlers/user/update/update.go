// Package update реализует HTTP-обработчик частичного обновления пользователя.
//
// Обновляются только те поля, которые присутствуют в теле запроса;
// отсутствующие поля сохраняют прежние значения.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// Handler управляет HTTP-запросами на обновление пользователей.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики обновления пользователей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики обновления пользователя.
type Service interface {
	Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserResponse, error)
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
// @Summary Обновить данные пользователя
// @Description Частично обновляет пользователя: изменяются только переданные поля.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Param request body models.UpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновленные данные пользователя"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 409 {object} response.Response "Новая почта уже занята"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"
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

	var req models.UpdateUserRequest
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

	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Warn("failed to update user", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("user updated", slog.Int64("id", user.ID))
	response.OK(w, r, user)
}
