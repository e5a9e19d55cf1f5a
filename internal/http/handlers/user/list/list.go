// Package list реализует HTTP-обработчики получения списков пользователей:
// полный список, постраничная выборка с сортировкой и выборка по статусу.
package list

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

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Handler управляет HTTP-запросами списков пользователей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики списков пользователей
}

// Service описывает интерфейс бизнес-логики списков пользователей.
type Service interface {
	ListAll(ctx context.Context) ([]*models.UserResponse, error)
	List(ctx context.Context, page, size int, sortField, direction string) ([]*models.UserResponse, int64, error)
	ListByStatus(ctx context.Context, status, page, size int) ([]*models.UserResponse, int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// All godoc
// @Summary Получить всех пользователей
// @Description Возвращает полный список пользователей без постраничной разбивки.
// @Tags Users
// @Produce  json
// @Success 200 {object} response.Response "Список пользователей"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/all [get]
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list.all"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("users listed", slog.Int("count", len(users)))
	response.OK(w, r, users)
}

// Page godoc
// @Summary Получить страницу пользователей
// @Description Возвращает постраничную выборку пользователей с сортировкой.
// @Tags Users
// @Produce  json
// @Param page query int false "Номер страницы, с нуля" default(0)
// @Param size query int false "Размер страницы" default(10)
// @Param sortBy query string false "Поле сортировки" default(id)
// @Param direction query string false "Направление сортировки: asc или desc" default(asc)
// @Success 200 {object} response.Response "Страница пользователей"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users [get]
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list.page"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, size := pagination(r)
	sortField := r.URL.Query().Get("sortBy")
	if sortField == "" {
		sortField = "id"
	}
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "asc"
	}

	users, total, err := h.service.List(r.Context(), page, size, sortField, direction)
	if err != nil {
		log.Error("failed to list users page", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("users page listed",
		slog.Int("page", page),
		slog.Int("size", size),
		slog.Int64("total", total))
	response.OK(w, r, response.NewPage(users, page, size, total))
}

// ByStatus godoc
// @Summary Получить пользователей по статусу
// @Description Возвращает постраничную выборку пользователей с указанным статусом.
// @Tags Users
// @Produce  json
// @Param status path int true "Статус: 1 - активен, 0 - отключен"
// @Param page query int false "Номер страницы, с нуля" default(0)
// @Param size query int false "Размер страницы" default(10)
// @Success 200 {object} response.Response "Страница пользователей"
// @Failure 400 {object} response.Response "Некорректный статус"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/status/{status} [get]
func (h *Handler) ByStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list.bystatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status, err := strconv.Atoi(chi.URLParam(r, "status"))
	if err != nil || (status != models.StatusEnabled && status != models.StatusDisabled) {
		log.Error("invalid status", slog.String("raw", chi.URLParam(r, "status")))
		response.Error(w, r, http.StatusBadRequest, "status must be 0 or 1")
		return
	}

	page, size := pagination(r)
	users, total, err := h.service.ListByStatus(r.Context(), status, page, size)
	if err != nil {
		log.Error("failed to list users by status", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("users listed by status",
		slog.Int("status", status),
		slog.Int64("total", total))
	response.OK(w, r, response.NewPage(users, page, size, total))
}

// pagination читает параметры page и size из запроса,
// приводя их к безопасным границам.
func pagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
