// Package search реализует HTTP-обработчик поиска пользователей
// по имени, почте или реальному имени.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Handler управляет HTTP-запросами поиска пользователей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики поиска пользователей
}

// Service описывает интерфейс бизнес-логики поиска пользователей.
type Service interface {
	Search(ctx context.Context, keyword string, page, size int) ([]*models.UserResponse, int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск пользователей
// @Description Ищет пользователей по подстроке в имени, почте или реальном имени.
// @Tags Users
// @Produce  json
// @Param keyword query string true "Строка поиска"
// @Param page query int false "Номер страницы, с нуля" default(0)
// @Param size query int false "Размер страницы" default(10)
// @Success 200 {object} response.Response "Страница найденных пользователей"
// @Failure 400 {object} response.Response "Пустая строка поиска"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /users/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		log.Error("empty search keyword")
		response.Error(w, r, http.StatusBadRequest, "keyword is required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
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

	users, total, err := h.service.Search(r.Context(), keyword, page, size)
	if err != nil {
		log.Error("failed to search users", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("users search completed",
		slog.String("keyword", keyword),
		slog.Int64("total", total))
	response.OK(w, r, response.NewPage(users, page, size, total))
}
