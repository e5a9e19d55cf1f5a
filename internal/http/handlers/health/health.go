// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/user-hub/internal/http/response"
)

// Handler отвечает на запросы проверки состояния.
type Handler struct {
	log     *slog.Logger
	started time.Time
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log, started: time.Now()}
}

// ServeHTTP godoc
// @Summary Проверка состояния сервиса
// @Description Возвращает статус сервиса и время работы с момента запуска.
// @Tags Service
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
