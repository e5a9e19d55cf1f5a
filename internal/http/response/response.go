// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков. Каждый неуспешный ответ
// формируется в едином конверте {code, message, data, timestamp}, ошибки
// сервисов переводятся в HTTP-статусы в одном месте.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-hub/internal/apperror"
)

// Response описывает стандартный конверт JSON-ответа сервера.
// Поле Code повторяет HTTP-статус ответа, Timestamp - момент
// формирования ответа в миллисекундах Unix.
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Page описывает конверт постраничного ответа: срез элементов
// и метаданные пагинации.
type Page struct {
	Content       any   `json:"content"`
	PageNumber    int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

// NewPage собирает конверт пагинации из среза элементов и общего
// количества записей. Для пустого результата totalPages равен нулю,
// а флаги first и last взведены.
func NewPage(content any, page, size int, totalElements int64) Page {
	totalPages := 0
	if size > 0 {
		totalPages = int((totalElements + int64(size) - 1) / int64(size))
	}
	return Page{
		Content:       content,
		PageNumber:    page,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
	}
}

func newResponse(code int, message string, data any) Response {
	return Response{
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// OK пишет успешный ответ 200 с данными.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, newResponse(http.StatusOK, "success", data))
}

// OKWithMessage пишет успешный ответ 200 с сообщением и данными.
func OKWithMessage(w http.ResponseWriter, r *http.Request, message string, data any) {
	render.JSON(w, r, newResponse(http.StatusOK, message, data))
}

// Created пишет ответ 201 для успешно созданного ресурса.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, newResponse(http.StatusCreated, "created", data))
}

// Error пишет ответ с указанным статусом и сообщением об ошибке.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.WriteHeader(status)
	render.JSON(w, r, newResponse(status, message, nil))
}

// AppError переводит ошибку сервиса в HTTP-статус и единый конверт.
// Для *apperror.AppError наружу уходит его сообщение и статус по виду,
// любая другая ошибка отдается как 500 с обезличенным сообщением.
func AppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Error(w, r, appErr.StatusCode(), appErr.Message)
		return
	}
	Error(w, r, http.StatusInternalServerError, "internal server error")
}

// ValidationError формирует ответ 400 с обезличенным сообщением и
// картой поле->текст нарушения в данных ответа.
func ValidationError(w http.ResponseWriter, r *http.Request, errs validator.ValidationErrors) {
	fields := make(map[string]string, len(errs))
	for _, err := range errs {
		fields[err.Field()] = validationMessage(err)
	}
	w.WriteHeader(http.StatusBadRequest)
	render.JSON(w, r, newResponse(http.StatusBadRequest, "validation failed", fields))
}

func validationMessage(err validator.FieldError) string {
	switch err.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", err.Field())
	case "email":
		return fmt.Sprintf("field %s must be a valid email address", err.Field())
	case "min":
		return fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("field %s must be greater than or equal to %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("field %s is not valid", err.Field())
	}
}
