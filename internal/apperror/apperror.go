// Package apperror определяет единый тип ошибок приложения.
//
// Сервисы возвращают *AppError с видом ошибки (Kind) и сообщением,
// а HTTP-слой в одном месте преобразует вид в статус-код и единый
// JSON-конверт. Проверка ошибок выполняется по виду через errors.As,
// а не по конкретным типам.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind задаёт категорию ошибки приложения.
type Kind int

const (
	// KindInternal - неклассифицированная внутренняя ошибка.
	KindInternal Kind = iota
	// KindNotFound - запрошенный ресурс не найден.
	KindNotFound
	// KindConflict - ресурс уже существует (нарушение уникальности).
	KindConflict
	// KindValidation - входные данные не прошли валидацию.
	KindValidation
	// KindInvalidArgument - некорректный аргумент запроса.
	KindInvalidArgument
	// KindExternal - ошибка внешнего сервиса (AI-провайдер и т.п.).
	KindExternal
)

// AppError - ошибка приложения с категорией, сообщением и причиной.
type AppError struct {
	Kind    Kind   // Категория ошибки
	Message string // Сообщение для клиента
	Err     error  // Внутренняя причина, наружу не отдаётся
}

// Error возвращает текст ошибки вместе с причиной, если она есть.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает внутреннюю причину для errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode возвращает HTTP-статус, соответствующий категории ошибки.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation, KindInvalidArgument:
		return http.StatusBadRequest
	case KindExternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New создает новую ошибку приложения с указанной категорией.
func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// NotFound создает ошибку "не найдено".
func NotFound(message string, err error) *AppError {
	return New(KindNotFound, message, err)
}

// Conflict создает ошибку "уже существует".
func Conflict(message string, err error) *AppError {
	return New(KindConflict, message, err)
}

// Validation создает ошибку валидации.
func Validation(message string, err error) *AppError {
	return New(KindValidation, message, err)
}

// InvalidArgument создает ошибку некорректного аргумента.
func InvalidArgument(message string, err error) *AppError {
	return New(KindInvalidArgument, message, err)
}

// External создает ошибку внешнего сервиса.
func External(message string, err error) *AppError {
	return New(KindExternal, message, err)
}

// Internal создает внутреннюю ошибку.
func Internal(message string, err error) *AppError {
	return New(KindInternal, message, err)
}

// IsKind проверяет, относится ли ошибка (или любая из обёрнутых) к категории kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsNotFound сообщает, является ли ошибка ошибкой "не найдено".
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsConflict сообщает, является ли ошибка конфликтом уникальности.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsValidation сообщает, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }
