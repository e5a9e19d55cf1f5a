// Типы запросов и ответов для проксирования чата к внешнему AI-сервису.
package models

// ChatRequest используется для приёма данных из JSON-запроса на чат.
// Поля Model, Temperature и MaxTokens опциональны: nil означает
// использовать значения из конфигурации.
type ChatRequest struct {
	Message     string   `json:"message" validate:"required"` // Сообщение пользователя
	Model       *string  `json:"model,omitempty"`             // Переопределение модели
	Temperature *float64 `json:"temperature,omitempty"`       // Переопределение температуры
	MaxTokens   *int     `json:"maxTokens,omitempty"`         // Переопределение лимита токенов
}

// ChatResponse представляет ответ AI-сервиса во внешнем API.
type ChatResponse struct {
	Content      string `json:"content"`      // Текст ответа
	Model        string `json:"model"`        // Метка модели
	TotalTokens  int    `json:"totalTokens"`  // Количество токенов (0, если не отслеживается)
	FinishReason string `json:"finishReason"` // Причина завершения генерации
}

// Типы событий потокового чата.
const (
	StreamEventToken = "token"
	StreamEventError = "error"
)

// StreamEvent представляет одно событие потокового чата:
// очередной токен от модели либо ошибку, завершающую поток.
type StreamEvent struct {
	Type string // token или error
	Data string // Текст токена либо сообщение об ошибке
}
