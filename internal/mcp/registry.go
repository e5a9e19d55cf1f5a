// Package mcp реализует инструментальные конечные точки для AI-агентов
// поверх протокола в стиле JSON-RPC 2.0: перечисление инструментов и их
// вызов. Каждый инструмент регистрируется со структурированной схемой
// параметров, а аргументы вызова декодируются в типизированную структуру
// инструмента и валидируются до исполнения.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Property описывает один параметр инструмента в схеме.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// InputSchema описывает параметры инструмента.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Tool - зарегистрированный инструмент: имя, описание, схема параметров
// и обработчик, принимающий сырые аргументы вызова.
type Tool struct {
	Name        string
	Description string
	InputSchema InputSchema
	Handler     func(ctx context.Context, arguments json.RawMessage) (any, error)
}

// Registry хранит инструменты. Регистрация выполняется один раз при
// старте приложения, после чего реестр только читается.
type Registry struct {
	tools map[string]Tool
	order []string
	log   *slog.Logger
}

// NewRegistry создает пустой реестр инструментов.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		log:   log,
	}
}

// Register добавляет инструмент в реестр. Повторная регистрация
// имени заменяет предыдущий инструмент.
func (r *Registry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.log.Info("registered mcp tool", slog.String("tool", tool.Name))
}

// List возвращает инструменты в порядке регистрации.
func (r *Registry) List() []Tool {
	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Call исполняет инструмент name с переданными аргументами.
func (r *Registry) Call(ctx context.Context, name string, arguments json.RawMessage) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return tool.Handler(ctx, arguments)
}

// decodeArguments декодирует аргументы вызова в типизированную структуру
// параметров инструмента. Пустые аргументы дают нулевую структуру.
func decodeArguments(arguments json.RawMessage, target any) error {
	if len(arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(arguments, target); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}
