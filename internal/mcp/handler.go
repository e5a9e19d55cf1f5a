package mcp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
)

// Версия протокола и сервера, отдаваемые в /mcp/info.
const (
	serverName      = "user-hub-mcp-server"
	serverVersion   = "1.0.0"
	protocolVersion = "2024-11-05"
)

// Коды ошибок JSON-RPC 2.0.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type rpcRequest struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// toolDescriptor - описание инструмента в ответе tools/list.
type toolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// textContent - единица содержимого результата вызова инструмента.
type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Handler обслуживает HTTP-поверхность инструментов: JSON-RPC сообщения,
// проверку здоровья и отладочную информацию.
type Handler struct {
	log      *slog.Logger
	registry *Registry
}

// NewHandler создает новый Handler поверх реестра инструментов.
func NewHandler(log *slog.Logger, registry *Registry) *Handler {
	return &Handler{log: log, registry: registry}
}

// Message обрабатывает JSON-RPC запрос: tools/list или tools/call.
// Ошибка протокола возвращается объектом error JSON-RPC; ошибка самого
// инструмента - результатом с isError, как того требует протокол.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	const op = "mcp.Message"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode rpc request", sl.Err(err))
		render.JSON(w, r, rpcResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error"},
		})
		return
	}
	if req.Jsonrpc != "2.0" {
		render.JSON(w, r, rpcResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: codeInvalidRequest, Message: "jsonrpc must be 2.0"},
			ID:      req.ID,
		})
		return
	}

	switch req.Method {
	case "tools/list":
		tools := h.registry.List()
		descriptors := make([]toolDescriptor, 0, len(tools))
		for _, tool := range tools {
			descriptors = append(descriptors, toolDescriptor{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.InputSchema,
			})
		}
		render.JSON(w, r, rpcResponse{
			Jsonrpc: "2.0",
			Result:  map[string]any{"tools": descriptors},
			ID:      req.ID,
		})

	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			render.JSON(w, r, rpcResponse{
				Jsonrpc: "2.0",
				Error:   &rpcError{Code: codeInvalidParams, Message: "params must contain tool name"},
				ID:      req.ID,
			})
			return
		}

		log.Info("calling tool", slog.String("tool", params.Name))
		result, err := h.registry.Call(r.Context(), params.Name, params.Arguments)
		if err != nil {
			log.Warn("tool call failed", slog.String("tool", params.Name), sl.Err(err))
			render.JSON(w, r, rpcResponse{
				Jsonrpc: "2.0",
				Result: map[string]any{
					"content": []textContent{{Type: "text", Text: err.Error()}},
					"isError": true,
				},
				ID: req.ID,
			})
			return
		}

		payload, err := json.Marshal(result)
		if err != nil {
			log.Error("failed to encode tool result", sl.Err(err))
			render.JSON(w, r, rpcResponse{
				Jsonrpc: "2.0",
				Result: map[string]any{
					"content": []textContent{{Type: "text", Text: "failed to encode tool result"}},
					"isError": true,
				},
				ID: req.ID,
			})
			return
		}
		render.JSON(w, r, rpcResponse{
			Jsonrpc: "2.0",
			Result: map[string]any{
				"content": []textContent{{Type: "text", Text: string(payload)}},
				"isError": false,
			},
			ID: req.ID,
		})

	default:
		render.JSON(w, r, rpcResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method},
			ID:      req.ID,
		})
	}
}

// Health возвращает состояние инструментального сервера.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":    "UP",
		"service":   serverName,
		"version":   serverVersion,
		"protocol":  "MCP (Model Context Protocol)",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Info возвращает сведения о сервере и количестве инструментов.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"name":            serverName,
		"version":         serverVersion,
		"protocolVersion": protocolVersion,
		"registeredTools": len(h.registry.List()),
		"capabilities": map[string]any{
			"tools": map[string]any{"supported": true},
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// DebugTools возвращает список зарегистрированных инструментов
// с именами параметров.
func (h *Handler) DebugTools(w http.ResponseWriter, r *http.Request) {
	tools := h.registry.List()
	items := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		params := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			params = append(params, name)
		}
		items = append(items, map[string]any{
			"toolName":    tool.Name,
			"description": tool.Description,
			"parameters":  params,
		})
	}
	render.JSON(w, r, map[string]any{
		"totalTools": len(items),
		"tools":      items,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
