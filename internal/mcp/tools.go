package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/user-hub/internal/mcp/eval"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// defaultListLimit - количество пользователей, возвращаемое list_users
// без явного limit.
const defaultListLimit = 10

// UserService описывает операции пользовательского сервиса,
// доступные инструментам.
type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.UserResponse, error)
	ListAll(ctx context.Context) ([]*models.UserResponse, error)
}

// StatsProvider возвращает счетчики пользователей для инструмента статистики.
type StatsProvider interface {
	CountUsersByStatuses(ctx context.Context) (total, enabled, disabled int64, err error)
}

// RegisterTools наполняет реестр штатным набором инструментов.
func RegisterTools(r *Registry, users UserService, stats StatsProvider) {
	r.Register(getUserByIDTool(users))
	r.Register(listUsersTool(users))
	r.Register(calculatorTool())
	r.Register(getServerTimeTool())
	r.Register(getDatabaseStatsTool(stats))
}

type getUserByIDParams struct {
	UserID int64 `json:"userId"`
}

func getUserByIDTool(users UserService) Tool {
	return Tool{
		Name:        "get_user_by_id",
		Description: "Returns a user from the database by numeric id: username, real name, email, phone, status and timestamps.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"userId": {Type: "number", Description: "Numeric user id"},
			},
			Required: []string{"userId"},
		},
		Handler: func(ctx context.Context, arguments json.RawMessage) (any, error) {
			var params getUserByIDParams
			if err := decodeArguments(arguments, &params); err != nil {
				return nil, err
			}
			if params.UserID < 1 {
				return nil, fmt.Errorf("userId must be a positive number")
			}
			return users.GetByID(ctx, params.UserID)
		},
	}
}

type listUsersParams struct {
	Limit int `json:"limit"`
}

func listUsersTool(users UserService) Tool {
	return Tool{
		Name:        "list_users",
		Description: "Returns users from the database, at most limit entries (default 10).",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"limit": {Type: "number", Description: "Maximum number of users to return", Default: defaultListLimit},
			},
			Required: []string{},
		},
		Handler: func(ctx context.Context, arguments json.RawMessage) (any, error) {
			var params listUsersParams
			if err := decodeArguments(arguments, &params); err != nil {
				return nil, err
			}
			limit := params.Limit
			if limit <= 0 {
				limit = defaultListLimit
			}
			all, err := users.ListAll(ctx)
			if err != nil {
				return nil, err
			}
			if len(all) > limit {
				all = all[:limit]
			}
			return map[string]any{
				"count": len(all),
				"users": all,
			}, nil
		},
	}
}

type calculatorParams struct {
	Expression string `json:"expression"`
}

func calculatorTool() Tool {
	return Tool{
		Name:        "calculator",
		Description: "Evaluates an arithmetic expression with +, -, *, / and parentheses, for example: (2+3)*4.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"expression": {Type: "string", Description: "Arithmetic expression to evaluate"},
			},
			Required: []string{"expression"},
		},
		Handler: func(_ context.Context, arguments json.RawMessage) (any, error) {
			var params calculatorParams
			if err := decodeArguments(arguments, &params); err != nil {
				return nil, err
			}
			if params.Expression == "" {
				return nil, fmt.Errorf("expression is required")
			}
			result, err := eval.Evaluate(params.Expression)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"expression": params.Expression,
				"result":     result,
			}, nil
		},
	}
}

type getServerTimeParams struct {
	Format string `json:"format"`
}

func getServerTimeTool() Tool {
	return Tool{
		Name:        "get_server_time",
		Description: "Returns the current server time in one of the formats: iso (ISO 8601), readable, timestamp (Unix milliseconds).",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"format": {Type: "string", Description: "Output format: iso, readable or timestamp", Default: "iso"},
			},
			Required: []string{},
		},
		Handler: func(_ context.Context, arguments json.RawMessage) (any, error) {
			var params getServerTimeParams
			if err := decodeArguments(arguments, &params); err != nil {
				return nil, err
			}
			now := time.Now()
			switch params.Format {
			case "readable":
				return map[string]any{
					"time":   now.Format("02.01.2006 15:04:05"),
					"format": "readable",
				}, nil
			case "timestamp":
				return map[string]any{
					"time":   now.UnixMilli(),
					"format": "timestamp",
				}, nil
			case "", "iso":
				return map[string]any{
					"time":   now.Format(time.RFC3339),
					"format": "ISO 8601",
				}, nil
			default:
				return nil, fmt.Errorf("unknown time format: %s", params.Format)
			}
		},
	}
}

func getDatabaseStatsTool(stats StatsProvider) Tool {
	return Tool{
		Name:        "get_database_stats",
		Description: "Returns user table statistics: total, enabled and disabled user counts.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
			Required:   []string{},
		},
		Handler: func(ctx context.Context, _ json.RawMessage) (any, error) {
			total, enabled, disabled, err := stats.CountUsersByStatuses(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"totalUsers":    total,
				"enabledUsers":  enabled,
				"disabledUsers": disabled,
			}, nil
		},
	}
}
