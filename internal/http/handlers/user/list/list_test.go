package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/user-hub/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListAll(ctx context.Context) ([]*models.UserResponse, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]*models.UserResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) List(ctx context.Context, page, size int, sortField, direction string) ([]*models.UserResponse, int64, error) {
	args := m.Called(ctx, page, size, sortField, direction)
	if res := args.Get(0); res != nil {
		return res.([]*models.UserResponse), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockService) ListByStatus(ctx context.Context, status, page, size int) ([]*models.UserResponse, int64, error) {
	args := m.Called(ctx, status, page, size)
	if res := args.Get(0); res != nil {
		return res.([]*models.UserResponse), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func TestListAll(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mockService := new(MockService)
	mockService.On("ListAll", mock.Anything).Return([]*models.UserResponse{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
	}, nil)

	handler := New(logger, mockService)

	req := httptest.NewRequest(http.MethodGet, "/users/all", nil)
	w := httptest.NewRecorder()

	handler.All(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.Contains(t, w.Body.String(), `"username":"bob"`)

	mockService.AssertExpectations(t)
}

func TestListPage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "параметры по умолчанию",
			url:  "/users",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 0, 10, "id", "asc").
					Return([]*models.UserResponse{{ID: 1, Username: "alice"}}, int64(25), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"totalElements":25`, `"totalPages":3`, `"first":true`, `"hasNext":true`},
		},
		{
			name: "явные параметры сортировки",
			url:  "/users?page=2&size=5&sortBy=username&direction=desc",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 2, 5, "username", "desc").
					Return([]*models.UserResponse{}, int64(11), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"page":2`, `"totalPages":3`, `"last":true`},
		},
		{
			name: "слишком большой размер страницы урезается",
			url:  "/users?size=1000",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 0, 100, "id", "asc").
					Return([]*models.UserResponse{}, int64(0), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"size":100`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.Page(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, fragment := range tt.expectedBody {
				assert.True(t, strings.Contains(w.Body.String(), fragment),
					"response body should contain %s, got %s", fragment, w.Body.String())
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestListByStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		status         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "выборка активных",
			status: "1",
			setupMock: func(m *MockService) {
				m.On("ListByStatus", mock.Anything, 1, 0, 10).
					Return([]*models.UserResponse{{ID: 1, Username: "alice", Status: 1}}, int64(1), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"username":"alice"`,
		},
		{
			name:           "статус вне диапазона",
			status:         "5",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"status must be 0 or 1"`,
		},
		{
			name:           "статус не число",
			status:         "on",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"status must be 0 or 1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/users/status/"+tt.status, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("status", tt.status)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			handler.ByStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
