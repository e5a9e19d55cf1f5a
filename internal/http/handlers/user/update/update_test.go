package update

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

	"github.com/magabrotheeeer/user-hub/internal/apperror"
	"github.com/magabrotheeeer/user-hub/internal/models"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserResponse, error) {
	args := m.Called(ctx, id, req)
	if res := args.Get(0); res != nil {
		return res.(*models.UserResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "обновление только настоящего имени",
			id:   "7",
			body: `{"realName":"Bob New"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(req models.UpdateUserRequest) bool {
					return req.RealName != nil && *req.RealName == "Bob New" &&
						req.Email == nil && req.Phone == nil && req.Status == nil
				})).Return(&models.UserResponse{ID: 7, Username: "bob"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"username":"bob"`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"invalid user id"`,
		},
		{
			name:           "недопустимый статус",
			id:             "7",
			body:           `{"status":5}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"validation failed"`,
		},
		{
			name: "конфликт почты",
			id:   "7",
			body: `{"email":"taken@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(7), mock.Anything).
					Return(nil, apperror.Conflict("email taken@example.com already exists", nil))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"message":"email taken@example.com already exists"`,
		},
		{
			name: "пользователь не найден",
			id:   "404",
			body: `{"realName":"New"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, int64(404), mock.Anything).
					Return(nil, apperror.NotFound("user not found", nil))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"message":"user not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/users/"+tt.id, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
