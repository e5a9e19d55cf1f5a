// Package user содержит бизнес-логику управления пользователями:
// контроль уникальности, частичное обновление, переключение статуса,
// постраничные выборки и формирование внешнего представления без пароля.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/user-hub/internal/apperror"
	"github.com/magabrotheeeer/user-hub/internal/lib/password"
	"github.com/magabrotheeeer/user-hub/internal/lib/sl"
	"github.com/magabrotheeeer/user-hub/internal/models"
	"github.com/magabrotheeeer/user-hub/internal/storage/repository"
)

// cacheTTL - время жизни закэшированного пользователя.
const cacheTTL = time.Hour

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser добавляет нового пользователя и возвращает запись с ID и метками времени.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// GetUserByUsername возвращает пользователя по имени.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateUser перезаписывает изменяемые поля и возвращает актуальную запись.
	UpdateUser(ctx context.Context, user *models.User) (*models.User, error)
	// UpdateUserStatus выставляет статус и возвращает актуальную запись.
	UpdateUserStatus(ctx context.Context, id int64, status int) (*models.User, error)
	// DeleteUser удаляет пользователя по ID.
	DeleteUser(ctx context.Context, id int64) error
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// ListUsersPage возвращает страницу пользователей с сортировкой.
	ListUsersPage(ctx context.Context, limit, offset int, sortField string, desc bool) ([]*models.User, error)
	// CountUsers возвращает общее количество пользователей.
	CountUsers(ctx context.Context) (int64, error)
	// ListUsersByStatus возвращает страницу пользователей с указанным статусом.
	ListUsersByStatus(ctx context.Context, status, limit, offset int) ([]*models.User, error)
	// CountUsersByStatus возвращает количество пользователей с указанным статусом.
	CountUsersByStatus(ctx context.Context, status int) (int64, error)
	// SearchUsers ищет пользователей по подстроке.
	SearchUsers(ctx context.Context, keyword string, limit, offset int) ([]*models.User, error)
	// CountSearchUsers возвращает количество подходящих под поиск пользователей.
	CountSearchUsers(ctx context.Context, keyword string) (int64, error)
	// ExistsByUsername проверяет, занят ли username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail проверяет, занята ли почта.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventPublisher публикует события жизненного цикла пользователей.
type EventPublisher interface {
	Publish(message any) error
}

// Service реализует бизнес-логику работы с пользователями.
type Service struct {
	repo   UserRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, cache Cache, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// Create создает нового пользователя: проверяет уникальность имени и почты,
// хэширует пароль, выставляет статус "активен" и сохраняет запись.
// Гонка двух одновременных созданий разрешается ограничением уникальности
// в базе: проигравший получает ту же ошибку конфликта.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.UserResponse, error) {
	taken, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.Internal("failed to check username", err)
	}
	if taken {
		return nil, apperror.Conflict(fmt.Sprintf("username %s already exists", req.Username), nil)
	}

	taken, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal("failed to check email", err)
	}
	if taken {
		return nil, apperror.Conflict(fmt.Sprintf("email %s already exists", req.Email), nil)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateUser(ctx, models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		RealName:     req.RealName,
		Phone:        req.Phone,
		Status:       models.StatusEnabled,
	})
	if err != nil {
		return nil, s.mapStorageErr(err, "failed to create user")
	}

	s.log.Info("created new user", slog.Int64("id", created.ID))
	s.publishEvent("user.created", created)
	s.cacheUser(created)

	return created.ToResponse(), nil
}

// GetByID возвращает пользователя по ID, используя кеш или хранилище.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.UserResponse, error) {
	var cached models.UserResponse
	cacheKey := s.cacheKey(id)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.mapStorageErr(err, "failed to get user")
	}
	s.cacheUser(u)
	return u.ToResponse(), nil
}

// GetByUsername возвращает пользователя по имени.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.UserResponse, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, s.mapStorageErr(err, "failed to get user")
	}
	return u.ToResponse(), nil
}

// Update частично обновляет пользователя: непустые (не nil) поля запроса
// перезаписывают сохранённые, остальные остаются нетронутыми. Смена почты
// на значение, занятое другим пользователем, отклоняется как конфликт;
// смена на собственное текущее значение допускается.
func (s *Service) Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserResponse, error) {
	current, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.mapStorageErr(err, "failed to get user")
	}

	if req.Email != nil && *req.Email != current.Email {
		taken, err := s.repo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, apperror.Internal("failed to check email", err)
		}
		if taken {
			return nil, apperror.Conflict(fmt.Sprintf("email %s already exists", *req.Email), nil)
		}
		current.Email = *req.Email
	}
	if req.RealName != nil {
		current.RealName = req.RealName
	}
	if req.Phone != nil {
		current.Phone = req.Phone
	}
	if req.Status != nil {
		current.Status = *req.Status
	}

	updated, err := s.repo.UpdateUser(ctx, current)
	if err != nil {
		return nil, s.mapStorageErr(err, "failed to update user")
	}

	s.log.Info("updated user", slog.Int64("id", updated.ID))
	s.publishEvent("user.updated", updated)
	s.cacheUser(updated)

	return updated.ToResponse(), nil
}

// Delete жестко удаляет пользователя по ID и инвалидирует кеш.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return s.mapStorageErr(err, "failed to get user")
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return s.mapStorageErr(err, "failed to delete user")
	}

	cacheKey := s.cacheKey(id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}

	s.log.Info("deleted user", slog.Int64("id", id))
	s.publishEvent("user.deleted", u)
	return nil
}

// ListAll возвращает всех пользователей в порядке хранилища.
func (s *Service) ListAll(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}
	return shapeAll(users), nil
}

// List возвращает страницу пользователей и общее количество записей.
// Направление сортировки "desc" (без учета регистра) дает сортировку
// по убыванию, любое другое значение - по возрастанию.
func (s *Service) List(ctx context.Context, page, size int, sortField, direction string) ([]*models.UserResponse, int64, error) {
	desc := strings.EqualFold(direction, "desc")
	users, err := s.repo.ListUsersPage(ctx, size, page*size, sortField, desc)
	if err != nil {
		return nil, 0, apperror.Internal("failed to list users", err)
	}
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, 0, apperror.Internal("failed to count users", err)
	}
	return shapeAll(users), total, nil
}

// ListByStatus возвращает страницу пользователей с указанным статусом,
// отсортированную по дате создания по убыванию.
func (s *Service) ListByStatus(ctx context.Context, status, page, size int) ([]*models.UserResponse, int64, error) {
	users, err := s.repo.ListUsersByStatus(ctx, status, size, page*size)
	if err != nil {
		return nil, 0, apperror.Internal("failed to list users by status", err)
	}
	total, err := s.repo.CountUsersByStatus(ctx, status)
	if err != nil {
		return nil, 0, apperror.Internal("failed to count users by status", err)
	}
	return shapeAll(users), total, nil
}

// Search ищет пользователей по подстроке в имени, почте или настоящем имени.
func (s *Service) Search(ctx context.Context, keyword string, page, size int) ([]*models.UserResponse, int64, error) {
	users, err := s.repo.SearchUsers(ctx, keyword, size, page*size)
	if err != nil {
		return nil, 0, apperror.Internal("failed to search users", err)
	}
	total, err := s.repo.CountSearchUsers(ctx, keyword)
	if err != nil {
		return nil, 0, apperror.Internal("failed to count search results", err)
	}
	return shapeAll(users), total, nil
}

// ExistsByUsername проверяет, занят ли username.
func (s *Service) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, apperror.Internal("failed to check username", err)
	}
	return exists, nil
}

// ExistsByEmail проверяет, занята ли почта.
func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, apperror.Internal("failed to check email", err)
	}
	return exists, nil
}

// Enable включает пользователя (статус 1).
func (s *Service) Enable(ctx context.Context, id int64) (*models.UserResponse, error) {
	return s.setStatus(ctx, id, models.StatusEnabled, "user.enabled")
}

// Disable отключает пользователя (статус 0).
func (s *Service) Disable(ctx context.Context, id int64) (*models.UserResponse, error) {
	return s.setStatus(ctx, id, models.StatusDisabled, "user.disabled")
}

func (s *Service) setStatus(ctx context.Context, id int64, status int, eventType string) (*models.UserResponse, error) {
	updated, err := s.repo.UpdateUserStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapStorageErr(err, "failed to update user status")
	}

	s.log.Info("updated user status", slog.Int64("id", id), slog.Int("status", status))
	s.publishEvent(eventType, updated)
	s.cacheUser(updated)

	return updated.ToResponse(), nil
}

// mapStorageErr переводит типизированные ошибки хранилища в ошибки приложения.
func (s *Service) mapStorageErr(err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.NotFound("user not found", err)
	case errors.Is(err, repository.ErrUsernameTaken):
		return apperror.Conflict("username already exists", err)
	case errors.Is(err, repository.ErrEmailTaken):
		return apperror.Conflict("email already exists", err)
	default:
		return apperror.Internal(fallback, err)
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *Service) cacheUser(u *models.User) {
	cacheKey := s.cacheKey(u.ID)
	if err := s.cache.Set(cacheKey, u.ToResponse(), cacheTTL); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), sl.Err(err))
	}
}

func (s *Service) publishEvent(eventType string, u *models.User) {
	event := models.UserEvent{
		Type:       eventType,
		UserID:     u.ID,
		Username:   u.Username,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Warn("failed to publish user event", slog.String("type", eventType), sl.Err(err))
	}
}

func shapeAll(users []*models.User) []*models.UserResponse {
	result := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, u.ToResponse())
	}
	return result
}
