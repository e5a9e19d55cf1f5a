package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/user-hub/internal/models"
)

const userColumns = `id, username, email, password_hash, real_name, phone, status, created_at, updated_at`

// Поля, по которым разрешена сортировка постраничной выборки.
// Внешнее имя поля сопоставляется с именем колонки, чтобы исключить
// подстановку произвольного SQL через параметр сортировки.
var sortColumns = map[string]string{
	"id":        "id",
	"username":  "username",
	"email":     "email",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var realName, phone sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&realName, &phone, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if realName.Valid {
		u.RealName = &realName.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает запись с присвоенным
// идентификатором и метками времени. Нарушение уникальности возвращается
// как ErrUsernameTaken или ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (username, email, password_hash, real_name, phone, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + userColumns
	row := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.RealName, user.Phone, user.Status)
	created, err := scanUser(row)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return nil, uerr
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByID возвращает пользователя по его ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUser перезаписывает изменяемые поля пользователя и обновляет
// метку updated_at. Возвращает актуальную запись. Конфликт уникальности
// почты возвращается как ErrEmailTaken.
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.UpdateUser"

	query := `UPDATE users
			  SET email = $1, real_name = $2, phone = $3, status = $4, updated_at = now()
			  WHERE id = $5
			  RETURNING ` + userColumns
	row := s.DB.QueryRowContext(ctx, query,
		user.Email, user.RealName, user.Phone, user.Status, user.ID)
	updated, err := scanUser(row)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return nil, uerr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// UpdateUserStatus выставляет статус пользователя и обновляет updated_at.
func (s *Storage) UpdateUserStatus(ctx context.Context, id int64, status int) (*models.User, error) {
	const op = "storage.UpdateUserStatus"

	query := `UPDATE users
			  SET status = $1, updated_at = now()
			  WHERE id = $2
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// DeleteUser удаляет пользователя по ID. Отсутствие записи
// возвращается как ErrUserNotFound.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers возвращает всех пользователей в порядке возрастания ID.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return s.queryUsers(ctx, op, query)
}

// ListUsersPage возвращает страницу пользователей с сортировкой по
// разрешенному полю. Неизвестное поле сортировки заменяется на id.
func (s *Storage) ListUsersPage(ctx context.Context, limit, offset int, sortField string, desc bool) ([]*models.User, error) {
	const op = "storage.ListUsersPage"

	column, ok := sortColumns[sortField]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s %s LIMIT $1 OFFSET $2`,
		userColumns, column, direction)
	return s.queryUsers(ctx, op, query, limit, offset)
}

// CountUsers возвращает общее количество пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	const op = "storage.CountUsers"

	var count int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListUsersByStatus возвращает страницу пользователей с указанным статусом,
// отсортированную по дате создания по убыванию.
func (s *Storage) ListUsersByStatus(ctx context.Context, status, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsersByStatus"

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE status = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	return s.queryUsers(ctx, op, query, status, limit, offset)
}

// CountUsersByStatus возвращает количество пользователей с указанным статусом.
func (s *Storage) CountUsersByStatus(ctx context.Context, status int) (int64, error) {
	const op = "storage.CountUsersByStatus"

	var count int64
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// SearchUsers ищет пользователей по подстроке в username, email или real_name
// (LIKE, с учетом регистра), страница отсортирована по дате создания по убыванию.
func (s *Storage) SearchUsers(ctx context.Context, keyword string, limit, offset int) ([]*models.User, error) {
	const op = "storage.SearchUsers"

	pattern := "%" + keyword + "%"
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE username LIKE $1 OR email LIKE $1 OR real_name LIKE $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	return s.queryUsers(ctx, op, query, pattern, limit, offset)
}

// CountSearchUsers возвращает количество пользователей, подходящих под поиск.
func (s *Storage) CountSearchUsers(ctx context.Context, keyword string) (int64, error) {
	const op = "storage.CountSearchUsers"

	pattern := "%" + keyword + "%"
	var count int64
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username LIKE $1 OR email LIKE $1 OR real_name LIKE $1`,
		pattern).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ExistsByUsername проверяет, занят ли username.
func (s *Storage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const op = "storage.ExistsByUsername"

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ExistsByEmail проверяет, занята ли почта.
func (s *Storage) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const op = "storage.ExistsByEmail"

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CountUsersByStatuses возвращает общее количество пользователей и
// раздельные счетчики активных и отключенных. Используется инструментом
// статистики базы данных.
func (s *Storage) CountUsersByStatuses(ctx context.Context) (total, enabled, disabled int64, err error) {
	const op = "storage.CountUsersByStatuses"

	query := `SELECT COUNT(*),
				     COUNT(*) FILTER (WHERE status = 1),
				     COUNT(*) FILTER (WHERE status = 0)
			  FROM users`
	if err = s.DB.QueryRowContext(ctx, query).Scan(&total, &enabled, &disabled); err != nil {
		return 0, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, enabled, disabled, nil
}

func (s *Storage) queryUsers(ctx context.Context, op, query string, args ...any) ([]*models.User, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
