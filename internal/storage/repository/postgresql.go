// Package repository реализует хранилище пользователей на основе PostgreSQL.
// Предоставляет методы создания, чтения, обновления, удаления, постраничной
// выборки и поиска, а также проверки существования по имени и почте.
// Ограничения уникальности username и email контролируются базой данных
// и переводятся в типизированные ошибки хранилища.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"database/sql"
)

// Типизированные ошибки хранилища. Сервисный слой переводит их
// в ошибки приложения с нужным HTTP-статусом.
var (
	// ErrUserNotFound возвращается, когда пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken возвращается при нарушении уникальности username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken возвращается при нарушении уникальности email.
	ErrEmailTaken = errors.New("email already taken")
)

// Имена ограничений уникальности из миграции 000001_create_users.
const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// uniqueViolation переводит нарушение уникальности PostgreSQL (23505)
// в ошибку хранилища по имени ограничения. Для прочих ошибок возвращает nil.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintUsername:
		return ErrUsernameTaken
	case constraintEmail:
		return ErrEmailTaken
	default:
		return nil
	}
}
