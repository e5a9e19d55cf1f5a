// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hash создает bcrypt-хеш пароля для безопасного хранения:
// соль генерируется для каждой записи, стоимость адаптивная.
// Verify сравнивает сохранённый bcrypt-хеш с введённым паролем.
package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/user-hub/internal/apperror"
)

// Hash принимает пароль пользователя и возвращает его bcrypt-хэш.
// Пустой пароль не допускается.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperror.InvalidArgument("password must not be empty", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

// Verify сравнивает bcrypt-хэш с введённым паролем.
// Возвращает true только при точном совпадении; пустые аргументы
// всегда дают false.
func Verify(plaintext, storedHash string) bool {
	if plaintext == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
