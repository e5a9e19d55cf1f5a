// Package sl содержит небольшие помощники для структурированного
// логирования через slog, чтобы поля ошибок формировались единообразно
// по всему сервису.
package sl

import "log/slog"

// Err оборачивает ошибку в slog.Attr с ключом "error".
//
//	log.Error("failed to create user", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
