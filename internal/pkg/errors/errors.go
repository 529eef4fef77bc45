package errors

import "errors"

// Общие ошибки приложения. Доменные ошибки сессий (см. internal/service)
// оборачивают эти базовые значения через %w, чтобы хендлеры могли
// сопоставлять их с HTTP-статусами одним errors.Is.
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет токена, неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, повторный ответ на вопрос или старт уже идущей сессии).
	ErrConflict = errors.New("resource state conflict")

	// ErrExpired используется, когда дедлайн сессии уже прошёл.
	// В отличие от остальных, эта ошибка имеет побочный эффект:
	// обнаружившая её операция переводит сессию в completed.
	ErrExpired = errors.New("deadline has passed")
)
