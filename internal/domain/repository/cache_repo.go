package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Кеш вспомогательный (поиск сессии по join-коду); источником истины
// всегда остаётся реляционное хранилище.
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	SetNX(key string, value interface{}, expiration time.Duration) (bool, error)
}
