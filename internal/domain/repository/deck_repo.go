package repository

import (
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// DeckRepository — граница с внешним сервисом контента.
// Здесь колоды только читаются; авторинг карточек живёт в другом сервисе.
type DeckRepository interface {
	// GetCards возвращает карточки колоды в их каноническом порядке.
	// Пустая колода — не ошибка репозитория: решение принимает генератор
	// набора вопросов.
	GetCards(deckID uint) ([]entity.Card, error)
}
