package entity

import (
	"time"
)

// Card — карточка колоды. Управление колодами (CRUD, авторинг) живёт
// во внешнем сервисе контента; здесь карточки только читаются при
// формировании набора вопросов сессии.
type Card struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	DeckID   uint   `gorm:"not null;index" json:"deck_id"`
	Front    string `gorm:"size:500;not null" json:"front"`
	Back     string `gorm:"size:500;not null" json:"back"`
	Position int    `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Card) TableName() string {
	return "cards"
}
