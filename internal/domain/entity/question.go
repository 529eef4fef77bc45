package entity

import (
	"time"
)

// Question представляет один вопрос сессии, привязанный к карточке колоды.
// Порядок вопросов фиксируется один раз при создании сессии (единая
// случайная перестановка, общая для всех игроков) и больше не меняется.
type Question struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	SessionID uint `gorm:"not null;index:idx_session_position,unique" json:"session_id"`
	CardID    uint `gorm:"not null;index" json:"card_id"`

	// Position нумеруется с нуля и задаёт общий для всех порядок показа.
	Position int `gorm:"not null" json:"position"`

	Prompt string `gorm:"size:500;not null" json:"prompt"`

	// Answer — обратная сторона карточки. Скрыта от клиента: проверка
	// ответа происходит на стороне клиента до отправки, а ведущий-
	// наблюдатель вообще не получает список вопросов.
	Answer string `gorm:"size:500;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "session_questions"
}

// BelongsToSession проверяет принадлежность вопроса сессии
func (q *Question) BelongsToSession(sessionID uint) bool {
	return q.SessionID == sessionID
}
