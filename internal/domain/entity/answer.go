package entity

import (
	"time"
)

// Очки за ответ. Отрицательный итоговый счёт допустим и не обрезается.
const (
	PointsCorrect   = 2
	PointsIncorrect = -1
)

// Answer представляет один засчитанный ответ игрока на вопрос.
// На пару (player_id, question_id) существует не более одной записи —
// уникальный индекс в БД отклоняет повторную отправку даже при
// конкурентных запросах. Записи только добавляются, никогда не
// обновляются и не удаляются.
type Answer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	SessionID  uint `gorm:"not null;index" json:"session_id"`
	PlayerID   uint `gorm:"not null;index:idx_player_question,unique" json:"player_id"`
	QuestionID uint `gorm:"not null;index:idx_player_question,unique" json:"question_id"`

	IsCorrect     bool `gorm:"not null" json:"is_correct"`
	PointsAwarded int  `gorm:"not null" json:"points_awarded"`

	// Transcript — распознанный текст произнесённого ответа, если клиент его передал.
	Transcript string `gorm:"size:500" json:"transcript,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "session_answers"
}

// PointsFor возвращает количество очков за ответ по правилам сессии
func PointsFor(isCorrect bool) int {
	if isCorrect {
		return PointsCorrect
	}
	return PointsIncorrect
}
