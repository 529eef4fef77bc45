package repository

import (
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// AnswerRepository определяет методы для работы с ответами.
// Таблица ответов append-only: записи никогда не обновляются и не удаляются.
type AnswerRepository interface {
	// Create вставляет ответ. Повторная вставка для той же пары
	// (player_id, question_id) отклоняется уникальным индексом и
	// возвращается как ErrDuplicateAnswer — это основная гарантия
	// идемпотентности при конкурентных отправках.
	Create(answer *entity.Answer) error
	CountByPlayer(playerID uint) (int64, error)
	ListByPlayer(playerID uint) ([]entity.Answer, error)
	ListBySession(sessionID uint) ([]entity.Answer, error)
}
