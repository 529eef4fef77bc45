package repository

import (
	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами сессии.
// Вопросы создаются один раз при создании сессии и далее неизменяемы.
type QuestionRepository interface {
	// CreateBatchTx сохраняет набор вопросов внутри переданной транзакции,
	// чтобы сессия и её вопросы появлялись атомарно.
	CreateBatchTx(tx *gorm.DB, questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	ListBySession(sessionID uint) ([]entity.Question, error)
	CountBySession(sessionID uint) (int64, error)
}
