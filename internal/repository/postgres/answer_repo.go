package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Create вставляет ответ.
// Уникальный индекс (player_id, question_id) — а не предварительная
// проверка в приложении — отклоняет повторную отправку: из двух
// конкурентных сабмитов одной пары ровно один получает 23505.
func (r *AnswerRepo) Create(answer *entity.Answer) error {
	if err := r.db.Create(answer).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player #%d, question #%d",
				repository.ErrDuplicateAnswer, answer.PlayerID, answer.QuestionID)
		}
		return err
	}
	return nil
}

// CountByPlayer возвращает число записанных ответов игрока
func (r *AnswerRepo) CountByPlayer(playerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Answer{}).
		Where("player_id = ?", playerID).
		Count(&count).Error
	return count, err
}

// ListByPlayer возвращает ответы игрока в порядке отправки
func (r *AnswerRepo) ListByPlayer(playerID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("player_id = ?", playerID).
		Order("id").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// ListBySession возвращает все ответы сессии
func (r *AnswerRepo) ListBySession(sessionID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("session_id = ?", sessionID).
		Order("id").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}
