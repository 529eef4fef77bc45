package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateBatchTx сохраняет вопросы пакетом внутри транзакции создания сессии
func (r *QuestionRepo) CreateBatchTx(tx *gorm.DB, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return tx.Create(&questions).Error
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// ListBySession возвращает вопросы сессии в зафиксированном порядке показа
func (r *QuestionRepo) ListBySession(sessionID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("session_id = ?", sessionID).
		Order("position").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountBySession возвращает число вопросов сессии
func (r *QuestionRepo) CountBySession(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
