package postgres

import (
	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// DeckRepo реализует repository.DeckRepository поверх таблицы карточек,
// которой владеет сервис контента. Только чтение.
type DeckRepo struct {
	db *gorm.DB
}

// NewDeckRepo создает новый репозиторий колод
func NewDeckRepo(db *gorm.DB) *DeckRepo {
	return &DeckRepo{db: db}
}

// GetCards возвращает карточки колоды в каноническом порядке
func (r *DeckRepo) GetCards(deckID uint) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.Where("deck_id = ?", deckID).
		Order("position, id").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}
