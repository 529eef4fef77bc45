package service

import (
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
)

// QuestionSetGenerator формирует набор вопросов сессии из карточек колоды.
// Выборка и перемешивание выполняются ровно один раз при создании
// сессии; зафиксированный порядок общий для всех игроков, поэтому
// поздно подключившиеся видят ту же последовательность.
type QuestionSetGenerator struct {
	deckRepo     repository.DeckRepository
	questionRepo repository.QuestionRepository
	rng          *rand.Rand
}

// NewQuestionSetGenerator создает генератор набора вопросов.
// rng передаётся снаружи, чтобы тесты могли фиксировать seed.
func NewQuestionSetGenerator(
	deckRepo repository.DeckRepository,
	questionRepo repository.QuestionRepository,
	rng *rand.Rand,
) *QuestionSetGenerator {
	return &QuestionSetGenerator{
		deckRepo:     deckRepo,
		questionRepo: questionRepo,
		rng:          rng,
	}
}

// BuildForSession выбирает min(requested, len(cards)) карточек, один раз
// перемешивает их и сохраняет вопросы с последовательными позициями
// внутри транзакции создания сессии. Пустая колода — ErrInsufficientContent.
// Возвращает фактическое число вопросов.
func (g *QuestionSetGenerator) BuildForSession(tx *gorm.DB, sessionID, deckID uint, requested int) (int, error) {
	cards, err := g.deckRepo.GetCards(deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to load deck #%d: %w", deckID, err)
	}
	if len(cards) == 0 {
		return 0, fmt.Errorf("deck #%d: %w", deckID, ErrInsufficientContent)
	}

	count := requested
	if count > len(cards) {
		count = len(cards)
	}

	// Единственная перестановка за всю жизнь сессии
	shuffled := make([]entity.Card, len(cards))
	copy(shuffled, cards)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	questions := make([]entity.Question, 0, count)
	for pos, card := range shuffled[:count] {
		questions = append(questions, entity.Question{
			SessionID: sessionID,
			CardID:    card.ID,
			Position:  pos,
			Prompt:    card.Front,
			Answer:    card.Back,
		})
	}

	if err := g.questionRepo.CreateBatchTx(tx, questions); err != nil {
		return 0, fmt.Errorf("failed to persist question set for session #%d: %w", sessionID, err)
	}

	return count, nil
}
