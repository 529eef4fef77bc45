package service

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// MockDeckRepo - мок для DeckRepository
type MockDeckRepo struct {
	mock.Mock
}

func (m *MockDeckRepo) GetCards(deckID uint) ([]entity.Card, error) {
	args := m.Called(deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Card), args.Error(1)
}

// MockQuestionRepo - мок для QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) CreateBatchTx(tx *gorm.DB, questions []entity.Question) error {
	args := m.Called(tx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) ListBySession(sessionID uint) ([]entity.Question, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountBySession(sessionID uint) (int64, error) {
	args := m.Called(sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func makeCards(n int) []entity.Card {
	cards := make([]entity.Card, n)
	for i := range cards {
		cards[i] = entity.Card{
			ID:    uint(i + 1),
			Front: "front",
			Back:  "back",
		}
	}
	return cards
}

func TestBuildForSession_ShufflesAndNumbersSequentially(t *testing.T) {
	// Arrange
	deckRepo := new(MockDeckRepo)
	questionRepo := new(MockQuestionRepo)
	gen := NewQuestionSetGenerator(deckRepo, questionRepo, rand.New(rand.NewSource(42)))

	cards := makeCards(10)
	deckRepo.On("GetCards", uint(5)).Return(cards, nil)

	var persisted []entity.Question
	questionRepo.On("CreateBatchTx", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).([]entity.Question)
		}).
		Return(nil)

	// Act
	count, err := gen.BuildForSession(nil, 1, 5, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, count)
	require.Len(t, persisted, 10)

	// Позиции строго последовательные с нуля
	seenCards := make(map[uint]bool)
	for i, q := range persisted {
		assert.Equal(t, i, q.Position)
		assert.Equal(t, uint(1), q.SessionID)
		seenCards[q.CardID] = true
	}
	// Перестановка: каждая карточка встречается ровно один раз
	assert.Len(t, seenCards, 10)
}

func TestBuildForSession_TruncatesToDeckSize(t *testing.T) {
	// Arrange
	deckRepo := new(MockDeckRepo)
	questionRepo := new(MockQuestionRepo)
	gen := NewQuestionSetGenerator(deckRepo, questionRepo, rand.New(rand.NewSource(1)))

	deckRepo.On("GetCards", uint(2)).Return(makeCards(3), nil)
	questionRepo.On("CreateBatchTx", mock.Anything, mock.MatchedBy(func(qs []entity.Question) bool {
		return len(qs) == 3
	})).Return(nil)

	// Act: запросили 20 вопросов, в колоде всего 3
	count, err := gen.BuildForSession(nil, 1, 2, 20)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	questionRepo.AssertExpectations(t)
}

func TestBuildForSession_EmptyDeck(t *testing.T) {
	// Arrange
	deckRepo := new(MockDeckRepo)
	questionRepo := new(MockQuestionRepo)
	gen := NewQuestionSetGenerator(deckRepo, questionRepo, rand.New(rand.NewSource(1)))

	deckRepo.On("GetCards", uint(9)).Return([]entity.Card{}, nil)

	// Act
	_, err := gen.BuildForSession(nil, 1, 9, 5)

	// Assert
	assert.ErrorIs(t, err, ErrInsufficientContent)
	questionRepo.AssertNotCalled(t, "CreateBatchTx", mock.Anything, mock.Anything)
}

func TestBuildForSession_DeckRepoError(t *testing.T) {
	// Arrange
	deckRepo := new(MockDeckRepo)
	questionRepo := new(MockQuestionRepo)
	gen := NewQuestionSetGenerator(deckRepo, questionRepo, rand.New(rand.NewSource(1)))

	dbErr := errors.New("database error")
	deckRepo.On("GetCards", uint(3)).Return(nil, dbErr)

	// Act
	_, err := gen.BuildForSession(nil, 1, 3, 5)

	// Assert
	assert.ErrorIs(t, err, dbErr)
}
