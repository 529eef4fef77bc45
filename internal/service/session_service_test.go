package service

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
	"gorm.io/gorm"
)

// MockSessionRepo - мок для SessionRepository
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) CreateTx(tx *gorm.DB, session *entity.Session) error {
	args := m.Called(tx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(id uint) (*entity.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepo) GetByJoinCode(code string) (*entity.Session, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepo) GetWithPlayers(id uint) (*entity.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepo) AtomicStart(sessionID uint, startedAt time.Time, endsAt *time.Time) error {
	args := m.Called(sessionID, startedAt, endsAt)
	return args.Error(0)
}

func (m *MockSessionRepo) AtomicFinish(sessionID uint, status string) (bool, error) {
	args := m.Called(sessionID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepo) CancelPending(sessionID uint) (bool, error) {
	args := m.Called(sessionID)
	return args.Bool(0), args.Error(1)
}

// MockPlayerRepo - мок для PlayerRepository
type MockPlayerRepo struct {
	mock.Mock
}

func (m *MockPlayerRepo) EnsurePlayer(sessionID, userID uint, isHost bool, role string, capacity int) (*entity.Player, bool, error) {
	args := m.Called(sessionID, userID, isHost, role, capacity)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Player), args.Bool(1), args.Error(2)
}

func (m *MockPlayerRepo) GetByID(id uint) (*entity.Player, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepo) GetBySessionAndUser(sessionID, userID uint) (*entity.Player, error) {
	args := m.Called(sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepo) ListBySession(sessionID uint) ([]entity.Player, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Player), args.Error(1)
}

func (m *MockPlayerRepo) AddScore(playerID uint, delta int) error {
	args := m.Called(playerID, delta)
	return args.Error(0)
}

func (m *MockPlayerRepo) MarkFinished(playerID uint) error {
	args := m.Called(playerID)
	return args.Error(0)
}

func (m *MockPlayerRepo) CountUnfinishedCompetitors(sessionID uint) (int64, error) {
	args := m.Called(sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepo) Remove(playerID uint) error {
	args := m.Called(playerID)
	return args.Error(0)
}

// MockAnswerRepo - мок для AnswerRepository
type MockAnswerRepo struct {
	mock.Mock
}

func (m *MockAnswerRepo) Create(answer *entity.Answer) error {
	args := m.Called(answer)
	return args.Error(0)
}

func (m *MockAnswerRepo) CountByPlayer(playerID uint) (int64, error) {
	args := m.Called(playerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnswerRepo) ListByPlayer(playerID uint) ([]entity.Answer, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

func (m *MockAnswerRepo) ListBySession(sessionID uint) ([]entity.Answer, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

// MockCacheRepo - мок для CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockNotifier - мок для Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifySessionChanged(sessionID uint, event string) {
	m.Called(sessionID, event)
}

type sessionServiceMocks struct {
	sessionRepo  *MockSessionRepo
	playerRepo   *MockPlayerRepo
	questionRepo *MockQuestionRepo
	answerRepo   *MockAnswerRepo
	cacheRepo    *MockCacheRepo
	notifier     *MockNotifier
}

func newSessionServiceForTest() (*SessionService, *sessionServiceMocks) {
	m := &sessionServiceMocks{
		sessionRepo:  new(MockSessionRepo),
		playerRepo:   new(MockPlayerRepo),
		questionRepo: new(MockQuestionRepo),
		answerRepo:   new(MockAnswerRepo),
		cacheRepo:    new(MockCacheRepo),
		notifier:     new(MockNotifier),
	}
	gen := NewQuestionSetGenerator(new(MockDeckRepo), m.questionRepo, rand.New(rand.NewSource(1)))
	svc := NewSessionService(nil, m.sessionRepo, m.playerRepo, m.questionRepo, m.answerRepo, m.cacheRepo, gen, m.notifier)
	return svc, m
}

func pendingSession(id uint) *entity.Session {
	return &entity.Session{
		ID:            id,
		DeckID:        1,
		HostID:        42,
		JoinCode:      "ABC234",
		Status:        entity.SessionStatusPending,
		QuestionCount: 10,
	}
}

func activeSession(id uint, endsAt *time.Time) *entity.Session {
	now := time.Now().Add(-time.Minute)
	return &entity.Session{
		ID:            id,
		DeckID:        1,
		HostID:        42,
		JoinCode:      "ABC234",
		Status:        entity.SessionStatusActive,
		QuestionCount: 10,
		StartedAt:     &now,
		EndsAt:        endsAt,
	}
}

// expectStateRead настраивает вызовы, которые делает GetState
func expectStateRead(m *sessionServiceMocks, session *entity.Session, me *entity.Player) {
	m.sessionRepo.On("GetByID", session.ID).Return(session, nil)
	m.playerRepo.On("GetBySessionAndUser", session.ID, me.UserID).Return(me, nil)
	m.playerRepo.On("ListBySession", session.ID).Return([]entity.Player{*me}, nil)
	m.answerRepo.On("ListBySession", session.ID).Return([]entity.Answer{}, nil)
	m.questionRepo.On("ListBySession", session.ID).Return([]entity.Question{}, nil)
}

func TestJoinByCode_NewMember(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	player := &entity.Player{ID: 5, SessionID: 1, UserID: 7, Role: entity.PlayerRoleCompetitor, State: entity.PlayerStatePlaying}

	m.cacheRepo.On("Get", "join_code:ABC234").Return("", apperrors.ErrNotFound)
	m.sessionRepo.On("GetByJoinCode", "ABC234").Return(session, nil)
	m.playerRepo.On("EnsurePlayer", uint(1), uint(7), false, entity.PlayerRoleCompetitor, MaxPlayersPerSession).
		Return(player, true, nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()
	expectStateRead(m, session, player)

	// Act: код вводится в нижнем регистре и с пробелами
	state, err := svc.JoinByCode("  abc234 ", 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), state.Session.ID)
	require.Len(t, state.Players, 1)
	assert.Equal(t, uint(5), state.Players[0].ID)
	m.notifier.AssertCalled(t, "NotifySessionChanged", uint(1), EventSessionRefresh)
}

func TestJoinByCode_Idempotent(t *testing.T) {
	// Arrange: пользователь уже состоит в сессии
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	player := &entity.Player{ID: 5, SessionID: 1, UserID: 7, Role: entity.PlayerRoleCompetitor}

	m.cacheRepo.On("Get", "join_code:ABC234").Return("", apperrors.ErrNotFound)
	m.sessionRepo.On("GetByJoinCode", "ABC234").Return(session, nil)
	m.playerRepo.On("EnsurePlayer", uint(1), uint(7), false, entity.PlayerRoleCompetitor, MaxPlayersPerSession).
		Return(player, false, nil)
	expectStateRead(m, session, player)

	// Act
	state, err := svc.JoinByCode("ABC234", 7)

	// Assert: та же запись игрока, без второй строки и без broadcast
	require.NoError(t, err)
	require.Len(t, state.Players, 1)
	assert.Equal(t, uint(5), state.Players[0].ID)
	m.notifier.AssertNotCalled(t, "NotifySessionChanged", mock.Anything, mock.Anything)
}

func TestJoinByCode_TeacherHostJoinsAsSpectator(t *testing.T) {
	// Arrange: ведущий подключается к собственной teacher-host сессии
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.IsTeacherHost = true
	host := &entity.Player{ID: 9, SessionID: 1, UserID: 42, IsHost: true, Role: entity.PlayerRoleSpectator}

	m.cacheRepo.On("Get", "join_code:ABC234").Return("", apperrors.ErrNotFound)
	m.sessionRepo.On("GetByJoinCode", "ABC234").Return(session, nil)
	m.playerRepo.On("EnsurePlayer", uint(1), uint(42), true, entity.PlayerRoleSpectator, MaxPlayersPerSession).
		Return(host, true, nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()
	expectStateRead(m, session, host)

	// Act
	state, err := svc.JoinByCode("ABC234", 42)

	// Assert: наблюдатель не видит список вопросов
	require.NoError(t, err)
	assert.Empty(t, state.Questions)
	m.playerRepo.AssertExpectations(t)
}

func TestJoinByCode_SessionFull(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)

	m.cacheRepo.On("Get", "join_code:ABC234").Return("", apperrors.ErrNotFound)
	m.sessionRepo.On("GetByJoinCode", "ABC234").Return(session, nil)
	m.playerRepo.On("EnsurePlayer", uint(1), uint(31), false, entity.PlayerRoleCompetitor, MaxPlayersPerSession).
		Return(nil, false, repository.ErrCapacityReached)

	// Act
	_, err := svc.JoinByCode("ABC234", 31)

	// Assert
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestJoinByCode_ExpiredSessionIsCompleted(t *testing.T) {
	// Arrange: дедлайн активной сессии прошёл
	svc, m := newSessionServiceForTest()
	endsAt := time.Now().Add(-time.Second)
	session := activeSession(1, &endsAt)

	m.cacheRepo.On("Get", "join_code:ABC234").Return("", apperrors.ErrNotFound)
	m.sessionRepo.On("GetByJoinCode", "ABC234").Return(session, nil)
	m.sessionRepo.On("AtomicFinish", uint(1), entity.SessionStatusCompleted).Return(true, nil)
	m.cacheRepo.On("Delete", "join_code:ABC234").Return(nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()

	// Act
	_, err := svc.JoinByCode("ABC234", 7)

	// Assert: запрос отклонён, а сессия завершена побочным эффектом
	assert.ErrorIs(t, err, ErrSessionExpired)
	m.sessionRepo.AssertCalled(t, "AtomicFinish", uint(1), entity.SessionStatusCompleted)
	m.playerRepo.AssertNotCalled(t, "EnsurePlayer",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinByCode_CacheHitSkipsCodeLookup(t *testing.T) {
	// Arrange: кеш знает соответствие код → ID сессии
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	player := &entity.Player{ID: 5, SessionID: 1, UserID: 7, Role: entity.PlayerRoleCompetitor}

	m.cacheRepo.On("Get", "join_code:ABC234").Return("1", nil)
	m.sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	m.playerRepo.On("EnsurePlayer", uint(1), uint(7), false, entity.PlayerRoleCompetitor, MaxPlayersPerSession).
		Return(player, false, nil)
	m.playerRepo.On("GetBySessionAndUser", uint(1), uint(7)).Return(player, nil)
	m.playerRepo.On("ListBySession", uint(1)).Return([]entity.Player{*player}, nil)
	m.answerRepo.On("ListBySession", uint(1)).Return([]entity.Answer{}, nil)
	m.questionRepo.On("ListBySession", uint(1)).Return([]entity.Question{}, nil)

	// Act
	_, err := svc.JoinByCode("ABC234", 7)

	// Assert
	require.NoError(t, err)
	m.sessionRepo.AssertNotCalled(t, "GetByJoinCode", mock.Anything)
}

func TestStartSession_RequiresTwoPlayers(t *testing.T) {
	// Arrange: в сессии ровно один участник
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.Players = []entity.Player{{ID: 5, SessionID: 1, UserID: 42, IsHost: true}}

	m.sessionRepo.On("GetWithPlayers", uint(1)).Return(session, nil)

	// Act
	_, err := svc.StartSession(1, 42, false)

	// Assert
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	m.sessionRepo.AssertNotCalled(t, "AtomicStart", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSession_TwoPlayersSucceeds(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	limit := 300
	session := pendingSession(1)
	session.TimeLimitSeconds = &limit
	session.Players = []entity.Player{
		{ID: 5, SessionID: 1, UserID: 42, IsHost: true},
		{ID: 6, SessionID: 1, UserID: 7},
	}

	m.sessionRepo.On("GetWithPlayers", uint(1)).Return(session, nil)
	m.sessionRepo.On("AtomicStart", uint(1), mock.Anything, mock.Anything).Return(nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()

	// Act
	started, err := svc.StartSession(1, 42, false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, started.Status)
	require.NotNil(t, started.StartedAt)
	require.NotNil(t, started.EndsAt)
	assert.Equal(t, started.StartedAt.Add(300*time.Second), *started.EndsAt)
	m.notifier.AssertExpectations(t)
}

func TestStartSession_NonHostForbidden(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.Players = []entity.Player{
		{ID: 5, SessionID: 1, UserID: 42, IsHost: true},
		{ID: 6, SessionID: 1, UserID: 7},
	}
	m.sessionRepo.On("GetWithPlayers", uint(1)).Return(session, nil)

	// Act: стартует не ведущий и не администратор
	_, err := svc.StartSession(1, 7, false)

	// Assert
	assert.ErrorIs(t, err, ErrNotHost)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestStartSession_AdminMayStart(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.Players = []entity.Player{
		{ID: 5, SessionID: 1, UserID: 42, IsHost: true},
		{ID: 6, SessionID: 1, UserID: 7},
	}
	m.sessionRepo.On("GetWithPlayers", uint(1)).Return(session, nil)
	m.sessionRepo.On("AtomicStart", uint(1), mock.Anything, mock.Anything).Return(nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()

	// Act
	started, err := svc.StartSession(1, 99, true)

	// Assert: без лимита времени дедлайн не выставляется
	require.NoError(t, err)
	assert.Nil(t, started.EndsAt)
}

func TestStartSession_ConcurrentStartLosesRace(t *testing.T) {
	// Arrange: условный UPDATE не нашёл pending-строку
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.Players = []entity.Player{
		{ID: 5, SessionID: 1, UserID: 42, IsHost: true},
		{ID: 6, SessionID: 1, UserID: 7},
	}
	m.sessionRepo.On("GetWithPlayers", uint(1)).Return(session, nil)
	m.sessionRepo.On("AtomicStart", uint(1), mock.Anything, mock.Anything).
		Return(repository.ErrSessionNotPending)

	// Act
	_, err := svc.StartSession(1, 42, false)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidTransition)
	m.notifier.AssertNotCalled(t, "NotifySessionChanged", mock.Anything, mock.Anything)
}

func TestStartSession_ClosedSession(t *testing.T) {
	// Arrange: завершённую сессию нельзя стартовать повторно
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.Status = entity.SessionStatusCompleted
	m.sessionRepo.On("GetWithPlayers", uint(1)).Return(session, nil)

	// Act
	_, err := svc.StartSession(1, 42, false)

	// Assert: из терминального статуса обратно в active пути нет
	assert.ErrorIs(t, err, ErrSessionClosed)
	m.sessionRepo.AssertNotCalled(t, "AtomicStart", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelSession_PendingAndActive(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	pending := pendingSession(1)
	active := activeSession(2, nil)

	m.sessionRepo.On("GetByID", uint(1)).Return(pending, nil)
	m.sessionRepo.On("GetByID", uint(2)).Return(active, nil)
	m.sessionRepo.On("CancelPending", uint(1)).Return(true, nil)
	m.sessionRepo.On("AtomicFinish", uint(2), entity.SessionStatusCancelled).Return(true, nil)
	m.cacheRepo.On("Delete", mock.Anything).Return(nil)
	m.notifier.On("NotifySessionChanged", mock.Anything, EventSessionRefresh).Return()

	// Act / Assert
	assert.NoError(t, svc.CancelSession(1, 42, false))
	assert.NoError(t, svc.CancelSession(2, 42, false))
	m.sessionRepo.AssertExpectations(t)
}

func TestCancelSession_AlreadyClosed(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	session.Status = entity.SessionStatusCancelled
	m.sessionRepo.On("GetByID", uint(1)).Return(session, nil)

	// Act / Assert
	assert.ErrorIs(t, svc.CancelSession(1, 42, false), ErrSessionClosed)
}

func TestKickPlayer_HostKicksMember(t *testing.T) {
	// Arrange: исключённый был последним играющим — сессия завершается
	svc, m := newSessionServiceForTest()
	session := activeSession(1, nil)
	target := &entity.Player{ID: 6, SessionID: 1, UserID: 7, Role: entity.PlayerRoleCompetitor}

	m.sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	m.playerRepo.On("GetByID", uint(6)).Return(target, nil)
	m.playerRepo.On("Remove", uint(6)).Return(nil)
	m.playerRepo.On("CountUnfinishedCompetitors", uint(1)).Return(int64(0), nil)
	m.sessionRepo.On("AtomicFinish", uint(1), entity.SessionStatusCompleted).Return(true, nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()

	// Act
	err := svc.KickPlayer(1, 6, 42, false)

	// Assert
	require.NoError(t, err)
	m.sessionRepo.AssertCalled(t, "AtomicFinish", uint(1), entity.SessionStatusCompleted)
}

func TestKickPlayer_WrongSession(t *testing.T) {
	// Arrange: участник принадлежит другой сессии
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	stranger := &entity.Player{ID: 6, SessionID: 99, UserID: 7}

	m.sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	m.playerRepo.On("GetByID", uint(6)).Return(stranger, nil)

	// Act / Assert
	assert.ErrorIs(t, svc.KickPlayer(1, 6, 42, false), ErrNotAMember)
	m.playerRepo.AssertNotCalled(t, "Remove", mock.Anything)
}

func TestKickPlayer_CannotRemoveHost(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := pendingSession(1)
	host := &entity.Player{ID: 5, SessionID: 1, UserID: 42, IsHost: true}

	m.sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	m.playerRepo.On("GetByID", uint(5)).Return(host, nil)

	// Act / Assert
	assert.ErrorIs(t, svc.KickPlayer(1, 5, 42, false), apperrors.ErrValidation)
}

func TestKickPlayer_NonHostForbidden(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	m.sessionRepo.On("GetByID", uint(1)).Return(pendingSession(1), nil)

	// Act / Assert
	assert.ErrorIs(t, svc.KickPlayer(1, 6, 7, false), ErrNotHost)
}

func TestGetState_CountsAnswersPerPlayer(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	session := activeSession(1, nil)
	me := &entity.Player{ID: 5, SessionID: 1, UserID: 7, Role: entity.PlayerRoleCompetitor}
	other := entity.Player{ID: 6, SessionID: 1, UserID: 8, Role: entity.PlayerRoleCompetitor}
	answers := []entity.Answer{
		{ID: 1, SessionID: 1, PlayerID: 5, QuestionID: 10, IsCorrect: true, PointsAwarded: 2},
		{ID: 2, SessionID: 1, PlayerID: 5, QuestionID: 11, IsCorrect: false, PointsAwarded: -1},
		{ID: 3, SessionID: 1, PlayerID: 6, QuestionID: 10, IsCorrect: true, PointsAwarded: 2},
	}
	questions := []entity.Question{
		{ID: 10, SessionID: 1, Position: 0, Prompt: "el gato"},
		{ID: 11, SessionID: 1, Position: 1, Prompt: "el perro"},
	}

	m.sessionRepo.On("GetByID", uint(1)).Return(session, nil)
	m.playerRepo.On("GetBySessionAndUser", uint(1), uint(7)).Return(me, nil)
	m.playerRepo.On("ListBySession", uint(1)).Return([]entity.Player{*me, other}, nil)
	m.answerRepo.On("ListBySession", uint(1)).Return(answers, nil)
	m.questionRepo.On("ListBySession", uint(1)).Return(questions, nil)

	// Act
	state, err := svc.GetState(1, 7)

	// Assert
	require.NoError(t, err)
	require.Len(t, state.Players, 2)
	assert.Equal(t, 2, state.Players[0].AnsweredCount)
	assert.Equal(t, 1, state.Players[1].AnsweredCount)
	require.Len(t, state.MyAnswers, 2)
	assert.Len(t, state.Questions, 2)
}

func TestGetState_NonMemberRejected(t *testing.T) {
	// Arrange
	svc, m := newSessionServiceForTest()
	m.sessionRepo.On("GetByID", uint(1)).Return(pendingSession(1), nil)
	m.playerRepo.On("GetBySessionAndUser", uint(1), uint(99)).Return(nil, apperrors.ErrNotFound)

	// Act / Assert
	_, err := svc.GetState(1, 99)
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestCompleteIfAllFinished(t *testing.T) {
	// Arrange: остался один играющий — завершения нет
	svc, m := newSessionServiceForTest()
	m.playerRepo.On("CountUnfinishedCompetitors", uint(1)).Return(int64(1), nil).Once()

	// Act / Assert
	done, err := svc.CompleteIfAllFinished(1)
	require.NoError(t, err)
	assert.False(t, done)

	// Arrange: играющих не осталось
	m.playerRepo.On("CountUnfinishedCompetitors", uint(1)).Return(int64(0), nil).Once()
	m.sessionRepo.On("AtomicFinish", uint(1), entity.SessionStatusCompleted).Return(true, nil)
	m.notifier.On("NotifySessionChanged", uint(1), EventSessionRefresh).Return()

	// Act / Assert
	done, err = svc.CompleteIfAllFinished(1)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestGenerateJoinCode(t *testing.T) {
	// Act
	code, err := generateJoinCode()

	// Assert: длина и алфавит без неоднозначных символов
	require.NoError(t, err)
	assert.Len(t, code, joinCodeLength)
	for _, r := range code {
		assert.Contains(t, joinCodeAlphabet, string(r))
	}
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "O")
	assert.Equal(t, strings.ToUpper(code), code)
}
