package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
)

// Параметры join-кода. Алфавит без неоднозначных символов (0/O, 1/I),
// чтобы код можно было диктовать вслух.
const (
	joinCodeLength   = 6
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// joinCodeAttempts ограничивает перегенерацию кода при коллизии
	joinCodeAttempts = 5

	joinCodeCachePrefix = "join_code:"
	joinCodeCacheTTL    = 24 * time.Hour
)

// CreateSessionInput - входные данные для создания сессии
type CreateSessionInput struct {
	DeckID        uint
	QuestionCount int
	// TimeLimitSeconds == nil — сессия без ограничения по времени
	TimeLimitSeconds *int
	// IsTeacherHost — создатель будет наблюдателем, а не игроком
	IsTeacherHost bool
}

// PlayerState - участник сессии вместе с числом данных им ответов
type PlayerState struct {
	entity.Player
	AnsweredCount int `json:"answered_count"`
}

// SessionState - полный снимок состояния сессии для одного участника.
// Поле Answer вопросов никогда не сериализуется; наблюдателю список
// вопросов не отдаётся вовсе.
type SessionState struct {
	Session   *entity.Session   `json:"session"`
	Players   []PlayerState     `json:"players"`
	Questions []entity.Question `json:"questions"`
	MyAnswers []entity.Answer   `json:"my_answers"`
}

// SessionService реализует жизненный цикл игровой сессии:
// создание, подключение по коду, старт, отмену, исключение участника
// и ленивое завершение по дедлайну.
type SessionService struct {
	db           *gorm.DB
	sessionRepo  repository.SessionRepository
	playerRepo   repository.PlayerRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	cacheRepo    repository.CacheRepository
	questionGen  *QuestionSetGenerator
	notifier     Notifier
}

// NewSessionService создает новый сервис игровых сессий
func NewSessionService(
	db *gorm.DB,
	sessionRepo repository.SessionRepository,
	playerRepo repository.PlayerRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	cacheRepo repository.CacheRepository,
	questionGen *QuestionSetGenerator,
	notifier Notifier,
) *SessionService {
	return &SessionService{
		db:           db,
		sessionRepo:  sessionRepo,
		playerRepo:   playerRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		cacheRepo:    cacheRepo,
		questionGen:  questionGen,
		notifier:     notifier,
	}
}

// CreateSession создает сессию вместе с её набором вопросов в одной
// транзакции. Ведущий НЕ добавляется в участники автоматически: он
// подключается по коду как все, получая IsHost и свою роль при join.
// Коллизия join-кода приводит к перегенерации (до joinCodeAttempts раз).
func (s *SessionService) CreateSession(hostID uint, input CreateSessionInput) (*entity.Session, error) {
	if input.DeckID == 0 {
		return nil, fmt.Errorf("%w: deck_id is required", apperrors.ErrValidation)
	}
	if input.QuestionCount <= 0 {
		return nil, fmt.Errorf("%w: question_count must be positive", apperrors.ErrValidation)
	}
	if input.TimeLimitSeconds != nil && *input.TimeLimitSeconds <= 0 {
		return nil, fmt.Errorf("%w: time_limit_seconds must be positive", apperrors.ErrValidation)
	}

	for attempt := 1; attempt <= joinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		session := &entity.Session{
			DeckID:           input.DeckID,
			HostID:           hostID,
			JoinCode:         code,
			IsTeacherHost:    input.IsTeacherHost,
			TimeLimitSeconds: input.TimeLimitSeconds,
			Status:           entity.SessionStatusPending,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.sessionRepo.CreateTx(tx, session); err != nil {
				return err
			}

			count, err := s.questionGen.BuildForSession(tx, session.ID, input.DeckID, input.QuestionCount)
			if err != nil {
				return err
			}

			if err := tx.Model(&entity.Session{}).
				Where("id = ?", session.ID).
				Update("question_count", count).Error; err != nil {
				return fmt.Errorf("failed to set question count: %w", err)
			}
			session.QuestionCount = count

			return nil
		})

		if err != nil {
			if errors.Is(err, repository.ErrJoinCodeTaken) {
				log.Printf("[SessionService] Коллизия join-кода %q (попытка %d/%d), перегенерация",
					code, attempt, joinCodeAttempts)
				continue
			}
			return nil, err
		}

		// Кеш вспомогательный: его сбой создание сессии не ломает
		if cacheErr := s.cacheRepo.Set(joinCodeCachePrefix+code, session.ID, joinCodeCacheTTL); cacheErr != nil {
			log.Printf("[SessionService] Не удалось закешировать join-код %q: %v", code, cacheErr)
		}

		log.Printf("[SessionService] Сессия ID=%d создана: колода=%d, вопросов=%d, код=%s",
			session.ID, session.DeckID, session.QuestionCount, session.JoinCode)
		return session, nil
	}

	return nil, fmt.Errorf("%w: could not allocate a unique join code", apperrors.ErrConflict)
}

// JoinByCode подключает пользователя к сессии по join-коду и возвращает
// полный снимок состояния. Повторный join того же пользователя
// идемпотентен. Ведущий, подключаясь к своей сессии, получает IsHost,
// а при is_teacher_host — роль наблюдателя.
func (s *SessionService) JoinByCode(code string, userID uint) (*SessionState, error) {
	session, err := s.findByJoinCode(code)
	if err != nil {
		return nil, err
	}

	// Ленивое истечение: истёкшая сессия сначала завершается, затем отклоняется
	expired, err := s.finalizeIfExpired(session)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrSessionExpired
	}

	isHost := userID == session.HostID
	role := entity.PlayerRoleCompetitor
	if isHost && session.IsTeacherHost {
		role = entity.PlayerRoleSpectator
	}

	_, created, err := s.playerRepo.EnsurePlayer(session.ID, userID, isHost, role, MaxPlayersPerSession)
	if err != nil {
		if errors.Is(err, repository.ErrCapacityReached) {
			return nil, ErrSessionFull
		}
		return nil, err
	}

	if created {
		log.Printf("[SessionService] Пользователь ID=%d присоединился к сессии ID=%d (роль=%s)",
			userID, session.ID, role)
		s.notifier.NotifySessionChanged(session.ID, EventSessionRefresh)
	}

	return s.GetState(session.ID, userID)
}

// StartSession переводит сессию pending → active. Доступно ведущему
// или администратору при не менее чем MinPlayersToStart участниках.
// Конкурентный повторный старт отсекается условным UPDATE в хранилище.
func (s *SessionService) StartSession(sessionID, callerID uint, isAdmin bool) (*entity.Session, error) {
	session, err := s.sessionRepo.GetWithPlayers(sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsClosed() {
		return nil, ErrSessionClosed
	}
	if !isAdmin && session.HostID != callerID {
		return nil, ErrNotHost
	}
	if len(session.Players) < MinPlayersToStart {
		return nil, ErrNotEnoughPlayers
	}

	startedAt := time.Now()
	endsAt := session.ComputeEndsAt(startedAt)

	if err := s.sessionRepo.AtomicStart(sessionID, startedAt, endsAt); err != nil {
		if errors.Is(err, repository.ErrSessionNotPending) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	session.Status = entity.SessionStatusActive
	session.StartedAt = &startedAt
	session.EndsAt = endsAt

	log.Printf("[SessionService] Сессия ID=%d стартовала: игроков=%d, дедлайн=%v",
		sessionID, len(session.Players), endsAt)
	s.notifier.NotifySessionChanged(sessionID, EventSessionRefresh)

	return session, nil
}

// CancelSession отменяет сессию (pending или active). Доступно
// ведущему или администратору.
func (s *SessionService) CancelSession(sessionID, callerID uint, isAdmin bool) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if !isAdmin && session.HostID != callerID {
		return ErrNotHost
	}

	var cancelled bool
	switch session.Status {
	case entity.SessionStatusPending:
		cancelled, err = s.sessionRepo.CancelPending(sessionID)
	case entity.SessionStatusActive:
		cancelled, err = s.sessionRepo.AtomicFinish(sessionID, entity.SessionStatusCancelled)
	default:
		return ErrSessionClosed
	}
	if err != nil {
		return err
	}
	if !cancelled {
		// Статус успел измениться между чтением и условным UPDATE
		return ErrInvalidTransition
	}

	s.dropJoinCodeCache(session.JoinCode)
	log.Printf("[SessionService] Сессия ID=%d отменена пользователем ID=%d", sessionID, callerID)
	s.notifier.NotifySessionChanged(sessionID, EventSessionRefresh)

	return nil
}

// KickPlayer исключает участника из сессии. Доступно ведущему или
// администратору; ведущего исключить нельзя. После исключения из
// активной сессии условие автозавершения перепроверяется: исключённый
// мог быть последним не закончившим игроком.
func (s *SessionService) KickPlayer(sessionID, playerID, callerID uint, isAdmin bool) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}

	if session.IsClosed() {
		return ErrSessionClosed
	}
	if !isAdmin && session.HostID != callerID {
		return ErrNotHost
	}

	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrNotAMember
		}
		return err
	}
	if player.SessionID != sessionID {
		return ErrNotAMember
	}
	if player.IsHost {
		return fmt.Errorf("%w: the session host cannot be removed", apperrors.ErrValidation)
	}

	if err := s.playerRepo.Remove(playerID); err != nil {
		return err
	}

	log.Printf("[SessionService] Участник ID=%d исключён из сессии ID=%d", playerID, sessionID)

	if session.IsActive() {
		if _, err := s.CompleteIfAllFinished(sessionID); err != nil {
			log.Printf("[SessionService] Ошибка перепроверки завершения сессии ID=%d после исключения: %v",
				sessionID, err)
		}
	}

	s.notifier.NotifySessionChanged(sessionID, EventSessionRefresh)
	return nil
}

// GetState возвращает полный снимок состояния сессии для участника.
// Доступен только членам сессии. Список вопросов наблюдателю не
// отдаётся; для игроков вопросы не содержат правильных ответов.
func (s *SessionService) GetState(sessionID, userID uint) (*SessionState, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	// Истёкший дедлайн фиксируется даже на чтении; снимок при этом
	// возвращается уже с терминальным статусом.
	if _, err := s.finalizeIfExpired(session); err != nil {
		return nil, err
	}

	me, err := s.playerRepo.GetBySessionAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotAMember
		}
		return nil, err
	}

	players, err := s.playerRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	answered := make(map[uint]int, len(players))
	myAnswers := make([]entity.Answer, 0)
	for _, a := range answers {
		answered[a.PlayerID]++
		if a.PlayerID == me.ID {
			myAnswers = append(myAnswers, a)
		}
	}

	playerStates := make([]PlayerState, 0, len(players))
	for _, p := range players {
		playerStates = append(playerStates, PlayerState{
			Player:        p,
			AnsweredCount: answered[p.ID],
		})
	}

	questions := make([]entity.Question, 0)
	if !me.IsSpectator() {
		questions, err = s.questionRepo.ListBySession(sessionID)
		if err != nil {
			return nil, err
		}
	}

	return &SessionState{
		Session:   session,
		Players:   playerStates,
		Questions: questions,
		MyAnswers: myAnswers,
	}, nil
}

// CompleteIfAllFinished переводит активную сессию в completed, если
// не осталось соревнующихся игроков в состоянии playing. Возвращает
// true, если переход применился именно этим вызовом.
func (s *SessionService) CompleteIfAllFinished(sessionID uint) (bool, error) {
	unfinished, err := s.playerRepo.CountUnfinishedCompetitors(sessionID)
	if err != nil {
		return false, err
	}
	if unfinished > 0 {
		return false, nil
	}

	completed, err := s.sessionRepo.AtomicFinish(sessionID, entity.SessionStatusCompleted)
	if err != nil {
		return false, err
	}
	if completed {
		log.Printf("[SessionService] Сессия ID=%d завершена: все игроки закончили", sessionID)
		s.notifier.NotifySessionChanged(sessionID, EventSessionRefresh)
	}
	return completed, nil
}

// finalizeIfExpired выполняет ленивую проверку дедлайна: если время
// активной сессии вышло, она переводится в completed. Возвращает
// признак «дедлайн истёк» независимо от того, кто успел применить
// переход — проигравший гонку вызов всё равно должен отклонить запрос.
func (s *SessionService) finalizeIfExpired(session *entity.Session) (bool, error) {
	if !session.IsExpired(time.Now()) {
		return false, nil
	}

	completed, err := s.sessionRepo.AtomicFinish(session.ID, entity.SessionStatusCompleted)
	if err != nil {
		return false, err
	}
	session.Status = entity.SessionStatusCompleted

	if completed {
		log.Printf("[SessionService] Сессия ID=%d завершена по истечении времени", session.ID)
		s.dropJoinCodeCache(session.JoinCode)
		s.notifier.NotifySessionChanged(session.ID, EventSessionRefresh)
	}
	return true, nil
}

// findByJoinCode ищет живую сессию по коду: сперва в кеше, при промахе
// или протухшей записи — в БД (источник истины).
func (s *SessionService) findByJoinCode(code string) (*entity.Session, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, fmt.Errorf("%w: join code is required", apperrors.ErrValidation)
	}

	if cached, err := s.cacheRepo.Get(joinCodeCachePrefix + normalized); err == nil {
		if id, parseErr := strconv.ParseUint(cached, 10, 64); parseErr == nil {
			session, getErr := s.sessionRepo.GetByID(uint(id))
			if getErr == nil && session.JoinCode == normalized && !session.IsClosed() {
				return session, nil
			}
		}
		// Протухшая запись: чистим и идём в БД
		s.dropJoinCodeCache(normalized)
	}

	return s.sessionRepo.GetByJoinCode(normalized)
}

func (s *SessionService) dropJoinCodeCache(code string) {
	if err := s.cacheRepo.Delete(joinCodeCachePrefix + code); err != nil {
		log.Printf("[SessionService] Не удалось удалить join-код %q из кеша: %v", code, err)
	}
}

// generateJoinCode генерирует криптослучайный код из joinCodeAlphabet
func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, joinCodeLength)
	for i, b := range buf {
		code[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(code), nil
}
