package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
)

// ScoringService принимает и засчитывает ответы игроков.
// Идемпотентность «один ответ на пару (игрок, вопрос)» гарантирует
// уникальный индекс в БД, а не предварительная проверка: при
// конкурентных дублях ровно один ответ будет записан.
type ScoringService struct {
	sessionRepo  repository.SessionRepository
	playerRepo   repository.PlayerRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	sessions     *SessionService
	notifier     Notifier
}

// NewScoringService создает новый сервис подсчёта очков
func NewScoringService(
	sessionRepo repository.SessionRepository,
	playerRepo repository.PlayerRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	sessions *SessionService,
	notifier Notifier,
) *ScoringService {
	return &ScoringService{
		sessionRepo:  sessionRepo,
		playerRepo:   playerRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		sessions:     sessions,
		notifier:     notifier,
	}
}

// SubmitAnswer засчитывает один ответ игрока: +2 за верный, −1 за
// неверный (без обрезания снизу). Счёт применяется относительной
// корректировкой. Когда игрок отвечает на последний вопрос, он
// переводится в finished; когда не остаётся играющих соревнующихся,
// сессия завершается ещё до возврата из этого вызова.
func (s *ScoringService) SubmitAnswer(sessionID, callerID, questionID uint, isCorrect bool, transcript string) (*entity.Answer, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	// Порядок проверок фиксирован: статус сессии, дедлайн, членство,
	// роль, принадлежность вопроса, дубль.
	if session.IsPending() {
		return nil, ErrSessionNotStarted
	}
	if session.IsClosed() {
		return nil, ErrSessionClosed
	}

	expired, err := s.sessions.finalizeIfExpired(session)
	if err != nil {
		return nil, err
	}
	if expired {
		// Сессия уже переведена в completed как побочный эффект
		return nil, ErrSessionExpired
	}

	player, err := s.playerRepo.GetBySessionAndUser(sessionID, callerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotAMember
		}
		return nil, err
	}
	if !player.CanAnswer() {
		return nil, ErrHostCannotAnswer
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if !question.BelongsToSession(sessionID) {
		return nil, ErrQuestionNotFound
	}

	answer := &entity.Answer{
		SessionID:     sessionID,
		PlayerID:      player.ID,
		QuestionID:    questionID,
		IsCorrect:     isCorrect,
		PointsAwarded: entity.PointsFor(isCorrect),
		Transcript:    transcript,
	}

	if err := s.answerRepo.Create(answer); err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			return nil, ErrAlreadyAnswered
		}
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	if err := s.playerRepo.AddScore(player.ID, answer.PointsAwarded); err != nil {
		// Ответ уже записан; счёт разъедется с таблицей ответов,
		// поэтому ошибку наружу отдаём как есть
		return nil, fmt.Errorf("failed to apply score for player #%d: %w", player.ID, err)
	}

	answered, err := s.answerRepo.CountByPlayer(player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers for player #%d: %w", player.ID, err)
	}

	if int(answered) >= session.QuestionCount {
		if err := s.playerRepo.MarkFinished(player.ID); err != nil {
			return nil, fmt.Errorf("failed to finish player #%d: %w", player.ID, err)
		}
		log.Printf("[ScoringService] Игрок ID=%d закончил сессию ID=%d (%d/%d ответов)",
			player.ID, sessionID, answered, session.QuestionCount)

		if _, err := s.sessions.CompleteIfAllFinished(sessionID); err != nil {
			log.Printf("[ScoringService] Ошибка проверки автозавершения сессии ID=%d: %v", sessionID, err)
		}
	}

	s.notifier.NotifySessionChanged(sessionID, EventSessionRefresh)
	return answer, nil
}
