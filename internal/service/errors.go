package service

import (
	"fmt"

	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
)

// Доменные ошибки сессионного движка. Каждая оборачивает базовую
// ошибку из internal/pkg/errors, поэтому хендлер сопоставляет их с
// HTTP-статусами одним errors.Is по базовому значению, а тесты — по
// конкретному.
var (
	// ErrInsufficientContent — в колоде нет ни одной карточки.
	ErrInsufficientContent = fmt.Errorf("%w: deck has no cards", apperrors.ErrValidation)

	// ErrSessionNotStarted — попытка ответить до старта сессии.
	ErrSessionNotStarted = fmt.Errorf("%w: session has not started yet", apperrors.ErrConflict)

	// ErrSessionClosed — сессия завершена или отменена; ответы и старты не принимаются.
	ErrSessionClosed = fmt.Errorf("%w: session is closed", apperrors.ErrConflict)

	// ErrSessionExpired — дедлайн прошёл. Обнаруживший это запрос
	// сначала переводит сессию в completed и только потом отклоняется.
	ErrSessionExpired = fmt.Errorf("%w: session time limit reached", apperrors.ErrExpired)

	// ErrInvalidTransition — условный переход статуса не применился
	// (например, старт уже не-pending сессии).
	ErrInvalidTransition = fmt.Errorf("%w: invalid session status transition", apperrors.ErrConflict)

	// ErrSessionFull — достигнут предел в MaxPlayersPerSession участников.
	ErrSessionFull = fmt.Errorf("%w: session is full", apperrors.ErrConflict)

	// ErrNotEnoughPlayers — для старта нужно минимум MinPlayersToStart участников.
	ErrNotEnoughPlayers = fmt.Errorf("%w: not enough players to start", apperrors.ErrConflict)

	// ErrNotAMember — пользователь не состоит в сессии.
	ErrNotAMember = fmt.Errorf("%w: caller is not a member of this session", apperrors.ErrNotFound)

	// ErrHostCannotAnswer — наблюдатель (учитель-ведущий) не отвечает на вопросы.
	ErrHostCannotAnswer = fmt.Errorf("%w: spectator host cannot submit answers", apperrors.ErrForbidden)

	// ErrQuestionNotFound — вопрос не существует или принадлежит другой сессии.
	ErrQuestionNotFound = fmt.Errorf("%w: question does not belong to this session", apperrors.ErrNotFound)

	// ErrAlreadyAnswered — на пару (игрок, вопрос) ответ уже записан.
	ErrAlreadyAnswered = fmt.Errorf("%w: question already answered", apperrors.ErrConflict)

	// ErrNotHost — операция доступна только ведущему сессии или администратору.
	ErrNotHost = fmt.Errorf("%w: only the session host may do this", apperrors.ErrForbidden)
)
