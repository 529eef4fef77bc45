package repository

import "errors"

var (
	// ErrJoinCodeTaken означает, что сгенерированный join-код уже занят
	// другой pending/active сессией (нарушение частичного уникального индекса).
	ErrJoinCodeTaken = errors.New("join code is already taken")
	// ErrCapacityReached означает, что в сессии уже максимальное число участников.
	ErrCapacityReached = errors.New("session capacity reached")
	// ErrDuplicateAnswer означает, что ответ на пару (player, question) уже записан.
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
	// ErrSessionNotPending означает, что условный старт не применился:
	// сессия уже не в статусе pending.
	ErrSessionNotPending = errors.New("session is not pending")
)
