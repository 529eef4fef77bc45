package dto

import (
	"time"
)

// CreateSessionRequest представляет запрос на создание игровой сессии
type CreateSessionRequest struct {
	DeckID        uint `json:"deck_id" binding:"required"`
	QuestionCount int  `json:"question_count" binding:"required,min=1"`
	// TimeLimitSeconds опционален: отсутствие — сессия без лимита времени
	TimeLimitSeconds *int `json:"time_limit_seconds" binding:"omitempty,min=1"`
	IsTeacherHost    bool `json:"is_teacher_host"`
}

// CreateSessionResponse возвращает идентификаторы созданной сессии
type CreateSessionResponse struct {
	SessionID uint   `json:"session_id"`
	JoinCode  string `json:"join_code"`
}

// JoinSessionRequest представляет запрос на подключение по коду
type JoinSessionRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
}

// StartSessionResponse возвращает тайминги стартовавшей сессии
type StartSessionResponse struct {
	StartedAt time.Time  `json:"started_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// SubmitAnswerRequest представляет запрос на засчитывание ответа.
// IsCorrect — указатель, чтобы binding:"required" не отбрасывал
// валидное значение false.
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	IsCorrect  *bool  `json:"is_correct" binding:"required"`
	Transcript string `json:"transcript" binding:"omitempty,max=500"`
}

// SubmitAnswerResponse возвращает результат засчитанного ответа
type SubmitAnswerResponse struct {
	PointsAwarded int `json:"points_awarded"`
}

// WSTicketResponse возвращает короткоживущий тикет для WebSocket
type WSTicketResponse struct {
	Ticket string `json:"ticket"`
}
