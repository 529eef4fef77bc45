package entity

import (
	"time"
)

// Константы статусов игровой сессии
const (
	SessionStatusPending   = "pending"
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Session представляет одну многопользовательскую игровую сессию
// по фиксированному набору карточек колоды.
type Session struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	DeckID uint `gorm:"not null;index" json:"deck_id"`
	HostID uint `gorm:"not null;index" json:"host_id"`

	// JoinCode хранится в верхнем регистре; уникальность среди
	// pending/active сессий обеспечивает частичный уникальный индекс.
	JoinCode string `gorm:"size:8;not null" json:"join_code"`

	// IsTeacherHost означает, что создатель сессии наблюдает и не играет.
	IsTeacherHost bool `gorm:"not null;default:false" json:"is_teacher_host"`

	QuestionCount int `gorm:"not null;default:0" json:"question_count"`

	// TimeLimitSeconds == nil означает сессию без ограничения по времени.
	TimeLimitSeconds *int `json:"time_limit_seconds,omitempty"`

	Status    string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	StartedAt *time.Time `json:"started_at,omitempty"`

	// EndsAt = StartedAt + TimeLimitSeconds. Заполняется только при
	// переходе pending → active и только если задан лимит времени.
	EndsAt *time.Time `json:"ends_at,omitempty"`

	Players   []Player   `gorm:"foreignKey:SessionID" json:"players,omitempty"`
	Questions []Question `gorm:"foreignKey:SessionID" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Session) TableName() string {
	return "game_sessions"
}

// IsPending проверяет, что сессия ещё не началась
func (s *Session) IsPending() bool {
	return s.Status == SessionStatusPending
}

// IsActive проверяет, идёт ли сессия
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsClosed проверяет, находится ли сессия в терминальном статусе.
// Из completed/cancelled переходов обратно не существует.
func (s *Session) IsClosed() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

// IsExpired проверяет, истёк ли дедлайн активной сессии на момент now.
// Для сессий без лимита времени всегда false.
func (s *Session) IsExpired(now time.Time) bool {
	return s.IsActive() && s.EndsAt != nil && now.After(*s.EndsAt)
}

// ComputeEndsAt вычисляет дедлайн для старта в момент startedAt.
// Возвращает nil для сессии без лимита времени.
func (s *Session) ComputeEndsAt(startedAt time.Time) *time.Time {
	if s.TimeLimitSeconds == nil {
		return nil
	}
	endsAt := startedAt.Add(time.Duration(*s.TimeLimitSeconds) * time.Second)
	return &endsAt
}
