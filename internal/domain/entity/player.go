package entity

import (
	"time"
)

// Роли участника сессии. Spectator — ведущий-наблюдатель (учитель),
// который не отвечает на вопросы и не учитывается при подсчёте
// завершивших игроков. Competitor — обычный соревнующийся игрок.
const (
	PlayerRoleCompetitor = "competitor"
	PlayerRoleSpectator  = "spectator"
)

// Константы состояний игрока
const (
	PlayerStatePlaying  = "playing"
	PlayerStateFinished = "finished"
)

// Player представляет участника игровой сессии.
// На пару (session_id, user_id) существует не более одной записи —
// это гарантирует уникальный индекс в БД, повторный join идемпотентен.
type Player struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	SessionID uint `gorm:"not null;index:idx_session_user,unique" json:"session_id"`
	UserID    uint `gorm:"not null;index:idx_session_user,unique" json:"user_id"`

	// IsHost отмечает создателя сессии (он же единственный, кто может её стартовать).
	IsHost bool `gorm:"not null;default:false" json:"is_host"`

	Role string `gorm:"size:20;not null;default:'competitor'" json:"role"`

	// Score может уходить в минус: неверный ответ стоит −1 очко.
	Score int `gorm:"not null;default:0" json:"score"`

	State string `gorm:"size:20;not null;default:'playing'" json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Player) TableName() string {
	return "session_players"
}

// IsSpectator проверяет, является ли участник наблюдателем
func (p *Player) IsSpectator() bool {
	return p.Role == PlayerRoleSpectator
}

// CanAnswer проверяет, может ли участник отправлять ответы.
// Наблюдатель никогда не отвечает.
func (p *Player) CanAnswer() bool {
	return p.Role == PlayerRoleCompetitor
}

// CountsForCompletion проверяет, учитывается ли участник в условии
// «все игроки закончили» при автозавершении сессии.
func (p *Player) CountsForCompletion() bool {
	return p.Role == PlayerRoleCompetitor
}

// IsFinished проверяет, ответил ли игрок на все вопросы сессии
func (p *Player) IsFinished() bool {
	return p.State == PlayerStateFinished
}
