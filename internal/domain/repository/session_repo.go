package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// SessionRepository определяет методы для работы с игровыми сессиями
type SessionRepository interface {
	// CreateTx сохраняет новую сессию внутри переданной транзакции:
	// сессия, её вопросы и запись ведущего появляются атомарно.
	// Конфликт join-кода с другой pending/active сессией возвращается
	// как ErrJoinCodeTaken.
	CreateTx(tx *gorm.DB, session *entity.Session) error
	GetByID(id uint) (*entity.Session, error)
	// GetByJoinCode ищет pending/active сессию по коду (код нормализуется к верхнему регистру).
	GetByJoinCode(code string) (*entity.Session, error)
	GetWithPlayers(id uint) (*entity.Session, error)
	// AtomicStart атомарно переводит pending → active условным UPDATE
	// (WHERE status='pending'), выставляя started_at и ends_at.
	// RowsAffected == 0 означает, что сессия уже не pending — два
	// конкурентных старта не продублируют таймстемпы.
	AtomicStart(sessionID uint, startedAt time.Time, endsAt *time.Time) error
	// AtomicFinish атомарно переводит active → status (completed или
	// cancelled для активной сессии). Возвращает (false, nil), если
	// сессия уже не active — повторное завершение не ошибка.
	AtomicFinish(sessionID uint, status string) (bool, error)
	// CancelPending переводит pending → cancelled условным UPDATE.
	CancelPending(sessionID uint) (bool, error)
}
