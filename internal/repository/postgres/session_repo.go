package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий игровых сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateTx сохраняет новую сессию внутри переданной транзакции.
// Частичный уникальный индекс idx_sessions_join_code_live (join_code
// WHERE status IN ('pending','active')) отклоняет коллизию кода —
// она возвращается как ErrJoinCodeTaken, чтобы сервис перегенерировал код.
func (r *SessionRepo) CreateTx(tx *gorm.DB, session *entity.Session) error {
	if err := tx.Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repository.ErrJoinCodeTaken, session.JoinCode)
		}
		return err
	}
	return nil
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id uint) (*entity.Session, error) {
	var session entity.Session
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByJoinCode возвращает pending/active сессию по join-коду.
// Код нормализуется к верхнему регистру: ввод нечувствителен к регистру.
func (r *SessionRepo) GetByJoinCode(code string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.
		Where("join_code = ? AND status IN ?",
			strings.ToUpper(strings.TrimSpace(code)),
			[]string{entity.SessionStatusPending, entity.SessionStatusActive}).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetWithPlayers возвращает сессию вместе с участниками
func (r *SessionRepo) GetWithPlayers(id uint) (*entity.Session, error) {
	var session entity.Session
	err := r.db.Preload("Players").First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// AtomicStart атомарно переводит pending → active.
// Условие WHERE status='pending' гарантирует, что из двух конкурентных
// стартов только один проставит started_at/ends_at.
// - RowsAffected == 0 → сессия не pending (ErrSessionNotPending)
// - Другая DB ошибка → возвращается как есть
func (r *SessionRepo) AtomicStart(sessionID uint, startedAt time.Time, endsAt *time.Time) error {
	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status = ?", sessionID, entity.SessionStatusPending).
		Updates(map[string]interface{}{
			"status":     entity.SessionStatusActive,
			"started_at": startedAt,
			"ends_at":    endsAt,
		})

	if result.Error != nil {
		return fmt.Errorf("start session #%d failed: %w", sessionID, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionNotPending, sessionID)
	}

	return nil
}

// AtomicFinish атомарно переводит active → completed/cancelled.
// Возвращает (false, nil), если сессия уже не active: ленивое истечение
// дедлайна и автозавершение по последнему ответу могут гоняться друг с
// другом, и «опоздавший» переход — не ошибка.
func (r *SessionRepo) AtomicFinish(sessionID uint, status string) (bool, error) {
	if status != entity.SessionStatusCompleted && status != entity.SessionStatusCancelled {
		return false, fmt.Errorf("invalid terminal status %q for session #%d", status, sessionID)
	}

	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status = ?", sessionID, entity.SessionStatusActive).
		Update("status", status)

	if result.Error != nil {
		return false, fmt.Errorf("finish session #%d failed: %w", sessionID, result.Error)
	}

	return result.RowsAffected > 0, nil
}

// CancelPending атомарно переводит pending → cancelled
func (r *SessionRepo) CancelPending(sessionID uint) (bool, error) {
	result := r.db.Model(&entity.Session{}).
		Where("id = ? AND status = ?", sessionID, entity.SessionStatusPending).
		Update("status", entity.SessionStatusCancelled)

	if result.Error != nil {
		return false, fmt.Errorf("cancel session #%d failed: %w", sessionID, result.Error)
	}

	return result.RowsAffected > 0, nil
}
