package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/repository"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
)

// PlayerRepo реализует repository.PlayerRepository
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo создает новый репозиторий участников
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// EnsurePlayer — идемпотентный join одной атомарной единицей.
// Внутри транзакции строка сессии берётся с блокировкой FOR UPDATE:
// конкурентные join одной сессии сериализуются на уровне БД, поэтому
// проверка лимита и вставка не могут разъехаться между запросами.
// Дополнительной страховкой от дублей служит уникальный индекс
// (session_id, user_id): если два процесса всё же вставляют одного и
// того же пользователя, проигравший получает 23505 и перечитывает
// существующую запись.
func (r *PlayerRepo) EnsurePlayer(sessionID, userID uint, isHost bool, role string, capacity int) (*entity.Player, bool, error) {
	var player *entity.Player
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Блокируем строку сессии: все join этой сессии идут по очереди
		var session entity.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		// Повторный join возвращает существующее членство как есть
		var existing entity.Player
		err := tx.Where("session_id = ? AND user_id = ?", sessionID, userID).
			First(&existing).Error
		if err == nil {
			player = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Проверка лимита мест под блокировкой
		var count int64
		if err := tx.Model(&entity.Player{}).
			Where("session_id = ?", sessionID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(capacity) {
			return fmt.Errorf("%w: session #%d has %d players", repository.ErrCapacityReached, sessionID, count)
		}

		newPlayer := entity.Player{
			SessionID: sessionID,
			UserID:    userID,
			IsHost:    isHost,
			Role:      role,
			State:     entity.PlayerStatePlaying,
		}
		if err := tx.Create(&newPlayer).Error; err != nil {
			if isUniqueViolation(err) {
				// Конкурентный join успел раньше — читаем его результат
				var raced entity.Player
				if err2 := tx.Where("session_id = ? AND user_id = ?", sessionID, userID).
					First(&raced).Error; err2 != nil {
					return err2
				}
				player = &raced
				return nil
			}
			return err
		}

		player = &newPlayer
		created = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}
	return player, created, nil
}

// GetByID возвращает участника по ID
func (r *PlayerRepo) GetByID(id uint) (*entity.Player, error) {
	var player entity.Player
	err := r.db.First(&player, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// GetBySessionAndUser возвращает членство пользователя в сессии
func (r *PlayerRepo) GetBySessionAndUser(sessionID, userID uint) (*entity.Player, error) {
	var player entity.Player
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// ListBySession возвращает всех участников сессии в порядке присоединения
func (r *PlayerRepo) ListBySession(sessionID uint) ([]entity.Player, error) {
	var players []entity.Player
	err := r.db.Where("session_id = ?", sessionID).
		Order("id").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// AddScore применяет относительную корректировку счёта через gorm.Expr.
// Конкурентные ответы разных игроков не теряют очки: БД складывает
// дельты, а не перезаписывает прочитанное значение.
func (r *PlayerRepo) AddScore(playerID uint, delta int) error {
	return r.db.Model(&entity.Player{}).
		Where("id = ?", playerID).
		Update("score", gorm.Expr("score + ?", delta)).
		Error
}

// MarkFinished условно переводит playing → finished
func (r *PlayerRepo) MarkFinished(playerID uint) error {
	return r.db.Model(&entity.Player{}).
		Where("id = ? AND state = ?", playerID, entity.PlayerStatePlaying).
		Update("state", entity.PlayerStateFinished).
		Error
}

// CountUnfinishedCompetitors возвращает число соревнующихся игроков в состоянии playing.
// Наблюдатели (учитель-ведущий) не учитываются.
func (r *PlayerRepo) CountUnfinishedCompetitors(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Player{}).
		Where("session_id = ? AND role = ? AND state = ?",
			sessionID, entity.PlayerRoleCompetitor, entity.PlayerStatePlaying).
		Count(&count).Error
	return count, err
}

// Remove удаляет участника из сессии (kick со стороны ведущего/админа)
func (r *PlayerRepo) Remove(playerID uint) error {
	result := r.db.Delete(&entity.Player{}, playerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
