package repository

import (
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/domain/entity"
)

// PlayerRepository определяет методы для работы с участниками сессии
type PlayerRepository interface {
	// EnsurePlayer — идемпотентный join. Проверка лимита мест, поиск
	// существующего членства и вставка выполняются одной атомарной
	// единицей (транзакция + блокировка строки сессии), а уникальный
	// индекс (session_id, user_id) закрывает гонку конкурентных join
	// на уровне хранилища. Возвращает участника и признак того, что
	// запись была создана этим вызовом.
	// Переполнение (count >= capacity) возвращается как ErrCapacityReached.
	EnsurePlayer(sessionID, userID uint, isHost bool, role string, capacity int) (*entity.Player, bool, error)
	GetByID(id uint) (*entity.Player, error)
	GetBySessionAndUser(sessionID, userID uint) (*entity.Player, error)
	ListBySession(sessionID uint) ([]entity.Player, error)
	// AddScore применяет относительную корректировку счёта
	// (score = score + delta), а не read-modify-write.
	AddScore(playerID uint, delta int) error
	// MarkFinished условно переводит playing → finished.
	MarkFinished(playerID uint) error
	// CountUnfinishedCompetitors возвращает число соревнующихся игроков
	// (наблюдатели не учитываются), ещё находящихся в состоянии playing.
	CountUnfinishedCompetitors(sessionID uint) (int64, error)
	Remove(playerID uint) error
}
