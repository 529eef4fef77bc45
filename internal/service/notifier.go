package service

// Контрактные константы сессии. Это часть протокола, а не конфигурация:
// клиенты рассчитывают именно на эти значения.
const (
	// MaxPlayersPerSession — жёсткий потолок участников одной сессии (включая наблюдателя).
	MaxPlayersPerSession = 30

	// MinPlayersToStart — минимум участников для старта.
	MinPlayersToStart = 2
)

// Имена событий, рассылаемых подписчикам сессии
const (
	EventSessionRefresh = "session:refresh"
)

// Notifier — выход в realtime-слой. Сервисы шлют только лёгкий сигнал
// «состояние сессии изменилось»; подписчики перечитывают полное
// состояние через обычный query-путь. Сигнал best-effort: его потеря
// не нарушает корректность, поэтому ошибок этот интерфейс не возвращает.
type Notifier interface {
	NotifySessionChanged(sessionID uint, event string)
}

// NoopNotifier — заглушка для тестов и для запуска без realtime-слоя
type NoopNotifier struct{}

// NotifySessionChanged ничего не делает
func (NoopNotifier) NotifySessionChanged(sessionID uint, event string) {}
