package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event — единственный формат исходящего сообщения: лёгкий сигнал
// «состояние сессии изменилось» без полезной нагрузки. Подписчики
// перечитывают состояние через HTTP.
type Event struct {
	Type      string `json:"type"`
	SessionID uint   `json:"session_id"`
}

// subscribeRequest — входящая команда клиента
type subscribeRequest struct {
	Type      string `json:"type"`
	SessionID uint   `json:"session_id"`
}

// Hub хранит подписки соединений на сессии. Состояние живёт только в
// памяти процесса и строится заново после рестарта: hub — сигнал для
// инвалидации кеша на клиенте, а не источник истины.
//
// Одно соединение может быть подписано на несколько сессий
// одновременно; подписка создаётся только явной командой subscribe.
type Hub struct {
	mu sync.RWMutex

	// sessions: ID сессии → множество подписанных клиентов
	sessions map[uint]map[*Client]bool

	// memberships: обратный индекс для снятия клиента со всех подписок
	memberships map[*Client]map[uint]bool
}

// NewHub создает новый hub
func NewHub() *Hub {
	return &Hub{
		sessions:    make(map[uint]map[*Client]bool),
		memberships: make(map[*Client]map[uint]bool),
	}
}

// Subscribe подписывает клиента на события сессии
func (h *Hub) Subscribe(client *Client, sessionID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*Client]bool)
	}
	h.sessions[sessionID][client] = true

	if h.memberships[client] == nil {
		h.memberships[client] = make(map[uint]bool)
	}
	h.memberships[client][sessionID] = true

	log.Printf("[Hub] Клиент UserID=%d (ConnID=%s) подписан на сессию %d (подписчиков: %d)",
		client.UserID, client.ConnectionID, sessionID, len(h.sessions[sessionID]))
}

// Unsubscribe снимает подписку клиента на сессию
func (h *Hub) Unsubscribe(client *Client, sessionID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client, sessionID)
}

// UnregisterClient удаляет клиента из всех наборов подписчиков и
// закрывает его канал отправки. Вызывается при разрыве соединения.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	for sessionID := range h.memberships[client] {
		h.removeLocked(client, sessionID)
	}
	delete(h.memberships, client)
	h.mu.Unlock()

	client.CloseSend()
}

// removeLocked удаляет подписку; вызывается только под h.mu
func (h *Hub) removeLocked(client *Client, sessionID uint) {
	if subscribers, ok := h.sessions[sessionID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.sessions, sessionID)
		}
	}
	if sessions, ok := h.memberships[client]; ok {
		delete(sessions, sessionID)
	}
}

// SubscriberCount возвращает число подписчиков сессии
func (h *Hub) SubscriberCount(sessionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// NotifySessionChanged рассылает событие всем подписчикам сессии.
// Отправка каждому клиенту неблокирующая: переполненный буфер означает
// мёртвое или безнадёжно отставшее соединение, такой клиент снимается
// с подписок, остальные получают событие без задержки.
// Реализует service.Notifier.
func (h *Hub) NotifySessionChanged(sessionID uint, event string) {
	payload, err := json.Marshal(Event{Type: event, SessionID: sessionID})
	if err != nil {
		log.Printf("[Hub] Ошибка сериализации события %q для сессии %d: %v", event, sessionID, err)
		return
	}

	var stalled []*Client

	h.mu.RLock()
	for client := range h.sessions[sessionID] {
		if client.IsSendClosed() {
			stalled = append(stalled, client)
			continue
		}
		select {
		case client.send <- payload:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		log.Printf("[Hub] Клиент UserID=%d (ConnID=%s) не принимает события, отключаем",
			client.UserID, client.ConnectionID)
		h.UnregisterClient(client)
	}
}

// handleMessage разбирает входящую команду клиента. Некорректные
// сообщения не фатальны: hub только сигнальный слой, поэтому они
// логируются и отбрасываются.
func (h *Hub) handleMessage(raw []byte, client *Client) {
	var req subscribeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Printf("[Hub] Некорректное сообщение от UserID=%d (ConnID=%s): %v",
			client.UserID, client.ConnectionID, err)
		return
	}

	switch req.Type {
	case "subscribe":
		if req.SessionID == 0 {
			log.Printf("[Hub] Subscribe без session_id от UserID=%d", client.UserID)
			return
		}
		h.Subscribe(client, req.SessionID)
	case "unsubscribe":
		if req.SessionID == 0 {
			return
		}
		h.Unsubscribe(client, req.SessionID)
	default:
		log.Printf("[Hub] Неизвестный тип сообщения %q от UserID=%d", req.Type, client.UserID)
	}
}
