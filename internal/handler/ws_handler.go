package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/handler/dto"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/websocket"
	"github.com/Sixtor24/Spanish-Blitz-sub001/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения
type WSHandler struct {
	hub        *websocket.Hub
	jwtService *auth.JWTService
	// allowedOrigins синхронизирован с CORS-конфигурацией в main.go
	allowedOrigins []string
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(hub *websocket.Hub, jwtService *auth.JWTService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:            hub,
		jwtService:     jwtService,
		allowedOrigins: allowedOrigins,
	}
}

func (h *WSHandler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Пустой Origin — не браузерный клиент (мобильное приложение, curl)
			if origin == "" {
				return true
			}

			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}

			log.Printf("[WSHandler] Отклонён неразрешённый origin: %s", origin)
			return false
		},
	}
}

// GenerateTicket выдает короткоживущий тикет для WebSocket-подключения.
// Браузер не может передать Authorization-заголовок при upgrade,
// поэтому соединение аутентифицируется одноразовым тикетом в query.
// POST /api/ws/ticket
func (h *WSHandler) GenerateTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthorized.Error()})
		return
	}

	ticket, err := h.jwtService.GenerateWSTicket(userID, isAdmin(c))
	if err != nil {
		log.Printf("[WSHandler] Ошибка генерации тикета для пользователя ID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate ticket"})
		return
	}

	c.JSON(http.StatusOK, dto.WSTicketResponse{Ticket: ticket})
}

// HandleConnection обрабатывает входящее WebSocket соединение
// GET /ws?ticket=...
func (h *WSHandler) HandleConnection(c *gin.Context) {
	ticket := c.Query("ticket")
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication ticket parameter"})
		return
	}

	claims, err := h.jwtService.ParseWSTicket(ticket)
	if err != nil {
		log.Printf("[WSHandler] Недействительный или истёкший тикет: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired ticket"})
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам пишет ответ при ошибке
		log.Printf("[WSHandler] Ошибка upgrade для пользователя ID=%d: %v", claims.UserID, err)
		return
	}

	log.Printf("[WSHandler] Соединение установлено для пользователя ID=%d", claims.UserID)

	client := websocket.NewClient(h.hub, conn, claims.UserID)
	client.StartPumps()
}
