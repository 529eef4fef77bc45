package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/handler/dto"
	apperrors "github.com/Sixtor24/Spanish-Blitz-sub001/internal/pkg/errors"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/service"
)

// SessionHandler обрабатывает запросы, связанные с игровыми сессиями
type SessionHandler struct {
	sessionService *service.SessionService
	scoringService *service.ScoringService
}

// NewSessionHandler создает новый обработчик игровых сессий
func NewSessionHandler(
	sessionService *service.SessionService,
	scoringService *service.ScoringService,
) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		scoringService: scoringService,
	}
}

// CreateSession обрабатывает запрос на создание сессии
// POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.CreateSession(userID, service.CreateSessionInput{
		DeckID:           req.DeckID,
		QuestionCount:    req.QuestionCount,
		TimeLimitSeconds: req.TimeLimitSeconds,
		IsTeacherHost:    req.IsTeacherHost,
	})
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateSessionResponse{
		SessionID: session.ID,
		JoinCode:  session.JoinCode,
	})
}

// JoinSession обрабатывает подключение к сессии по join-коду
// POST /api/sessions/join
func (h *SessionHandler) JoinSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessionService.JoinByCode(req.JoinCode, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// StartSession переводит сессию в активное состояние
// POST /api/sessions/:id/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint) // Получаем из контекста
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	session, err := h.sessionService.StartSession(sessionID, userID, isAdmin(c))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StartSessionResponse{
		StartedAt: *session.StartedAt,
		EndsAt:    session.EndsAt,
	})
}

// SubmitAnswer засчитывает ответ игрока на вопрос
// POST /api/sessions/:id/answers
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint) // Получаем из контекста
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.scoringService.SubmitAnswer(sessionID, userID, req.QuestionID, *req.IsCorrect, req.Transcript)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitAnswerResponse{PointsAwarded: answer.PointsAwarded})
}

// GetState возвращает снимок состояния сессии для участника
// GET /api/sessions/:id
func (h *SessionHandler) GetState(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint) // Получаем из контекста
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	state, err := h.sessionService.GetState(sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// CancelSession отменяет сессию
// DELETE /api/sessions/:id
func (h *SessionHandler) CancelSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint) // Получаем из контекста
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessionService.CancelSession(sessionID, userID, isAdmin(c)); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session cancelled successfully"})
}

// KickPlayer исключает участника из сессии
// DELETE /api/sessions/:id/players/:playerID
func (h *SessionHandler) KickPlayer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uint) // Получаем из контекста
	playerID := c.MustGet("playerID").(uint)
	userID, ok := currentUserID(c)
	if !ok {
		h.handleSessionError(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.sessionService.KickPlayer(sessionID, playerID, userID, isAdmin(c)); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Player removed successfully"})
}

// handleSessionError обрабатывает ошибки сервисов и отправляет соответствующий HTTP ответ
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrExpired) {
		// Дедлайн сессии прошёл; завершение уже применено побочным эффектом
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in SessionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// --- Вспомогательные функции ---

// currentUserID извлекает ID аутентифицированного пользователя из контекста
func currentUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	return userID, ok
}

// isAdmin проверяет наличие административной роли в контексте
func isAdmin(c *gin.Context) bool {
	raw, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	admin, ok := raw.(bool)
	return ok && admin
}
