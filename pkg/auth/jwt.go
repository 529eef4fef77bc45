package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ticketUsage помечает короткоживущий JWT, выдаваемый только для
// аутентификации WebSocket-соединения (браузер не может передать
// Authorization-заголовок при upgrade).
const ticketUsage = "websocket_auth"

// Claims содержит поля токена, которые выдает внешний сервис
// идентификации. Сама выдача access-токенов и управление
// пользователями живут вне этого сервиса.
type Claims struct {
	UserID  uint `json:"user_id"`
	IsAdmin bool `json:"is_admin"`
	// Usage отличает WS-тикет от обычного access-токена
	Usage string `json:"usage,omitempty"`
	jwt.RegisteredClaims
}

// JWTService проверяет токены внешнего сервиса идентификации и
// выпускает WS-тикеты.
type JWTService struct {
	secret         []byte
	wsTicketExpiry time.Duration
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, wsTicketExpirySec int) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	wsExpiry := time.Duration(wsTicketExpirySec) * time.Second
	if wsExpiry <= 0 {
		wsExpiry = 60 * time.Second
	}
	return &JWTService{
		secret:         []byte(secret),
		wsTicketExpiry: wsExpiry,
	}, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

// ParseToken проверяет и расшифровывает access-токен.
// WS-тикеты этим путём не принимаются.
func (s *JWTService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errors.New("token is expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Usage == ticketUsage {
		return nil, errors.New("WS ticket cannot be used as an access token")
	}
	return claims, nil
}

// GenerateWSTicket создает короткоживущий JWT для аутентификации WebSocket
func (s *JWTService) GenerateWSTicket(userID uint, isAdmin bool) (string, error) {
	claims := &Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		Usage:   ticketUsage,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.wsTicketExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "spanish-blitz",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[JWT] Ошибка генерации WS-тикета для пользователя ID=%d: %v", userID, err)
		return "", err
	}
	return tokenString, nil
}

// ParseWSTicket проверяет JWT, используемый как WS-тикет
func (s *JWTService) ParseWSTicket(ticketString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(ticketString, claims, s.keyFunc)
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errors.New("ticket is expired")
		}
		return nil, fmt.Errorf("invalid ticket: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid ticket")
	}
	if claims.Usage != ticketUsage {
		return nil, errors.New("invalid ticket usage")
	}
	return claims, nil
}
