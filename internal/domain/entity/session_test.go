package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSession_StatusHelpers(t *testing.T) {
	// Arrange & Act & Assert
	assert.True(t, (&Session{Status: SessionStatusPending}).IsPending())
	assert.True(t, (&Session{Status: SessionStatusActive}).IsActive())
	assert.False(t, (&Session{Status: SessionStatusPending}).IsActive())

	// Терминальные статусы
	assert.True(t, (&Session{Status: SessionStatusCompleted}).IsClosed(), "completed — терминальный статус")
	assert.True(t, (&Session{Status: SessionStatusCancelled}).IsClosed(), "cancelled — терминальный статус")
	assert.False(t, (&Session{Status: SessionStatusActive}).IsClosed())
	assert.False(t, (&Session{Status: SessionStatusPending}).IsClosed())
}

func TestSession_ComputeEndsAt_WithTimeLimit(t *testing.T) {
	// Arrange
	session := &Session{
		TimeLimitSeconds: intPtr(300),
	}
	startedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Act
	endsAt := session.ComputeEndsAt(startedAt)

	// Assert
	require.NotNil(t, endsAt, "для сессии с лимитом времени дедлайн обязателен")
	assert.Equal(t, startedAt.Add(5*time.Minute), *endsAt, "дедлайн = started_at + time_limit")
}

func TestSession_ComputeEndsAt_Untimed(t *testing.T) {
	// Arrange: сессия без ограничения по времени
	session := &Session{TimeLimitSeconds: nil}

	// Act & Assert
	assert.Nil(t, session.ComputeEndsAt(time.Now()), "у сессии без лимита не должно быть дедлайна")
}

func TestSession_IsExpired(t *testing.T) {
	// Arrange
	now := time.Now()
	past := now.Add(-1 * time.Minute)
	future := now.Add(1 * time.Minute)

	// Act & Assert: активная сессия с прошедшим дедлайном
	expired := &Session{Status: SessionStatusActive, EndsAt: &past}
	assert.True(t, expired.IsExpired(now))

	// Дедлайн ещё не наступил
	running := &Session{Status: SessionStatusActive, EndsAt: &future}
	assert.False(t, running.IsExpired(now))

	// Сессия без лимита никогда не истекает
	untimed := &Session{Status: SessionStatusActive, EndsAt: nil}
	assert.False(t, untimed.IsExpired(now))

	// Не-активная сессия не считается истёкшей, даже если дедлайн в прошлом
	pending := &Session{Status: SessionStatusPending, EndsAt: &past}
	assert.False(t, pending.IsExpired(now), "pending сессия не может истечь")
}
