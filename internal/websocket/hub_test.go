package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient создает клиента без реального соединения: насосы не
// запускаются, события читаются напрямую из канала send.
func testClient(hub *Hub, userID uint) *Client {
	return NewClient(hub, nil, userID)
}

func readEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case payload := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		return ev
	default:
		t.Fatal("ожидалось событие в канале send")
		return Event{}
	}
}

func TestHub_BroadcastToSubscribers(t *testing.T) {
	// Arrange
	hub := NewHub()
	first := testClient(hub, 1)
	second := testClient(hub, 2)
	other := testClient(hub, 3)

	hub.Subscribe(first, 10)
	hub.Subscribe(second, 10)
	hub.Subscribe(other, 20)

	// Act
	hub.NotifySessionChanged(10, "session:refresh")

	// Assert: событие получили только подписчики сессии 10
	ev := readEvent(t, first)
	assert.Equal(t, "session:refresh", ev.Type)
	assert.Equal(t, uint(10), ev.SessionID)

	readEvent(t, second)
	assert.Empty(t, other.send)
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	// Рассылка в пустую сессию не должна паниковать
	hub := NewHub()
	hub.NotifySessionChanged(99, "session:refresh")
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	// Arrange
	hub := NewHub()
	client := testClient(hub, 1)
	hub.Subscribe(client, 10)

	// Act
	hub.Unsubscribe(client, 10)
	hub.NotifySessionChanged(10, "session:refresh")

	// Assert
	assert.Empty(t, client.send)
	assert.Equal(t, 0, hub.SubscriberCount(10))
}

func TestHub_UnregisterRemovesFromAllSessions(t *testing.T) {
	// Arrange: клиент подписан на несколько сессий
	hub := NewHub()
	client := testClient(hub, 1)
	hub.Subscribe(client, 10)
	hub.Subscribe(client, 20)

	// Act
	hub.UnregisterClient(client)

	// Assert
	assert.Equal(t, 0, hub.SubscriberCount(10))
	assert.Equal(t, 0, hub.SubscriberCount(20))
	assert.True(t, client.IsSendClosed())
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	// Arrange: один клиент не вычитывает события, второй здоров
	hub := NewHub()
	stalled := testClient(hub, 1)
	healthy := testClient(hub, 2)
	hub.Subscribe(stalled, 10)
	hub.Subscribe(healthy, 10)

	// Act: переполняем буфер отставшего клиента
	for i := 0; i < clientBufferSize+1; i++ {
		hub.NotifySessionChanged(10, "session:refresh")
		// Здоровый клиент вычитывает каждое событие
		<-healthy.send
	}

	// Assert: отставший снят с подписки, здоровый остался
	assert.True(t, stalled.IsSendClosed())
	assert.Equal(t, 1, hub.SubscriberCount(10))

	hub.NotifySessionChanged(10, "session:refresh")
	readEvent(t, healthy)
}

func TestHub_HandleSubscribeMessage(t *testing.T) {
	// Arrange
	hub := NewHub()
	client := testClient(hub, 1)

	// Act
	hub.handleMessage([]byte(`{"type":"subscribe","session_id":10}`), client)

	// Assert
	assert.Equal(t, 1, hub.SubscriberCount(10))
}

func TestHub_HandleUnsubscribeMessage(t *testing.T) {
	// Arrange
	hub := NewHub()
	client := testClient(hub, 1)
	hub.Subscribe(client, 10)

	// Act
	hub.handleMessage([]byte(`{"type":"unsubscribe","session_id":10}`), client)

	// Assert
	assert.Equal(t, 0, hub.SubscriberCount(10))
}

func TestHub_MalformedMessagesAreSwallowed(t *testing.T) {
	// Некорректные команды не фатальны и не создают подписок
	hub := NewHub()
	client := testClient(hub, 1)

	hub.handleMessage([]byte(`не json`), client)
	hub.handleMessage([]byte(`{"type":"subscribe"}`), client)
	hub.handleMessage([]byte(`{"type":"launch_missiles","session_id":10}`), client)

	assert.Equal(t, 0, hub.SubscriberCount(10))
	assert.Equal(t, 0, hub.SubscriberCount(0))
}
