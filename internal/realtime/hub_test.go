package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return Message{}
}

func TestHubReconnectAndOrdering(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	clientA := hub.NewClient(uuid.New())
	hub.AddChannel(clientA, ChannelCRM)

	hub.Broadcast(Message{Channel: ChannelCRM, Event: EventLeadCreated, Data: map[string]any{"id": 1}})
	hub.Broadcast(Message{Channel: ChannelCRM, Event: EventLeadUpdated, Data: map[string]any{"id": 1}})

	assert.Equal(t, EventLeadCreated, recvMessage(t, clientA.Outbound, time.Second).Event)
	assert.Equal(t, EventLeadUpdated, recvMessage(t, clientA.Outbound, time.Second).Event)

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	_, ok := <-clientA.Outbound
	assert.False(t, ok, "outbound closed after disconnect")
	_, found := hub.Client(clientA.ID)
	assert.False(t, found)
	assert.Equal(t, 0, hub.Subscribers(ChannelCRM))

	clientB := hub.NewClient(uuid.New())
	hub.AddChannel(clientB, ChannelCRM)
	hub.Broadcast(Message{Channel: ChannelCRM, Event: EventLeadDeleted})
	assert.Equal(t, EventLeadDeleted, recvMessage(t, clientB.Outbound, time.Second).Event)
	hub.CloseClient(clientB)
}

func TestHubChannelIsolation(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	crm := hub.NewClient(uuid.New())
	pub := hub.NewClient(uuid.Nil)
	hub.AddChannel(crm, ChannelCRM)
	hub.AddChannel(pub, ChannelPublic)
	defer hub.CloseClient(crm)
	defer hub.CloseClient(pub)

	hub.Broadcast(Message{Channel: ChannelPublic, Event: EventPropertyChanged})
	assert.Equal(t, EventPropertyChanged, recvMessage(t, pub.Outbound, time.Second).Event)
	select {
	case msg := <-crm.Outbound:
		t.Fatalf("crm client received public message %v", msg.Event)
	default:
	}

	hub.RemoveChannel(pub, ChannelPublic)
	hub.Broadcast(Message{Channel: ChannelPublic, Event: EventPropertyChanged})
	assert.Len(t, pub.Outbound, 0)
}

func TestHubDropsForSlowConsumers(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	slow := hub.NewClient(uuid.New())
	hub.AddChannel(slow, ChannelCRM)
	defer hub.CloseClient(slow)
	var dropped atomic.Int64
	hub.OnDrop(func(Message) { dropped.Add(1) })

	done := make(chan struct{})
	go func() {
		for i := 0; i < outboundBuffer*3; i++ {
			hub.Broadcast(Message{Channel: ChannelCRM, Event: EventLeadUpdated})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked on a slow consumer")
	}
	assert.Len(t, slow.Outbound, outboundBuffer)
	assert.Equal(t, int64(outboundBuffer*2), dropped.Load())
}

func TestHubServeHTTPStreamsEvents(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, ChannelCRM)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/realtime/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	served := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(served)
	}()

	hub.Broadcast(Message{Channel: ChannelCRM, Event: EventLeadCreated, Data: map[string]any{"nome": "Maria"}})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-served
	hub.CloseClient(client)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(body, "event: Connected"), body)
	assert.True(t, strings.Contains(body, "event: LeadCreated"), body)
	assert.True(t, strings.Contains(body, `"nome":"Maria"`), body)
}

func TestClientOwnership(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	owner := uuid.New()

	c := hub.NewClient(owner)
	assert.True(t, c.OwnedBy(owner))
	assert.False(t, c.OwnedBy(uuid.New()))

	anon := hub.NewClient(uuid.Nil)
	assert.False(t, anon.OwnedBy(uuid.Nil))

	hub.CloseClient(c)
	hub.CloseClient(anon)
	select {
	case <-c.Done():
	default:
		t.Fatal("closed client should report done")
	}
	_, ok := hub.Client(c.ID)
	assert.False(t, ok)
}

func TestHubAddChannelAfterCloseIsIgnored(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	client := hub.NewClient(uuid.New())
	hub.CloseClient(client)

	assert.False(t, hub.AddChannel(client, ChannelCRM))
	assert.Equal(t, 0, hub.Subscribers(ChannelCRM))
	assert.Empty(t, client.Channels)
	assert.NotPanics(t, func() {
		hub.Broadcast(Message{Channel: ChannelCRM, Event: EventLeadCreated, Data: map[string]any{"id": 1}})
	})

	live := hub.NewClient(uuid.New())
	assert.True(t, hub.AddChannel(live, ChannelCRM))
	assert.Equal(t, 1, hub.Subscribers(ChannelCRM))
	hub.CloseClient(live)
}
