package vapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gefilte/vapi-go/events"
)

// newRoom serves a websocket that plays script to the client and then
// records everything the client sends until it disconnects.
func newRoom(t *testing.T, script []string, received chan<- string) string {
	t.Helper()
	upgrader := gorilla.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, msg := range script {
			if err := conn.WriteMessage(gorilla.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketTransport_Call(t *testing.T) {
	received := make(chan string, 8)
	room := newRoom(t, []string{
		`"listening"`,
		`{"type":"conversation-update","conversation":[{"role":"assistant","tool_calls":[{"id":"A","type":"function","function":{"name":"lookup","arguments":"{\"order\":\"42\"}"}}]}]}`,
		`{"type":"transcript","role":"assistant","transcriptType":"final","transcript":"One moment"}`,
	}, received)
	api := newAPIServer(t, http.StatusCreated, `{"id":"c1","webCallUrl":"`+room+`"}`)

	c, evts := newTestClient(t, api, &WebsocketTransport{DialTimeout: time.Second})

	var mu sync.Mutex
	var lookups []map[string]string
	c.RegisterTool("lookup", func(ctx context.Context, args map[string]string) error {
		mu.Lock()
		defer mu.Unlock()
		lookups = append(lookups, args)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Start(ctx, CallRequest{AssistantID: "a"})
	require.NoError(t, err)

	assert.IsType(t, &events.CallStartedEvent{}, next(t, evts))
	assert.IsType(t, &events.ConversationUpdateEvent{}, next(t, evts))
	tr := next(t, evts).(*events.TranscriptEvent)
	assert.Equal(t, "One moment", tr.Transcript)

	c.tools.Wait()
	mu.Lock()
	assert.Equal(t, []map[string]string{{"order": "42"}}, lookups)
	mu.Unlock()

	require.NoError(t, c.SetMuted(ctx, true))
	require.NoError(t, c.SetAudioDevice(ctx, AudioDeviceEarpiece))

	require.NoError(t, c.Send(ctx, events.NewAddMessage(events.RoleUser, "hello")))
	select {
	case msg := <-received:
		assert.JSONEq(t, `{"type":"add-message","message":{"role":"user","content":"hello"}}`, msg)
	case <-ctx.Done():
		t.Fatal("message not received")
	}

	require.NoError(t, c.Stop(ctx))
	assert.IsType(t, &events.CallEndedEvent{}, next(t, evts))
	requireNoEvent(t, evts)
}

func TestWebsocketTransport_RemoteHangup(t *testing.T) {
	upgrader := gorilla.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(gorilla.TextMessage, []byte(`{"type":"hang"}`))
		// hang up once the client has answered
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "ended"))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	room := "ws" + strings.TrimPrefix(srv.URL, "http")

	api := newAPIServer(t, http.StatusCreated, `{"webCallUrl":"`+room+`"}`)
	c, evts := newTestClient(t, api, &WebsocketTransport{})

	_, err := c.Start(context.Background(), CallRequest{AssistantID: "a"})
	require.NoError(t, err)

	assert.IsType(t, &events.HangEvent{}, next(t, evts))
	require.NoError(t, c.Send(context.Background(), events.NewAddMessage(events.RoleUser, "bye")))
	assert.IsType(t, &events.CallEndedEvent{}, next(t, evts))
	assert.ErrorIs(t, c.Stop(context.Background()), ErrNoActiveCall)
}

func TestWebsocketTransport_RecordingUnsupported(t *testing.T) {
	room := newRoom(t, nil, make(chan string, 1))
	api := newAPIServer(t, http.StatusCreated, `{"webCallUrl":"`+room+`","artifactPlan":{"videoRecordingEnabled":true}}`)
	c, evts := newTestClient(t, api, &WebsocketTransport{})

	_, err := c.Start(context.Background(), CallRequest{AssistantID: "a"})
	require.NoError(t, err)

	e := next(t, evts).(*events.ErrorEvent)
	assert.True(t, errors.Is(e.Err, errors.ErrUnsupported))

	require.NoError(t, c.Stop(context.Background()))
}

func TestWebsocketTransport_JoinFailure(t *testing.T) {
	api := newAPIServer(t, http.StatusCreated, `{"webCallUrl":"ws://127.0.0.1:1"}`)
	c, evts := newTestClient(t, api, &WebsocketTransport{DialTimeout: 500 * time.Millisecond})

	_, err := c.Start(context.Background(), CallRequest{AssistantID: "a"})
	require.ErrorContains(t, err, "join call")
	assert.IsType(t, &events.ErrorEvent{}, next(t, evts))
}
