package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handle func(conn *gorilla.Conn)) string {
	t.Helper()
	upgrader := gorilla.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_Echo(t *testing.T) {
	url := newServer(t, func(conn *gorilla.Conn) {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan string, 1)
	closed := make(chan error, 1)
	client, err := Connect(ctx, ClientConfig{
		URL:         url,
		DialTimeout: time.Second,
		Logger:      slog.New(slog.DiscardHandler),
		OnText: func(data []byte) error {
			received <- string(data)
			return nil
		},
		OnClose: func(err error) { closed <- err },
	})
	require.NoError(t, err)

	require.NoError(t, client.WriteText(ctx, []byte(`{"type":"hang"}`)))
	select {
	case msg := <-received:
		require.Equal(t, `{"type":"hang"}`, msg)
	case <-ctx.Done():
		t.Fatal("no echo")
	}

	require.NoError(t, client.Close(ctx))
	require.NoError(t, <-closed)
	require.ErrorIs(t, client.WriteText(ctx, []byte("x")), ErrClosed)
}

func TestClient_ServerClose(t *testing.T) {
	url := newServer(t, func(conn *gorilla.Conn) {
		_ = conn.WriteMessage(gorilla.TextMessage, []byte("listening"))
		_ = conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "bye"))
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan string, 1)
	client, err := Connect(ctx, ClientConfig{
		URL:    url,
		Logger: slog.New(slog.DiscardHandler),
		OnText: func(data []byte) error {
			received <- string(data)
			return nil
		},
	})
	require.NoError(t, err)

	select {
	case <-client.Done():
	case <-ctx.Done():
		t.Fatal("connection not closed")
	}
	require.NoError(t, client.Err())
	require.Equal(t, "listening", <-received)
}

func TestClient_ProtocolError(t *testing.T) {
	url := newServer(t, func(conn *gorilla.Conn) {
		// FIN frame with a reserved opcode
		_, _ = conn.UnderlyingConn().Write([]byte{0x83, 0x00})
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	closed := make(chan error, 1)
	_, err := Connect(ctx, ClientConfig{
		URL:     url,
		Logger:  slog.New(slog.DiscardHandler),
		OnClose: func(err error) { closed <- err },
	})
	require.NoError(t, err)

	select {
	case err := <-closed:
		require.Error(t, err)
	case <-ctx.Done():
		t.Fatal("connection not closed")
	}
}

func TestConnect_DialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Connect(ctx, ClientConfig{
		URL:         "ws://127.0.0.1:1",
		DialTimeout: 500 * time.Millisecond,
		Logger:      slog.New(slog.DiscardHandler),
	})
	require.Error(t, err)
}
