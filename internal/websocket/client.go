package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

var ErrClosed = errors.New("websocket closed")

type ClientConfig struct {
	URL         string
	DialTimeout time.Duration
	Headers     http.Header
	OnText      func(data []byte) error
	// OnClose is called once when the connection ends. err is nil when the
	// connection was closed by either side with a close handshake.
	OnClose func(err error)
	Logger  *slog.Logger
}

type Client struct {
	conn      net.Conn
	out       chan wsutil.Message
	done      chan struct{}
	doneOnce  sync.Once
	closeErr  error
	closing   chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func (c *Client) setDone(err error) {
	c.doneOnce.Do(func() {
		c.closeErr = err
		close(c.done)
	})
}

// Done is closed when the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended. It blocks until Done is closed.
func (c *Client) Err() error {
	<-c.done
	return c.closeErr
}

func (c *Client) WriteText(ctx context.Context, data []byte) error {
	return c.Write(ctx, ws.OpText, data)
}

func (c *Client) Ping(ctx context.Context, data []byte) error {
	return c.Write(ctx, ws.OpPing, data)
}

// SendClose starts the close handshake. Only the first call sends a frame.
func (c *Client) SendClose(ctx context.Context, code ws.StatusCode, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		err = c.Write(ctx, ws.OpClose, ws.NewCloseFrameBody(code, reason))
	})
	return err
}

// Close sends a close frame and waits for the server to end the connection.
// The connection is dropped when ctx expires first.
func (c *Client) Close(ctx context.Context) error {
	if err := c.SendClose(ctx, ws.StatusNormalClosure, "closing"); err != nil && !errors.Is(err, ErrClosed) {
		_ = c.conn.Close()
		return err
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		_ = c.conn.Close()
		return fmt.Errorf("close failed: %w", ctx.Err())
	}
}

func (c *Client) Write(ctx context.Context, opcode ws.OpCode, data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.out <- wsutil.Message{OpCode: opcode, Payload: data}:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) isClosing() bool {
	select {
	case <-c.closing:
		return true
	default:
		return false
	}
}

// Connect dials the server. ctx bounds the handshake only; the connection
// lives until Close or until the server goes away.
func Connect(ctx context.Context, config ClientConfig) (*Client, error) {

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("url", config.URL),
	)

	dialTimeout := config.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}

	hsCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	d := ws.Dialer{
		Timeout: dialTimeout,
		Header:  ws.HandshakeHeaderHTTP(config.Headers),
	}
	conn, buf, hs, err := d.Dial(hsCtx, config.URL)
	if err != nil {
		return nil, err
	}
	logger.Debug("handshake complete", slog.Any("protocol", hs.Protocol))

	// frames the server sent together with the handshake response sit in buf
	var src io.Reader = conn
	if buf != nil {
		src = io.MultiReader(buf, conn)
	}

	var (
		input  = make(chan wsutil.Message, 1000)
		output = make(chan wsutil.Message, 1000)
	)

	client := &Client{
		conn:    conn,
		out:     output,
		done:    make(chan struct{}),
		closing: make(chan struct{}),
		logger:  logger,
	}

	onTextFunc := config.OnText
	if onTextFunc == nil {
		onTextFunc = func(data []byte) error {
			return nil
		}
	}
	onCloseFunc := config.OnClose
	if onCloseFunc == nil {
		onCloseFunc = func(err error) {}
	}

	// websocket -> input channel
	var readErr error
	go func() {
		defer close(input)
		for {
			messages, err := wsutil.ReadServerMessage(src, nil)
			if err != nil {
				if !errors.Is(err, io.EOF) && !client.isClosing() {
					readErr = err
				}
				return
			}
			for _, msg := range messages {
				input <- msg
			}
		}
	}()

	// output channel -> websocket
	go func() {
		for {
			select {
			case <-client.done:
				return
			case msg := <-output:
				if err := wsutil.WriteClientMessage(conn, msg.OpCode, msg.Payload); err != nil {
					logger.Error("message write failed", slog.Any("err", err))
					_ = conn.Close()
					return
				}
			}
		}
	}()

	// input channel processing
	go func() {
		defer func() {
			_ = conn.Close()
			client.setDone(readErr)
			onCloseFunc(readErr)
		}()

		for msg := range input {
			switch msg.OpCode {
			case ws.OpPing:
				_ = client.Write(context.Background(), ws.OpPong, msg.Payload)
			case ws.OpPong:
			case ws.OpClose:
				code, reason := ws.ParseCloseFrameData(msg.Payload)
				logger.Debug("rcv: close", slog.Int("code", int(code)), slog.String("reason", reason))
				_ = client.SendClose(context.Background(), ws.StatusNormalClosure, "")
			case ws.OpText:
				logger.Debug("rcv: text", slog.Int("len", len(msg.Payload)))
				if err := onTextFunc(msg.Payload); err != nil {
					logger.Error("text message handler failed", slog.Any("err", err))
				}
			case ws.OpBinary:
				logger.Debug("rcv: binary ignored", slog.Int("len", len(msg.Payload)))
			}
		}
	}()

	return client, nil
}
