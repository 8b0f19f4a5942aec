package vapi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gefilte/vapi-go/events"
	"github.com/gefilte/vapi-go/tool"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// call is the state of one session, from Start until it leaves or fails.
type call struct {
	id             string
	session        TransportSession
	muted          bool
	assistantMuted bool
	playable       bool
	playableSent   bool
	ended          bool
}

type Client struct {
	config *clientConfig
	api    *apiClient
	tools  *tool.Router
	stream *stream
	log    *payloadLog
	logger *slog.Logger

	mu      sync.Mutex
	call    *call
	onEvent func(e events.Event)
}

func New(opts ...ClientOption) *Client {
	config := &clientConfig{}
	withDefaults()(config)
	WithOptions(opts...)(config)

	if wt, ok := config.transport.(*WebsocketTransport); ok && wt.Logger == nil {
		wt.Logger = config.logger
	}

	return &Client{
		config: config,
		api: &apiClient{
			baseURL:    config.baseURL,
			publicKey:  config.publicKey,
			httpClient: config.httpClient,
			logger:     config.logger,
		},
		tools:  tool.NewRouter(config.logger),
		stream: newStream(config.eventBuffer),
		log:    newPayloadLog(config.payloadLogSize),
		logger: config.logger,
	}
}

// OnEvent sets a callback that sees every event before subscribers do. It
// runs on the goroutine that produced the event and must not block.
func (c *Client) OnEvent(h func(e events.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = h
}

// Subscribe returns a channel of all events in the order they were produced
// and a function that ends the subscription and closes the channel.
func (c *Client) Subscribe() (<-chan events.Event, func()) {
	return c.stream.Subscribe()
}

// RegisterTool binds a handler to a tool name. The latest registration for a
// name wins. Tool calls that arrived before registration are not replayed.
func (c *Client) RegisterTool(name string, h tool.Handler) {
	c.tools.Register(name, h)
}

// PayloadLog returns the raw app messages received during the current or
// last failed call.
func (c *Client) PayloadLog() []string {
	return c.log.Entries()
}

// Start creates a web call and joins it. The CallStartedEvent is published
// later, once the assistant is listening.
func (c *Client) Start(ctx context.Context, req CallRequest) (*WebCallResponse, error) {
	if err := c.config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	id, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("call id: %w", err)
	}
	cl := &call{id: id}
	logger := c.logger.With(slog.String("call", cl.id))

	c.mu.Lock()
	if c.call != nil {
		c.mu.Unlock()
		return nil, ErrCallInProgress
	}
	c.call = cl
	c.mu.Unlock()

	resp, err := c.api.createWebCall(ctx, req)
	if err != nil {
		c.abort(cl, err)
		return nil, err
	}
	logger.Debug("web call created", slog.String("id", resp.ID))

	c.log.Reset()
	c.tools.Reset()

	session, err := c.config.transport.Join(ctx, resp.WebCallURL, c.transportEvents(cl, logger))
	if err != nil {
		err = fmt.Errorf("join call: %w", err)
		c.abort(cl, err)
		return nil, err
	}

	c.mu.Lock()
	if cl.ended {
		c.mu.Unlock()
		return nil, fmt.Errorf("join call: call ended while joining: %w", ErrNoActiveCall)
	}
	cl.session = session
	c.mu.Unlock()

	c.sendPlayable(cl, logger)

	if resp.videoRecordingEnabled() {
		if err := session.StartRecording(ctx); err != nil {
			err = fmt.Errorf("start recording: %w", err)
			logger.Warn("failed to start recording", slog.Any("err", err))
			c.publish(events.NewError(err))
		}
	}

	return resp, nil
}

// Stop leaves the active call.
func (c *Client) Stop(ctx context.Context) error {
	cl, session, err := c.active()
	if err != nil {
		return err
	}

	if err := session.Leave(ctx); err != nil {
		err = fmt.Errorf("leave call: %w", err)
		c.publish(events.NewError(err))
		return err
	}

	c.finish(cl, events.NewCallEnded(), true)
	return nil
}

// Send delivers a message to the assistant.
func (c *Client) Send(ctx context.Context, msg events.ClientMessage) error {
	_, session, err := c.active()
	if err != nil {
		return err
	}

	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	if err := session.SendAppMessage(ctx, data); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SetMuted mutes or unmutes the local microphone.
func (c *Client) SetMuted(ctx context.Context, muted bool) error {
	cl, session, err := c.active()
	if err != nil {
		return err
	}

	if err := session.SetLocalAudio(ctx, !muted); err != nil {
		return fmt.Errorf("set muted: %w", err)
	}

	c.mu.Lock()
	cl.muted = muted
	c.mu.Unlock()
	return nil
}

func (c *Client) IsMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.call != nil && c.call.muted
}

// SetAssistantMuted stops or resumes receiving the assistant's audio.
func (c *Client) SetAssistantMuted(ctx context.Context, muted bool) error {
	cl, session, err := c.active()
	if err != nil {
		return err
	}

	if err := session.SetRemoteAudioSubscribed(ctx, !muted); err != nil {
		return fmt.Errorf("set assistant muted: %w", err)
	}

	c.mu.Lock()
	cl.assistantMuted = muted
	c.mu.Unlock()
	return nil
}

func (c *Client) IsAssistantMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.call != nil && c.call.assistantMuted
}

// SetAudioDevice switches the preferred audio output. Selecting the current
// device does nothing.
func (c *Client) SetAudioDevice(ctx context.Context, device AudioDevice) error {
	_, session, err := c.active()
	if err != nil {
		return err
	}

	if session.AudioDevice() == device {
		return nil
	}

	if err := session.SetAudioDevice(ctx, device); err != nil {
		return fmt.Errorf("set audio device: %w", err)
	}
	return nil
}

func (c *Client) AudioDevice() (AudioDevice, error) {
	_, session, err := c.active()
	if err != nil {
		return "", err
	}
	return session.AudioDevice(), nil
}

// active returns the joined call. A call that is still being set up is not
// active.
func (c *Client) active() (*call, TransportSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.call == nil || c.call.session == nil {
		return nil, nil, ErrNoActiveCall
	}
	return c.call, c.call.session, nil
}

func (c *Client) transportEvents(cl *call, logger *slog.Logger) TransportEvents {
	return TransportEvents{
		OnJoined: func() {
			logger.Debug("joined call")
		},
		OnLeft: func() {
			logger.Debug("left call")
			c.finish(cl, events.NewCallEnded(), true)
		},
		OnFailed: func(err error) {
			logger.Error("call failed", slog.Any("err", err))
			c.finish(cl, events.NewError(fmt.Errorf("call failed: %w", err)), false)
		},
		OnAppMessage: func(data []byte, from string) {
			c.handleAppMessage(cl, logger, data)
		},
		OnParticipantUpdated: func(p Participant) {
			if p.Local || p.UserName != AssistantParticipant || !p.AudioPlayable {
				return
			}
			c.mu.Lock()
			cl.playable = true
			c.mu.Unlock()
			c.sendPlayable(cl, logger)
		},
	}
}

func (c *Client) handleAppMessage(cl *call, logger *slog.Logger, data []byte) {
	c.mu.Lock()
	ended := cl.ended
	c.mu.Unlock()
	if ended {
		return
	}

	c.log.Append(data)

	evt, err := events.Decode(data)
	if err != nil {
		logger.Warn("failed to decode app message", slog.Any("err", err))
		return
	}

	if cu, ok := evt.(*events.ConversationUpdateEvent); ok {
		if ids := c.tools.Dispatch(context.Background(), cu.ToolCalls()); len(ids) > 0 {
			logger.Debug("tool calls dispatched", slog.Any("ids", ids))
		}
	}

	c.publish(evt)
}

// sendPlayable tells the backend once per call that assistant audio can be
// played, as soon as the assistant's audio is playable and the call is joined.
func (c *Client) sendPlayable(cl *call, logger *slog.Logger) {
	c.mu.Lock()
	if cl.ended || cl.session == nil || !cl.playable || cl.playableSent {
		c.mu.Unlock()
		return
	}
	cl.playableSent = true
	session := cl.session
	c.mu.Unlock()

	if err := session.SendAppMessage(context.Background(), events.PlayableMessage()); err != nil {
		logger.Warn("failed to send playable message", slog.Any("err", err))
	}
}

// abort ends a call that never became active.
func (c *Client) abort(cl *call, err error) {
	c.mu.Lock()
	cl.ended = true
	if c.call == cl {
		c.call = nil
	}
	c.mu.Unlock()

	c.publish(events.NewError(err))
}

// finish ends cl once and publishes evt. Seen tool call ids are forgotten;
// the payload log is kept after a failure for diagnostics.
func (c *Client) finish(cl *call, evt events.Event, clearLog bool) {
	c.mu.Lock()
	if cl.ended {
		c.mu.Unlock()
		return
	}
	cl.ended = true
	if c.call == cl {
		c.call = nil
	}
	c.mu.Unlock()

	c.tools.Reset()
	if clearLog {
		c.log.Reset()
	}

	c.publish(evt)
}

func (c *Client) publish(evt events.Event) {
	c.mu.Lock()
	h := c.onEvent
	c.mu.Unlock()

	c.logger.Debug("event", slog.String("type", string(evt.Type())))

	if h != nil {
		h(evt)
	}
	c.stream.Publish(evt)
}
