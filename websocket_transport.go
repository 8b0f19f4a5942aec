package vapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gefilte/vapi-go/internal/websocket"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// WebsocketTransport carries app messages as websocket text frames. It does
// not carry media: audio state is tracked locally and recording is not
// supported.
type WebsocketTransport struct {
	Headers     http.Header
	DialTimeout time.Duration
	Logger      *slog.Logger
}

func (t *WebsocketTransport) Join(ctx context.Context, url string, ev TransportEvents) (TransportSession, error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	id, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("participant id: %w", err)
	}

	s := &websocketSession{
		id:          id,
		localAudio:  true,
		remoteAudio: true,
		device:      AudioDeviceSpeakerphone,
	}

	client, err := websocket.Connect(ctx, websocket.ClientConfig{
		URL:         url,
		DialTimeout: t.DialTimeout,
		Headers:     t.Headers,
		Logger:      logger.With(slog.String("participant", id)),
		OnText: func(data []byte) error {
			if ev.OnAppMessage != nil {
				ev.OnAppMessage(data, "")
			}
			return nil
		},
		OnClose: func(err error) {
			switch {
			case err != nil && ev.OnFailed != nil:
				ev.OnFailed(err)
			case err == nil && ev.OnLeft != nil:
				ev.OnLeft()
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.client = client

	if ev.OnJoined != nil {
		ev.OnJoined()
	}
	if ev.OnParticipantUpdated != nil {
		ev.OnParticipantUpdated(Participant{ID: id, Local: true, AudioPlayable: true})
	}

	return s, nil
}

type websocketSession struct {
	id     string
	client *websocket.Client

	mu          sync.Mutex
	localAudio  bool
	remoteAudio bool
	device      AudioDevice
}

func (s *websocketSession) SendAppMessage(ctx context.Context, data []byte) error {
	return s.client.WriteText(ctx, data)
}

func (s *websocketSession) Leave(ctx context.Context) error {
	return s.client.Close(ctx)
}

func (s *websocketSession) SetLocalAudio(ctx context.Context, enabled bool) error {
	if err := s.alive(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localAudio = enabled
	return nil
}

func (s *websocketSession) SetRemoteAudioSubscribed(ctx context.Context, subscribed bool) error {
	if err := s.alive(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteAudio = subscribed
	return nil
}

func (s *websocketSession) AudioDevice() AudioDevice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

func (s *websocketSession) SetAudioDevice(ctx context.Context, device AudioDevice) error {
	if err := s.alive(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
	return nil
}

func (s *websocketSession) StartRecording(ctx context.Context) error {
	return fmt.Errorf("websocket transport recording: %w", errors.ErrUnsupported)
}

func (s *websocketSession) alive() error {
	select {
	case <-s.client.Done():
		return websocket.ErrClosed
	default:
		return nil
	}
}
