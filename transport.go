package vapi

import "context"

// AudioDevice is a preferred audio output route.
type AudioDevice string

const (
	AudioDeviceSpeakerphone AudioDevice = "speakerphone"
	AudioDeviceWired        AudioDevice = "wired"
	AudioDeviceEarpiece     AudioDevice = "earpiece"
	AudioDeviceBluetooth    AudioDevice = "bluetooth"
)

// AssistantParticipant is the user name the assistant's audio participant
// joins with.
const AssistantParticipant = "Vapi Speaker"

// Participant describes a call participant as reported by the transport.
type Participant struct {
	ID            string
	UserName      string
	Local         bool
	AudioPlayable bool
}

// TransportEvents receives session notifications. Callbacks for one session
// are delivered sequentially.
type TransportEvents struct {
	OnJoined             func()
	OnLeft               func()
	OnFailed             func(err error)
	OnAppMessage         func(data []byte, from string)
	OnParticipantUpdated func(p Participant)
}

// Transport joins real-time media sessions.
type Transport interface {
	Join(ctx context.Context, url string, events TransportEvents) (TransportSession, error)
}

// TransportSession is one joined media session.
type TransportSession interface {
	// SendAppMessage sends an opaque payload to all participants.
	SendAppMessage(ctx context.Context, data []byte) error
	Leave(ctx context.Context) error
	SetLocalAudio(ctx context.Context, enabled bool) error
	// SetRemoteAudioSubscribed changes the subscription state of remote
	// participants' audio without removing their tracks.
	SetRemoteAudioSubscribed(ctx context.Context, subscribed bool) error
	AudioDevice() AudioDevice
	SetAudioDevice(ctx context.Context, device AudioDevice) error
	StartRecording(ctx context.Context) error
}
