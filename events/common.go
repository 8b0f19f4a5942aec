package events

import (
	"encoding/json"
	"fmt"
)

// Type is the discriminator of an event.
type Type string

const (
	TypeFunctionCall       Type = "function-call"
	TypeHang               Type = "hang"
	TypeTranscript         Type = "transcript"
	TypeSpeechUpdate       Type = "speech-update"
	TypeMetadata           Type = "metadata"
	TypeConversationUpdate Type = "conversation-update"
	TypeStatusUpdate       Type = "status-update"
	TypeModelOutput        Type = "model-output"
	TypeUserInterrupted    Type = "user-interrupted"
	TypeVoiceInput         Type = "voice-input"

	// Produced locally, never sent by the backend.
	TypeCallStarted Type = "call-started"
	TypeCallEnded   Type = "call-ended"
	TypeError       Type = "error"
)

// Event is one observable occurrence during a call. The set of
// implementations is closed; switch on the concrete pointer type.
type Event interface {
	Type() Type
	isEvent()
}

type BaseEvent struct {
	EventType Type `json:"type"`
}

func (b BaseEvent) Type() Type { return b.EventType }
func (BaseEvent) isEvent()     {}

func NewBaseEvent(t Type) BaseEvent {
	return BaseEvent{EventType: t}
}

// Role is the author of a conversation message or transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		*r = Role(s)
		return nil
	}
	return fmt.Errorf("unknown role %q", s)
}

func Parse[T any](data []byte) (*T, error) {
	var x T
	if err := json.Unmarshal(data, &x); err != nil {
		return nil, err
	}
	return &x, nil
}
