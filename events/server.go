package events

import (
	"errors"
	"fmt"

	"github.com/gefilte/vapi-go/tool"
)

type TranscriptType string

const (
	TranscriptPartial TranscriptType = "partial"
	TranscriptFinal   TranscriptType = "final"
)

type SpeechStatus string

const (
	SpeechStarted SpeechStatus = "started"
	SpeechStopped SpeechStatus = "stopped"
)

type TranscriptEvent struct {
	BaseEvent
	Role           Role           `json:"role"`
	TranscriptType TranscriptType `json:"transcriptType"`
	Transcript     string         `json:"transcript"`
}

func (e *TranscriptEvent) validate() error {
	if e.Role == "" {
		return errors.New("missing role")
	}
	switch e.TranscriptType {
	case TranscriptPartial, TranscriptFinal:
	default:
		return fmt.Errorf("unknown transcript type %q", e.TranscriptType)
	}
	return nil
}

// FunctionCallEvent is a direct function invocation. Parameters are free-form.
type FunctionCallEvent struct {
	BaseEvent
	Name       string
	Parameters map[string]any
}

type SpeechUpdateEvent struct {
	BaseEvent
	Status SpeechStatus `json:"status"`
	Role   Role         `json:"role"`
}

func (e *SpeechUpdateEvent) validate() error {
	switch e.Status {
	case SpeechStarted, SpeechStopped:
	default:
		return fmt.Errorf("unknown speech status %q", e.Status)
	}
	if e.Role == "" {
		return errors.New("missing role")
	}
	return nil
}

type MetadataEvent struct {
	BaseEvent
	Metadata any `json:"metadata"`
}

// Message is one entry of the conversation.
type Message struct {
	Role       Role        `json:"role"`
	Content    *string     `json:"content,omitempty"`
	ToolCalls  []tool.Call `json:"toolCalls,omitempty"`
	ToolCallID *string     `json:"toolCallId,omitempty"`
}

// ConversationUpdateEvent carries the whole conversation so far, not a delta.
type ConversationUpdateEvent struct {
	BaseEvent
	Conversation []Message `json:"conversation"`
}

func (e *ConversationUpdateEvent) validate() error {
	if e.Conversation == nil {
		return errors.New("missing conversation")
	}
	for i, m := range e.Conversation {
		if m.Role == "" {
			return fmt.Errorf("conversation[%d]: missing role", i)
		}
		for j, c := range m.ToolCalls {
			if c.ID == "" {
				return fmt.Errorf("conversation[%d].toolCalls[%d]: missing id", i, j)
			}
		}
	}
	return nil
}

// ToolCalls flattens the tool calls of every message in conversation order.
func (e *ConversationUpdateEvent) ToolCalls() []tool.Call {
	var calls []tool.Call
	for _, m := range e.Conversation {
		calls = append(calls, m.ToolCalls...)
	}
	return calls
}

type StatusUpdateEvent struct {
	BaseEvent
	Status      string  `json:"status"`
	EndedReason *string `json:"endedReason,omitempty"`
}

func (e *StatusUpdateEvent) validate() error {
	if e.Status == "" {
		return errors.New("missing status")
	}
	return nil
}

type ModelOutputEvent struct {
	BaseEvent
	Output string `json:"output"`
}

type UserInterruptedEvent struct {
	BaseEvent
}

type VoiceInputEvent struct {
	BaseEvent
	Input string `json:"input"`
}

type HangEvent struct {
	BaseEvent
}
