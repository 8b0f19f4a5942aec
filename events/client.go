package events

import (
	"encoding/json"
	"errors"
)

const TypeAddMessage = "add-message"

// ClientMessage is an app message sent from the client to the assistant.
type ClientMessage struct {
	Type    string         `json:"type"`
	Message MessageContent `json:"message"`
}

type MessageContent struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func NewAddMessage(role Role, content string) ClientMessage {
	return ClientMessage{
		Type:    TypeAddMessage,
		Message: MessageContent{Role: role, Content: content},
	}
}

func (m ClientMessage) Encode() ([]byte, error) {
	if m.Type == "" {
		return nil, errors.New("missing message type")
	}
	return json.Marshal(m)
}

func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	return Parse[ClientMessage](data)
}

// PlayableMessage tells the backend the client can play assistant audio.
func PlayableMessage() []byte {
	return []byte(`{"message":"playable"}`)
}
