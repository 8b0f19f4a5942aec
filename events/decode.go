package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ListeningSentinel is the bare payload the assistant sends once it is ready.
const ListeningSentinel = "listening"

var (
	ErrDecode      = errors.New("decode app message")
	ErrMalformed   = fmt.Errorf("%w: malformed payload", ErrDecode)
	ErrMissingType = fmt.Errorf("%w: missing type", ErrDecode)
	ErrUnknownType = fmt.Errorf("%w: unknown type", ErrDecode)
)

type validator interface {
	validate() error
}

// Decode turns one inbound app message into an Event. Every returned error
// wraps ErrDecode.
func Decode(data []byte) (Event, error) {
	repaired, text, ok := Unescape(data)
	if ok && text == ListeningSentinel {
		return NewCallStarted(), nil
	}

	// A payload that was never string encoded but carries escaped quotes is
	// broken by the repair; fall back to the bytes as received.
	if !json.Valid(repaired) && json.Valid(data) {
		repaired = data
	}

	var tree any
	if err := json.Unmarshal(repaired, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	rawType, ok := obj["type"]
	if !ok {
		return nil, ErrMissingType
	}
	typ, ok := rawType.(string)
	if !ok {
		return nil, fmt.Errorf("%w: type is %T", ErrMissingType, rawType)
	}

	switch Type(typ) {
	case TypeFunctionCall:
		return decodeFunctionCall(obj)
	case TypeHang:
		return &HangEvent{BaseEvent: NewBaseEvent(TypeHang)}, nil
	case TypeUserInterrupted:
		return &UserInterruptedEvent{BaseEvent: NewBaseEvent(TypeUserInterrupted)}, nil
	case TypeTranscript:
		return decodeAs[TranscriptEvent](obj)
	case TypeSpeechUpdate:
		return decodeAs[SpeechUpdateEvent](obj)
	case TypeMetadata:
		return decodeAs[MetadataEvent](obj)
	case TypeConversationUpdate:
		return decodeAs[ConversationUpdateEvent](obj)
	case TypeStatusUpdate:
		return decodeAs[StatusUpdateEvent](obj)
	case TypeModelOutput:
		return decodeAs[ModelOutputEvent](obj)
	case TypeVoiceInput:
		return decodeAs[VoiceInputEvent](obj)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

// decodeAs decodes obj against the schema of T after key normalization.
func decodeAs[T any, PT interface {
	*T
	Event
}](obj map[string]any) (Event, error) {
	data, err := json.Marshal(normalizeKeys(obj))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	evt, err := Parse[T](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	pt := PT(evt)
	if v, ok := any(pt).(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, pt.Type(), err)
		}
	}
	return pt, nil
}

func decodeFunctionCall(obj map[string]any) (Event, error) {
	fc, ok := obj["functionCall"].(map[string]any)
	if !ok {
		fc, ok = obj["function_call"].(map[string]any)
	}
	if !ok {
		return nil, fmt.Errorf("%w: function-call: missing functionCall object", ErrMalformed)
	}

	name, ok := fc["name"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: function-call: missing name", ErrMalformed)
	}
	params, ok := fc["parameters"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: function-call: missing parameters", ErrMalformed)
	}

	return &FunctionCallEvent{
		BaseEvent:  NewBaseEvent(TypeFunctionCall),
		Name:       name,
		Parameters: params,
	}, nil
}
