package events

// CallStartedEvent is published once the assistant reports it is listening,
// not when the local party joins the session.
type CallStartedEvent struct {
	BaseEvent
}

type CallEndedEvent struct {
	BaseEvent
}

// ErrorEvent carries a provisioning, join, leave or transport failure.
type ErrorEvent struct {
	BaseEvent
	Err error
}

func (e *ErrorEvent) Error() string {
	return e.Err.Error()
}

func (e *ErrorEvent) Unwrap() error {
	return e.Err
}

func NewCallStarted() *CallStartedEvent {
	return &CallStartedEvent{BaseEvent: NewBaseEvent(TypeCallStarted)}
}

func NewCallEnded() *CallEndedEvent {
	return &CallEndedEvent{BaseEvent: NewBaseEvent(TypeCallEnded)}
}

func NewError(err error) *ErrorEvent {
	return &ErrorEvent{BaseEvent: NewBaseEvent(TypeError), Err: err}
}
