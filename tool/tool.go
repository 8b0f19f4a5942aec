package tool

import "context"

// CallTypeFunction is the only call type the backend currently emits.
const CallTypeFunction = "function"

// Call is a tool call embedded in a conversation message.
type Call struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function to run. Arguments holds a JSON document
// serialized as a string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Handler runs a tool on behalf of the assistant. The context is never
// cancelled when the call ends.
type Handler func(ctx context.Context, args map[string]string) error
