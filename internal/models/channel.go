package models

import "encoding/json"

// ResponseKind identifies which variant a CommandResponse carries.
type ResponseKind string

const (
	ResponseSuccess        ResponseKind = "success"
	ResponseError          ResponseKind = "error"
	ResponseNotImplemented ResponseKind = "not_implemented"
)

// MethodCall is a named command received on a channel.
type MethodCall struct {
	ID        string          `json:"id,omitempty"`
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CommandResponse is the typed outcome of handling a MethodCall.
type CommandResponse struct {
	Kind     ResponseKind
	Messages MessageList
	Code     string
	Message  string
}

// Success wraps a message list. A nil list is normalized to an empty one so
// the caller always receives an array.
func Success(messages MessageList) CommandResponse {
	if messages == nil {
		messages = MessageList{}
	}
	return CommandResponse{Kind: ResponseSuccess, Messages: messages}
}

// Failure builds an error response with no detail payload.
func Failure(code, message string) CommandResponse {
	return CommandResponse{Kind: ResponseError, Code: code, Message: message}
}

// NotImplemented signals that no handler exists for the command.
func NotImplemented() CommandResponse {
	return CommandResponse{Kind: ResponseNotImplemented}
}

// ChannelError is the error member of a failure envelope.
type ChannelError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// ChannelEnvelope is the wire form of a CommandResponse.
type ChannelEnvelope struct {
	ID     string        `json:"id,omitempty"`
	Status ResponseKind  `json:"status"`
	Result MessageList   `json:"result,omitempty"`
	Error  *ChannelError `json:"error,omitempty"`
}

// Envelope converts the response to its wire form.
func (r CommandResponse) Envelope() ChannelEnvelope {
	env := ChannelEnvelope{Status: r.Kind}
	switch r.Kind {
	case ResponseSuccess:
		env.Result = r.Messages
		if env.Result == nil {
			env.Result = MessageList{}
		}
	case ResponseError:
		env.Error = &ChannelError{
			Code:    r.Code,
			Message: r.Message,
			Details: json.RawMessage("null"),
		}
	}
	return env
}

// MarshalJSON keeps an empty success result as [] instead of dropping it.
func (e ChannelEnvelope) MarshalJSON() ([]byte, error) {
	type plain ChannelEnvelope
	if e.Status == ResponseSuccess {
		result := e.Result
		if result == nil {
			result = MessageList{}
		}
		return json.Marshal(struct {
			ID     string       `json:"id,omitempty"`
			Status ResponseKind `json:"status"`
			Result MessageList  `json:"result"`
		}{ID: e.ID, Status: e.Status, Result: result})
	}
	return json.Marshal(plain(e))
}
