// Package gateway implements the real-time messaging and presence layer: a
// websocket hub that multiplexes chat delivery, typing indicators, online
// presence and peer-to-peer call signaling across connected users. The
// gateway never persists anything; chat history and notifications are written
// over REST and the socket is a low-latency delivery layer on top.
package gateway

import "encoding/json"

// Client-to-server event names.
const (
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
	EventCallUser    = "call_user"
	EventAnswerCall  = "answer_call"
	EventRejectCall  = "reject_call"
	EventEndCall     = "end_call"
)

// Server-to-client event names.
const (
	EventReceiveMessage  = "receive_message"
	EventUserTyping      = "user_typing"
	EventUserStopTyping  = "user_stop_typing"
	EventIncomingCall    = "incoming_call"
	EventCallAccepted    = "call_accepted"
	EventCallRejected    = "call_rejected"
	EventCallEnded       = "call_ended"
	EventNewNotification = "new_notification"
)

// Envelope is the wire format for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Delivery pairs an outbound event with the connection it should be sent to.
// Relay operations produce deliveries; the hub performs the actual sends, so
// the relay logic stays testable without a live transport.
type Delivery struct {
	Target *Client
	Event  Envelope
}

// NewEnvelope marshals data into an envelope for the given event. A nil data
// value produces an envelope with no payload (call_rejected, call_ended).
func NewEnvelope(event string, data interface{}) (Envelope, error) {
	env := Envelope{Event: event}
	if data == nil {
		return env, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	env.Data = raw
	return env, nil
}

// Inbound payload shapes. send_message data is deliberately kept opaque: the
// gateway extracts chatId for routing and relays the rest untouched, so the
// delivered content matches whatever the client persisted over REST.
type chatRef struct {
	ChatID string `json:"chatId"`
}

type typingPayload struct {
	ChatID   string `json:"chatId"`
	UserName string `json:"userName"`
}

type callUserPayload struct {
	To         string          `json:"to"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
	CallerName string          `json:"callerName"`
}

type answerCallPayload struct {
	To         string          `json:"to"`
	SignalData json.RawMessage `json:"signalData"`
}

type callTargetPayload struct {
	To string `json:"to"`
}

// Outbound payload shapes.
type incomingCallPayload struct {
	Signal     json.RawMessage `json:"signal"`
	From       string          `json:"from"`
	CallerName string          `json:"callerName"`
}

type callAcceptedPayload struct {
	Signal json.RawMessage `json:"signal"`
}
