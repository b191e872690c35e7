package gateway

import "encoding/json"

// relayToRoom builds one delivery per room member, excluding the originator.
// The sender already holds the authoritative copy from the REST response that
// preceded the relay, so it is never echoed back.
func relayToRoom(members []*Client, origin *Client, env Envelope) []Delivery {
	deliveries := make([]Delivery, 0, len(members))
	for _, m := range members {
		if m == origin {
			continue
		}
		deliveries = append(deliveries, Delivery{Target: m, Event: env})
	}
	return deliveries
}

// MessageDeliveries builds receive_message deliveries for a chat room. The
// message payload is relayed opaque and untouched.
func MessageDeliveries(members []*Client, origin *Client, message json.RawMessage) []Delivery {
	return relayToRoom(members, origin, Envelope{Event: EventReceiveMessage, Data: message})
}

// TypingDeliveries builds user_typing deliveries for a chat room.
func TypingDeliveries(members []*Client, origin *Client, chatID, userName string) ([]Delivery, error) {
	env, err := NewEnvelope(EventUserTyping, typingPayload{ChatID: chatID, UserName: userName})
	if err != nil {
		return nil, err
	}
	return relayToRoom(members, origin, env), nil
}

// StopTypingDeliveries builds user_stop_typing deliveries for a chat room.
func StopTypingDeliveries(members []*Client, origin *Client, chatID string) ([]Delivery, error) {
	env, err := NewEnvelope(EventUserStopTyping, chatRef{ChatID: chatID})
	if err != nil {
		return nil, err
	}
	return relayToRoom(members, origin, env), nil
}
