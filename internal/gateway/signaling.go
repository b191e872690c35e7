package gateway

import "encoding/json"

// Call signaling deliveries target a single connection resolved through the
// registry, independent of chat rooms. The relay is stateless: it does not
// track call sessions and does not require an accept to follow an initiate.

// IncomingCallDelivery builds the incoming_call event for the callee.
func IncomingCallDelivery(target *Client, signal json.RawMessage, fromUserID, callerName string) (Delivery, error) {
	env, err := NewEnvelope(EventIncomingCall, incomingCallPayload{
		Signal:     signal,
		From:       fromUserID,
		CallerName: callerName,
	})
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Target: target, Event: env}, nil
}

// CallAcceptedDelivery builds the call_accepted event for the original caller.
func CallAcceptedDelivery(target *Client, signal json.RawMessage) (Delivery, error) {
	env, err := NewEnvelope(EventCallAccepted, callAcceptedPayload{Signal: signal})
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Target: target, Event: env}, nil
}

// CallRejectedDelivery builds the payload-less call_rejected event.
func CallRejectedDelivery(target *Client) Delivery {
	return Delivery{Target: target, Event: Envelope{Event: EventCallRejected}}
}

// CallEndedDelivery builds the payload-less call_ended event.
func CallEndedDelivery(target *Client) Delivery {
	return Delivery{Target: target, Event: Envelope{Event: EventCallEnded}}
}
