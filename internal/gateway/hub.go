package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Hub composes the connection registry and room multiplexer and performs the
// actual sends for deliveries produced by the relay functions. Every relay
// operation is fire-and-forget: an unreachable target is a documented no-op,
// never an error surfaced to the caller.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	logger   zerolog.Logger
}

// NewHub creates a hub with an empty registry and room table.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		rooms:    NewRooms(),
		logger:   logger,
	}
}

// Register records the client in the registry and joins it to its personal
// room, enabling notification fan-out and call signaling without an explicit
// join. A reconnect under a new transport rebinds the registry entry; the
// superseded transport is not force-closed and drains out on its own.
func (h *Hub) Register(client *Client) {
	if prev := h.registry.Register(client); prev != nil {
		h.logger.Debug().
			Str("user_id", client.UserID).
			Time("prev_connected_at", prev.ConnectedAt).
			Msg("connection superseded")
	}
	h.rooms.Join(client, PersonalRoom(client.UserID))

	h.logger.Info().
		Str("user_id", client.UserID).
		Str("role", client.Role).
		Msg("user connected")
}

// Unregister removes the client from every room and, if it is still the
// user's current connection, from the registry. Keyed by the user id captured
// at handshake time since the transport-level disconnect has no payload.
func (h *Hub) Unregister(client *Client) {
	h.rooms.LeaveAll(client)
	h.registry.Unregister(client.UserID, client)
	client.closeSend()

	h.logger.Info().
		Str("user_id", client.UserID).
		Msg("user disconnected")
}

// IsOnline reports whether the user currently has a live connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.registry.IsOnline(userID)
}

// Resolve returns the user's current connection, or nil when offline.
func (h *Hub) Resolve(userID string) *Client {
	return h.registry.Resolve(userID)
}

// JoinChat subscribes the client to a conversation's room. Idempotent.
func (h *Hub) JoinChat(client *Client, chatID string) {
	h.rooms.Join(client, ChatRoom(chatID))
}

// LeaveChat unsubscribes the client from a conversation's room. Idempotent.
func (h *Hub) LeaveChat(client *Client, chatID string) {
	h.rooms.Leave(client, ChatRoom(chatID))
}

// RelayMessage delivers a chat message payload to every room member except
// the originator. The payload is not persisted here; the client writes it
// over REST before emitting the relay event.
func (h *Hub) RelayMessage(origin *Client, chatID string, message json.RawMessage) {
	members := h.rooms.Members(ChatRoom(chatID))
	h.deliver(MessageDeliveries(members, origin, message))
}

// RelayTyping delivers a typing indicator to the room, excluding the typist.
func (h *Hub) RelayTyping(origin *Client, chatID, userName string) {
	members := h.rooms.Members(ChatRoom(chatID))
	deliveries, err := TypingDeliveries(members, origin, chatID, userName)
	if err != nil {
		h.logger.Error().Err(err).Msg("build typing deliveries")
		return
	}
	h.deliver(deliveries)
}

// RelayStopTyping delivers a stop-typing indicator, excluding the originator.
func (h *Hub) RelayStopTyping(origin *Client, chatID string) {
	members := h.rooms.Members(ChatRoom(chatID))
	deliveries, err := StopTypingDeliveries(members, origin, chatID)
	if err != nil {
		h.logger.Error().Err(err).Msg("build stop-typing deliveries")
		return
	}
	h.deliver(deliveries)
}

// InitiateCall forwards a WebRTC offer to the target user's connection. When
// the target is offline the call silently fails to reach them; callers
// implement their own no-answer UX.
func (h *Hub) InitiateCall(targetUserID string, signal json.RawMessage, fromUserID, callerName string) {
	target := h.registry.Resolve(targetUserID)
	if target == nil {
		return
	}
	d, err := IncomingCallDelivery(target, signal, fromUserID, callerName)
	if err != nil {
		h.logger.Error().Err(err).Msg("build incoming_call delivery")
		return
	}
	h.deliver([]Delivery{d})
}

// AcceptCall forwards a WebRTC answer back to the caller's connection.
func (h *Hub) AcceptCall(targetUserID string, signal json.RawMessage) {
	target := h.registry.Resolve(targetUserID)
	if target == nil {
		return
	}
	d, err := CallAcceptedDelivery(target, signal)
	if err != nil {
		h.logger.Error().Err(err).Msg("build call_accepted delivery")
		return
	}
	h.deliver([]Delivery{d})
}

// RejectCall notifies the target connection that the call was declined.
func (h *Hub) RejectCall(targetUserID string) {
	if target := h.registry.Resolve(targetUserID); target != nil {
		h.deliver([]Delivery{CallRejectedDelivery(target)})
	}
}

// EndCall notifies the target connection that the call was hung up.
func (h *Hub) EndCall(targetUserID string) {
	if target := h.registry.Resolve(targetUserID); target != nil {
		h.deliver([]Delivery{CallEndedDelivery(target)})
	}
}

// PushNotification emits a new_notification event on the user's personal
// room. Called by REST mutation handlers after the notification is durably
// written; an offline recipient drops the push without error and discovers
// the notification on the next REST poll.
func (h *Hub) PushNotification(userID string, payload interface{}) {
	members := h.rooms.Members(PersonalRoom(userID))
	if len(members) == 0 {
		return
	}
	env, err := NewEnvelope(EventNewNotification, payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("build new_notification envelope")
		return
	}
	deliveries := make([]Delivery, 0, len(members))
	for _, m := range members {
		deliveries = append(deliveries, Delivery{Target: m, Event: env})
	}
	h.deliver(deliveries)
}

// deliver enqueues each delivery on its target's send buffer. Sends never
// block and never fail loudly: a full buffer or a target that disconnected
// after the membership snapshot drops the event, logged, since the next REST
// fetch supersedes any dropped real-time hint.
func (h *Hub) deliver(deliveries []Delivery) {
	for _, d := range deliveries {
		data, err := json.Marshal(d.Event)
		if err != nil {
			h.logger.Error().Err(err).Str("event", d.Event.Event).Msg("marshal event")
			continue
		}
		if !d.Target.enqueue(data) {
			h.logger.Warn().
				Str("user_id", d.Target.UserID).
				Str("event", d.Event.Event).
				Msg("event dropped, buffer full or connection closing")
		}
	}
}
