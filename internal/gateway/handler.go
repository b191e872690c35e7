package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/platform/auth"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections to websockets after a successful
// handshake and routes inbound events to the hub.
type Handler struct {
	hub    *Hub
	secret []byte
	logger zerolog.Logger
}

// NewHandler creates a websocket handler bound to the given hub. The secret
// is the same HMAC secret the REST auth middleware validates with.
func NewHandler(hub *Hub, secret []byte, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, secret: secret, logger: logger}
}

// RegisterRoutes registers the websocket endpoint and the presence lookup.
// Both live outside the authenticated API group: the websocket endpoint runs
// its own handshake gate, and presence is validated here as well.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnect)
}

// RegisterPresenceRoutes registers the REST presence query on an
// authenticated group.
func (h *Handler) RegisterPresenceRoutes(g *echo.Group) {
	g.GET("/presence/:userId", h.HandlePresence)
}

// HandlePresence reports whether a user currently has a live connection.
func (h *Handler) HandlePresence(c echo.Context) error {
	userID := c.Param("userId")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"userId": userID,
		"online": h.hub.IsOnline(userID),
	})
}

// HandleConnect runs the handshake gate and, on success, upgrades the
// connection, registers the client and starts the read/write pumps. A
// missing, malformed or expired credential rejects the attempt outright; no
// partial connection is established and no events are ever dispatched.
func (h *Handler) HandleConnect(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credential")
	}

	ident, err := auth.ValidateToken(h.secret, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credential")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(ident.UserID, ident.Role, ident.Name, &gorillaConnAdapter{ws})
	h.hub.Register(client)

	go h.writePump(client)
	go h.readPump(client)

	return nil
}

// bearerToken extracts the handshake credential from the token query
// parameter or the Authorization header. Browser websocket clients cannot set
// headers, so the query parameter is the common path.
func bearerToken(c echo.Context) string {
	if tok := c.QueryParam("token"); tok != "" {
		return tok
	}
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// readPump reads events from the connection and dispatches them until the
// connection drops, then tears the client down exactly once.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.hub.Unregister(client)
		client.conn.Close()
	}()

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.logger.Debug().Str("user_id", client.UserID).Msg("malformed event ignored")
			continue
		}

		h.dispatch(client, env)
	}
}

// writePump drains the client's send buffer onto the wire.
func (h *Handler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			return
		}
	}
}

// dispatch routes one inbound event to the hub. Unknown events and events
// with unusable payloads are ignored; a dropped real-time event is superseded
// by the next REST fetch.
func (h *Handler) dispatch(client *Client, env Envelope) {
	switch env.Event {
	case EventJoinChat:
		var ref chatRef
		if json.Unmarshal(env.Data, &ref) == nil && ref.ChatID != "" {
			h.hub.JoinChat(client, ref.ChatID)
		}

	case EventLeaveChat:
		var ref chatRef
		if json.Unmarshal(env.Data, &ref) == nil && ref.ChatID != "" {
			h.hub.LeaveChat(client, ref.ChatID)
		}

	case EventSendMessage:
		var ref chatRef
		if json.Unmarshal(env.Data, &ref) == nil && ref.ChatID != "" {
			h.hub.RelayMessage(client, ref.ChatID, env.Data)
		}

	case EventTyping:
		var p typingPayload
		if json.Unmarshal(env.Data, &p) == nil && p.ChatID != "" {
			h.hub.RelayTyping(client, p.ChatID, p.UserName)
		}

	case EventStopTyping:
		var ref chatRef
		if json.Unmarshal(env.Data, &ref) == nil && ref.ChatID != "" {
			h.hub.RelayStopTyping(client, ref.ChatID)
		}

	case EventCallUser:
		var p callUserPayload
		if json.Unmarshal(env.Data, &p) == nil && p.To != "" {
			h.hub.InitiateCall(p.To, p.SignalData, p.From, p.CallerName)
		}

	case EventAnswerCall:
		var p answerCallPayload
		if json.Unmarshal(env.Data, &p) == nil && p.To != "" {
			h.hub.AcceptCall(p.To, p.SignalData)
		}

	case EventRejectCall:
		var p callTargetPayload
		if json.Unmarshal(env.Data, &p) == nil && p.To != "" {
			h.hub.RejectCall(p.To)
		}

	case EventEndCall:
		var p callTargetPayload
		if json.Unmarshal(env.Data, &p) == nil && p.To != "" {
			h.hub.EndCall(p.To)
		}

	default:
		h.logger.Debug().
			Str("user_id", client.UserID).
			Str("event", env.Event).
			Msg("unknown event ignored")
	}
}
