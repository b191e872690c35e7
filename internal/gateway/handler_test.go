package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/platform/auth"
)

var handlerTestSecret = []byte("gateway-test-secret")

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	h := NewHandler(hub, handlerTestSecret, zerolog.Nop())

	e := echo.New()
	h.RegisterRoutes(e)
	h.RegisterPresenceRoutes(e.Group("/api/v1"))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server, token string) string {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func mintGatewayToken(t *testing.T, userID, role, name string, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.SignToken(handlerTestSecret, auth.Identity{UserID: userID, Role: role, Name: name}, ttl)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	return tok
}

func dial(t *testing.T, srv *httptest.Server, userID, role, name string) *gorillawebsocket.Conn {
	t.Helper()
	tok := mintGatewayToken(t, userID, role, name, time.Hour)
	conn, _, err := gorillawebsocket.DefaultDialer.Dial(wsURL(srv, tok), nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *gorillawebsocket.Conn, event string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := conn.WriteJSON(Envelope{Event: event, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func readEvent(t *testing.T, conn *gorillawebsocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return env
}

func waitOnline(t *testing.T, hub *Hub, userID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.IsOnline(userID) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("user %s never came online", userID)
}

func TestHandshake_RejectsMissingToken(t *testing.T) {
	srv, hub := newTestServer(t)

	_, resp, err := gorillawebsocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	if err == nil {
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response, got %+v", resp)
	}
	if hub.registry.Count() != 0 {
		t.Fatal("no connection must be registered after a rejected handshake")
	}
}

func TestHandshake_RejectsInvalidAndExpiredTokens(t *testing.T) {
	srv, hub := newTestServer(t)

	expired := mintGatewayToken(t, "user-a", "patient", "A", -time.Minute)
	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"expired": expired,
	} {
		t.Run(name, func(t *testing.T) {
			_, resp, err := gorillawebsocket.DefaultDialer.Dial(wsURL(srv, token), nil)
			if err == nil {
				t.Fatal("expected handshake to fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401 response, got %+v", resp)
			}
		})
	}
	if hub.registry.Count() != 0 {
		t.Fatal("no connection must be registered after rejected handshakes")
	}
}

func TestHandshake_AcceptsValidToken(t *testing.T) {
	srv, hub := newTestServer(t)

	dial(t, srv, "user-a", "doctor", "Dr. A")
	waitOnline(t, hub, "user-a")
}

func TestGateway_MessageRoundTrip(t *testing.T) {
	srv, hub := newTestServer(t)

	doctor := dial(t, srv, "doctor-a", "doctor", "Dr. A")
	patient := dial(t, srv, "patient-b", "patient", "B")
	waitOnline(t, hub, "doctor-a")
	waitOnline(t, hub, "patient-b")

	send(t, doctor, EventJoinChat, map[string]string{"chatId": "42"})
	send(t, patient, EventJoinChat, map[string]string{"chatId": "42"})

	// Joins are processed by each connection's read pump; wait until both
	// are room members before relaying.
	deadline := time.Now().Add(2 * time.Second)
	for hub.rooms.MemberCount(ChatRoom("42")) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.rooms.MemberCount(ChatRoom("42")) != 2 {
		t.Fatal("expected both participants in chat_42")
	}

	send(t, patient, EventSendMessage, map[string]string{"chatId": "42", "content": "hello"})

	env := readEvent(t, doctor)
	if env.Event != EventReceiveMessage {
		t.Fatalf("expected %s, got %s", EventReceiveMessage, env.Event)
	}
	var msg struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("unmarshal relayed message: %v", err)
	}
	if msg.Content != "hello" {
		t.Fatalf("expected content hello, got %q", msg.Content)
	}

	// Typing indicator flows doctor -> patient and is not echoed.
	send(t, doctor, EventTyping, map[string]string{"chatId": "42", "userName": "Dr. A"})
	env = readEvent(t, patient)
	if env.Event != EventUserTyping {
		t.Fatalf("expected %s, got %s", EventUserTyping, env.Event)
	}
}

func TestGateway_DisconnectClearsPresence(t *testing.T) {
	srv, hub := newTestServer(t)

	conn := dial(t, srv, "user-a", "patient", "A")
	waitOnline(t, hub, "user-a")

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.IsOnline("user-a") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.IsOnline("user-a") {
		t.Fatal("expected user-a offline after disconnect")
	}
}

func TestPresenceEndpoint(t *testing.T) {
	srv, hub := newTestServer(t)

	dial(t, srv, "user-a", "patient", "A")
	waitOnline(t, hub, "user-a")

	resp, err := http.Get(srv.URL + "/api/v1/presence/user-a")
	if err != nil {
		t.Fatalf("presence request: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		UserID string `json:"userId"`
		Online bool   `json:"online"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode presence response: %v", err)
	}
	if !body.Online {
		t.Fatal("expected user-a to be reported online")
	}
}
