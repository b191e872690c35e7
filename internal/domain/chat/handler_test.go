package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/platform/auth"
)

// newHandlerServer builds an echo instance with the chat routes and a
// middleware that injects the given identity, standing in for the JWT layer.
func newHandlerServer(svc *Service, ident auth.Identity) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), &ident)))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestCreateChat_PatientCaller(t *testing.T) {
	svc, _, _ := newTestService()
	patientID, doctorID := uuid.New(), uuid.New()
	e := newHandlerServer(svc, auth.Identity{UserID: patientID.String(), Role: "patient"})

	body, _ := json.Marshal(map[string]string{"participant_id": doctorID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var chat Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if chat.PatientID != patientID || chat.DoctorID != doctorID {
		t.Fatalf("participant sides misassigned: %+v", chat)
	}
}

func TestCreateChat_DoctorCallerSwapsSides(t *testing.T) {
	svc, _, _ := newTestService()
	patientID, doctorID := uuid.New(), uuid.New()
	e := newHandlerServer(svc, auth.Identity{UserID: doctorID.String(), Role: "doctor"})

	body, _ := json.Marshal(map[string]string{"participant_id": patientID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var chat Chat
	json.Unmarshal(rec.Body.Bytes(), &chat)
	if chat.PatientID != patientID || chat.DoctorID != doctorID {
		t.Fatalf("participant sides misassigned: %+v", chat)
	}
}

func TestCreateChat_MissingParticipant(t *testing.T) {
	svc, _, _ := newTestService()
	e := newHandlerServer(svc, auth.Identity{UserID: uuid.New().String(), Role: "patient"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendMessage_NotFoundChat(t *testing.T) {
	svc, _, _ := newTestService()
	e := newHandlerServer(svc, auth.Identity{UserID: uuid.New().String(), Role: "patient"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/"+uuid.New().String()+"/messages",
		strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRoutes_RejectUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()
	e := newHandlerServer(svc, auth.Identity{UserID: uuid.New().String(), Role: "billing-bot"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
