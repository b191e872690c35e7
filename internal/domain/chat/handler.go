package chat

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/platform/auth"
	"github.com/telecare/telecare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("patient", "doctor"))
	g.POST("/chats", h.CreateChat)
	g.GET("/chats", h.ListChats)
	g.POST("/chats/:id/messages", h.SendMessage)
	g.GET("/chats/:id/messages", h.GetMessages)
}

type createChatRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

// CreateChat gets or lazily creates the conversation between the caller and
// the given participant. The patient/doctor sides are inferred from the
// caller's role.
func (h *Handler) CreateChat(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}

	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ParticipantID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "participant_id is required")
	}

	patientID, doctorID := callerID, req.ParticipantID
	if auth.RoleFromContext(ctx) == "doctor" {
		patientID, doctorID = req.ParticipantID, callerID
	}

	chat, err := h.svc.GetOrCreateChat(ctx, patientID, doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, chat)
}

func (h *Handler) ListChats(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListChats(ctx, callerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type sendMessageRequest struct {
	Content *string `json:"content,omitempty"`
	FileURL *string `json:"file_url,omitempty"`
}

func (h *Handler) SendMessage(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.SendMessage(ctx, chatID, callerID, req.Content, req.FileURL)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "chat not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMessages(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.GetMessages(ctx, chatID, callerID, pg.Limit, pg.Offset)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "chat not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
