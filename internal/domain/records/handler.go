package records

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
	api.POST("/prescriptions", h.IssuePrescription, auth.RequireRole("doctor"))
	api.GET("/prescriptions", h.ListPrescriptions, auth.RequireRole("patient", "doctor", "admin"))
	api.POST("/reports", h.UploadReport, auth.RequireRole("doctor", "admin"))
	api.GET("/reports", h.ListReports, auth.RequireRole("patient", "doctor", "admin"))
}

func (h *Handler) IssuePrescription(c echo.Context) error {
	ctx := c.Request().Context()
	doctorID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}

	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.IssuePrescription(ctx, doctorID, &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UploadReport(c echo.Context) error {
	ctx := c.Request().Context()

	var rep Report
	if err := c.Bind(&rep); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Staff uploads carry no doctor attribution.
	if auth.RoleFromContext(ctx) == "doctor" {
		doctorID, err := uuid.Parse(auth.UserIDFromContext(ctx))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
		}
		rep.DoctorID = &doctorID
	}

	if err := h.svc.UploadReport(ctx, &rep); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	caller, patientID, pg, err := h.listParams(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.ListPrescriptions(c.Request().Context(), caller, patientID, pg.Limit, pg.Offset)
	if errors.Is(err, ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListReports(c echo.Context) error {
	caller, patientID, pg, err := h.listParams(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.ListReports(c.Request().Context(), caller, patientID, pg.Limit, pg.Offset)
	if errors.Is(err, ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// listParams resolves the caller and the patient whose records are requested.
// Patients default to themselves; doctors and admins must pass ?patientId=.
func (h *Handler) listParams(c echo.Context) (Caller, uuid.UUID, pagination.Params, error) {
	ctx := c.Request().Context()
	callerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Caller{}, uuid.Nil, pagination.Params{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	caller := Caller{UserID: callerID, Role: auth.RoleFromContext(ctx)}

	patientID := callerID
	if raw := c.QueryParam("patientId"); raw != "" {
		patientID, err = uuid.Parse(raw)
		if err != nil {
			return Caller{}, uuid.Nil, pagination.Params{}, echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
		}
	} else if caller.Role != "patient" {
		return Caller{}, uuid.Nil, pagination.Params{}, echo.NewHTTPError(http.StatusBadRequest, "patientId is required")
	}

	return caller, patientID, pagination.FromContext(c), nil
}
