package claims

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brainsait/rcm/internal/platform/auth"
	"github.com/brainsait/rcm/internal/platform/clearinghouse"
	"github.com/brainsait/rcm/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "biller"))
	g.GET("/claims", h.ListClaims)
	g.GET("/claims/:id", h.GetClaim)
	g.POST("/claims/:id/status", h.PollStatus)
	g.POST("/claims/:id/reconcile", h.Reconcile)
	g.POST("/preauth", h.PreAuth)
}

func (h *Handler) GetClaim(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	claim, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "claim not found")
	}
	return c.JSON(http.StatusOK, claim)
}

func (h *Handler) ListClaims(c echo.Context) error {
	pg := pagination.FromContext(c)
	rows, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(rows, total, pg.Limit, pg.Offset))
}

func (h *Handler) PollStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	claim, err := h.svc.PollStatus(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, claim)
	case errors.Is(err, ErrClaimNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

// ReconcileRequest reports a remittance received for a claim.
type ReconcileRequest struct {
	PaymentRef  string    `json:"payment_ref"`
	PaidAmount  float64   `json:"paid_amount"`
	PaymentDate time.Time `json:"payment_date"`
}

func (h *Handler) Reconcile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ReconcileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PaymentRef == "" || req.PaidAmount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_ref and a positive paid_amount are required")
	}
	if req.PaymentDate.IsZero() {
		req.PaymentDate = time.Now().UTC()
	}

	claim, err := h.svc.Reconcile(c.Request().Context(), id, req.PaymentRef, req.PaidAmount, req.PaymentDate)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, claim)
	case errors.Is(err, ErrClaimNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) PreAuth(c echo.Context) error {
	var req clearinghouse.PreAuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EncounterID == "" || len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "encounterId and items are required")
	}
	result, err := h.svc.PreAuth(c.Request().Context(), &req)
	if err != nil {
		var rej *clearinghouse.RejectionError
		if errors.As(err, &rej) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, rej.Message)
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
