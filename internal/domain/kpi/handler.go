package kpi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brainsait/rcm/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "biller", "coder"))
	g.GET("/kpi/summary", h.Summary)
}

func (h *Handler) Summary(c echo.Context) error {
	m, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}
