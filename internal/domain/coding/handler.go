package coding

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brainsait/rcm/internal/platform/auth"
	"github.com/brainsait/rcm/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "coder"))
	g.POST("/coding-jobs", h.IngestNote)
	g.GET("/coding-jobs", h.ListJobs)
	g.GET("/coding-jobs/:id", h.GetJob)
	g.POST("/coding-jobs/:id/accept", h.AcceptJob)
	g.POST("/coding-jobs/:id/submit", h.ResubmitJob)
	g.GET("/worklist", h.Worklist)
}

// IngestRequest is the ingestion API payload.
type IngestRequest struct {
	ClinicalNote  string        `json:"clinical_note"`
	EncounterMeta EncounterMeta `json:"encounter_meta"`
}

func (h *Handler) IngestNote(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	job, err := h.svc.Ingest(c.Request().Context(), req.ClinicalNote, req.EncounterMeta)
	if err != nil {
		if IsValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, job)
}

func (h *Handler) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	job, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "coding job not found")
	}
	return c.JSON(http.StatusOK, job)
}

func (h *Handler) ListJobs(c echo.Context) error {
	pg := pagination.FromContext(c)
	jobs, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(jobs, total, pg.Limit, pg.Offset))
}

func (h *Handler) AcceptJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	job, err := h.svc.Accept(c.Request().Context(), id, auth.ActorFromContext(c))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, job)
	case errors.Is(err, ErrJobNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrJobTerminal), errors.Is(err, ErrNotAwaitingReview):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) ResubmitJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	job, err := h.svc.Resubmit(c.Request().Context(), id, auth.ActorFromContext(c))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, job)
	case errors.Is(err, ErrJobNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadySubmitted), errors.Is(err, ErrJobTerminal):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoSubmitter):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		// Transient clearinghouse trouble: the job stays retryable.
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) Worklist(c echo.Context) error {
	items, err := h.svc.Worklist(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
