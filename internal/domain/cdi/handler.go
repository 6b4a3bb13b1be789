package cdi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brainsait/rcm/internal/platform/auth"
)

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{analyzer: analyzer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "coder", "physician"))
	g.POST("/cdi/analyze", h.AnalyzeDraftNote)
}

// AnalyzeRequest carries a draft note for gap analysis.
type AnalyzeRequest struct {
	EncounterID  string `json:"encounter_id,omitempty"`
	ClinicalNote string `json:"clinical_note"`
}

// AnalyzeResponse lists the nudges the draft triggered.
type AnalyzeResponse struct {
	Nudges  []Nudge `json:"nudges"`
	Summary string  `json:"summary"`
}

func (h *Handler) AnalyzeDraftNote(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.ClinicalNote) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "clinical_note must not be empty")
	}

	nudges := h.analyzer.Analyze(req.ClinicalNote)
	if nudges == nil {
		nudges = []Nudge{}
	}
	return c.JSON(http.StatusOK, AnalyzeResponse{
		Nudges:  nudges,
		Summary: fmt.Sprintf("Found %d potential documentation improvement(s).", len(nudges)),
	})
}
