package assessment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adrportal/adrportal/internal/platform/auth"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("user"))
	g.POST("/assessment/score", h.Score)
	g.POST("/assessment/suggest", h.Suggest)
	g.POST("/assessment/naranjo", h.Naranjo)
}

type scoreRequest struct {
	IndicatorType string `json:"indicator_type"`
	Answer        string `json:"answer"`
}

func (h *Handler) Score(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{
		"score": ScoreIndicator(req.IndicatorType, req.Answer),
	})
}

type suggestRequest struct {
	Drugs []DrugEvidence `json:"drugs"`
}

func (h *Handler) Suggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]Causality{
		"causality": SuggestCausality(req.Drugs),
	})
}

type naranjoRequest struct {
	Total int `json:"total"`
}

func (h *Handler) Naranjo(c echo.Context) error {
	var req naranjoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]Causality{
		"causality": NaranjoLevel(req.Total),
	})
}
