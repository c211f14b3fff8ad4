package performance

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/adrportal/adrportal/internal/platform/auth"
	"github.com/adrportal/adrportal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("user"))
	g.GET("/performance/indicators", h.ListIndicators)
	g.POST("/performance/assessments", h.CreateAssessment)
	g.GET("/performance/assessments", h.ListAssessments)
	g.GET("/performance/assessments/:id", h.GetAssessment)
	g.PUT("/performance/assessments/:id", h.UpdateAssessment)
	g.DELETE("/performance/assessments/:id", h.DeleteAssessment)
	g.PUT("/performance/assessments/:id/answers", h.SaveAnswer)
	g.GET("/performance/assessments/:id/categories", h.ScoresByCategory)
}

func (h *Handler) ListIndicators(c echo.Context) error {
	return c.JSON(http.StatusOK, Indicators)
}

func (h *Handler) CreateAssessment(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	var a Assessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.UserID = userID
	if err := h.svc.CreateAssessment(ctx, &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

// loadOwned fetches the assessment and enforces owner-or-admin access.
func (h *Handler) loadOwned(c echo.Context) (*Assessment, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAssessment(ctx, id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	if !auth.IsAdmin(ctx) && a.UserID.String() != auth.UserIDFromContext(ctx) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "assessment belongs to another user")
	}
	return a, nil
}

func (h *Handler) GetAssessment(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAssessments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var userID *uuid.UUID
	if !auth.IsAdmin(ctx) {
		id, err := uuid.Parse(auth.UserIDFromContext(ctx))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
		}
		userID = &id
	}

	items, total, err := h.svc.ListAssessments(ctx, userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAssessment(c echo.Context) error {
	existing, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	var a Assessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = existing.ID
	a.UserID = existing.UserID
	if a.AssessmentDate.IsZero() {
		a.AssessmentDate = existing.AssessmentDate
	}
	if a.Status == "" {
		a.Status = existing.Status
	}
	if err := h.svc.UpdateAssessment(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAssessment(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAssessment(c.Request().Context(), a.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type saveAnswerRequest struct {
	IndicatorCode string  `json:"indicator_code"`
	Answer        *bool   `json:"answer"`
	Note          *string `json:"note,omitempty"`
}

func (h *Handler) SaveAnswer(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	var req saveAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ans, err := h.svc.SaveAnswer(c.Request().Context(), a.ID, req.IndicatorCode, req.Answer, req.Note)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ans)
}

func (h *Handler) ScoresByCategory(c echo.Context) error {
	a, err := h.loadOwned(c)
	if err != nil {
		return err
	}
	scores, err := h.svc.ScoresByCategory(c.Request().Context(), a.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, scores)
}
