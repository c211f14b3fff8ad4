package contest

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterPublicRoutes mounts the entrant-facing flow: contests are
// open to the public without an account.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/contests/active", h.ActiveContest)
	g.POST("/contests/register", h.Register)
	g.POST("/contests/submissions", h.StartSubmission)
	g.POST("/contests/submissions/:id/submit", h.Submit)
	g.GET("/contests/:id/leaderboard", h.Leaderboard)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireAdmin())
	admin.POST("/contests", h.CreateContest)
	admin.GET("/contests", h.ListContests)
	admin.GET("/contests/:id", h.GetContest)
	admin.PUT("/contests/:id", h.UpdateContest)
	admin.DELETE("/contests/:id", h.DeleteContest)
	admin.POST("/contests/:id/questions", h.AttachQuestions)
	admin.DELETE("/contests/:id/questions/:question_id", h.DetachQuestion)
	admin.GET("/contests/:id/stats", h.Stats)
}

func (h *Handler) CreateContest(c echo.Context) error {
	ctx := c.Request().Context()
	var contest Contest
	if err := c.Bind(&contest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
		contest.CreatedBy = &id
	}
	if err := h.svc.CreateContest(ctx, &contest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, contest)
}

func (h *Handler) GetContest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	contest, err := h.svc.GetContest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "contest not found")
	}
	return c.JSON(http.StatusOK, contest)
}

func (h *Handler) UpdateContest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var contest Contest
	if err := c.Bind(&contest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	contest.ID = id
	if err := h.svc.UpdateContest(c.Request().Context(), &contest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, contest)
}

func (h *Handler) DeleteContest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteContest(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListContests(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListContests(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ActiveContest(c echo.Context) error {
	contest, err := h.svc.ActiveContest(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if contest == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active contest")
	}
	return c.JSON(http.StatusOK, contest)
}

type attachQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids"`
}

func (h *Handler) AttachQuestions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req attachQuestionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AttachQuestions(c.Request().Context(), id, req.QuestionIDs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DetachQuestion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	qid, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid question id")
	}
	if err := h.svc.DetachQuestion(c.Request().Context(), id, qid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Register(c echo.Context) error {
	var p Participant
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.IPAddress = c.RealIP()
	p.UserAgent = c.Request().UserAgent()

	participant, err := h.svc.Register(c.Request().Context(), &p)
	switch {
	case errors.Is(err, ErrContestClosed):
		return echo.NewHTTPError(http.StatusBadRequest, "contest is not open for registration")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, participant)
}

type startSubmissionRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

func (h *Handler) StartSubmission(c echo.Context) error {
	var req startSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sub, err := h.svc.StartSubmission(c.Request().Context(), req.ParticipantID)
	switch {
	case errors.Is(err, ErrContestClosed):
		return echo.NewHTTPError(http.StatusBadRequest, "contest is not open")
	case errors.Is(err, ErrEmptyQuestionPool):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

type submitRequest struct {
	Answers   map[uuid.UUID]string `json:"answers"`
	TimeTaken int                  `json:"time_taken"`
}

func (h *Handler) Submit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Submit(c.Request().Context(), id, req.Answers, req.TimeTaken)
	switch {
	case errors.Is(err, ErrSubmissionClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Leaderboard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.svc.Leaderboard(c.Request().Context(), id, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) Stats(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	stats, err := h.svc.Stats(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
