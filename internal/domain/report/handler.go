package report

import (
	"errors"
	"net/http"
	"time"

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
	user := api.Group("", auth.RequireRole("user"))
	user.POST("/reports", h.CreateReport)
	user.GET("/reports", h.ListReports)
	user.GET("/reports/:id", h.GetReport)
	user.PUT("/reports/:id", h.UpdateReport)
	user.POST("/reports/generate-code", h.GenerateCode)

	admin := api.Group("", auth.RequireAdmin())
	admin.DELETE("/reports/:id", h.DeleteReport)
	admin.PUT("/reports/:id/approve", h.SetApproval)
}

func (h *Handler) CreateReport(c echo.Context) error {
	ctx := c.Request().Context()
	var r ADRReport
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	r.CreatedBy = userID

	// Non-admins always report for their own organization.
	if !auth.IsAdmin(ctx) || r.Organization == "" {
		r.Organization = auth.OrganizationFromContext(ctx)
	}

	if err := h.svc.CreateReport(ctx, &r); err != nil {
		if errors.Is(err, ErrDepartmentCodeMissing) {
			return echo.NewHTTPError(http.StatusBadRequest, "department not configured for report codes")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetReport(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetReport(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if !auth.IsAdmin(ctx) && r.Organization != auth.OrganizationFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "report belongs to another organization")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListReports(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	f := ListFilter{
		Search:         c.QueryParam("search"),
		SeverityLevel:  c.QueryParam("severity"),
		ApprovalStatus: c.QueryParam("status"),
		Limit:          pg.Limit,
		Offset:         pg.Offset,
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}

	if auth.IsAdmin(ctx) {
		f.Organization = c.QueryParam("organization")
	} else {
		f.Organization = auth.OrganizationFromContext(ctx)
	}

	items, total, err := h.svc.ListReports(ctx, f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateReport(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	existing, err := h.svc.GetReport(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if !auth.IsAdmin(ctx) {
		userID := auth.UserIDFromContext(ctx)
		if existing.CreatedBy.String() != userID {
			return echo.NewHTTPError(http.StatusForbidden, "only the report author can edit it")
		}
	}

	var r ADRReport
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	if err := h.svc.UpdateReport(ctx, &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteReport(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type approvalRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetApproval(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req approvalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	approverID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	r, err := h.svc.SetApproval(ctx, id, req.Status, approverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

type generateCodeRequest struct {
	DepartmentID uuid.UUID `json:"department_id"`
	AsOf         *string   `json:"as_of,omitempty"`
}

// GenerateCode previews the next report code for a department without
// reserving it.
func (h *Handler) GenerateCode(c echo.Context) error {
	var req generateCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	asOf := time.Now()
	if req.AsOf != nil {
		t, err := time.Parse("2006-01-02", *req.AsOf)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid as_of date")
		}
		asOf = t
	}

	code, err := h.svc.Allocator().Allocate(c.Request().Context(), req.DepartmentID, asOf)
	if err != nil {
		if errors.Is(err, ErrDepartmentCodeMissing) {
			return echo.NewHTTPError(http.StatusBadRequest, "department not configured for report codes")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"report_code": code})
}
