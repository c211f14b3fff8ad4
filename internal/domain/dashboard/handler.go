package dashboard

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adrportal/adrportal/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("user"))
	g.GET("/dashboard/stats", h.Stats)
	g.GET("/dashboard/charts", h.Charts)
}

// organization scopes non-admins to their own department; admins may
// filter freely.
func organization(c echo.Context) string {
	ctx := c.Request().Context()
	if auth.IsAdmin(ctx) {
		return c.QueryParam("organization")
	}
	return auth.OrganizationFromContext(ctx)
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), organization(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Charts(c echo.Context) error {
	year, _ := strconv.Atoi(c.QueryParam("year"))
	f := Filter{Organization: organization(c), Year: year}
	ch, err := h.svc.Charts(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}
