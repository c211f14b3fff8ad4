package allergycard

import (
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

// RegisterPublicRoutes mounts the QR-scan lookup outside auth.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/allergy-cards/public/:code", h.LookupPublic)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("user"))
	g.POST("/allergy-cards", h.IssueCard)
	g.GET("/allergy-cards", h.ListCards)
	g.GET("/allergy-cards/:id", h.GetCard)
	g.PUT("/allergy-cards/:id", h.UpdateCard)
	g.GET("/allergy-cards/:id/qr", h.QRCode)

	admin := api.Group("", auth.RequireAdmin())
	admin.DELETE("/allergy-cards/:id", h.DeleteCard)
}

func (h *Handler) IssueCard(c echo.Context) error {
	ctx := c.Request().Context()
	var card AllergyCard
	if err := c.Bind(&card); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	card.IssuedByUserID = userID
	if card.Organization == "" {
		card.Organization = auth.OrganizationFromContext(ctx)
	}

	if err := h.svc.IssueCard(ctx, &card); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, card)
}

func (h *Handler) GetCard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	card, err := h.svc.GetCard(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "card not found")
	}
	return c.JSON(http.StatusOK, card)
}

func (h *Handler) LookupPublic(c echo.Context) error {
	card, err := h.svc.LookupPublic(c.Request().Context(), c.Param("code"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "card not found")
	}
	return c.JSON(http.StatusOK, card)
}

func (h *Handler) ListCards(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	organization := auth.OrganizationFromContext(ctx)
	if auth.IsAdmin(ctx) {
		organization = c.QueryParam("organization")
	}

	items, total, err := h.svc.ListCards(ctx, organization, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var card AllergyCard
	if err := c.Bind(&card); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	card.ID = id
	if err := h.svc.UpdateCard(c.Request().Context(), &card); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, card)
}

func (h *Handler) DeleteCard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteCard(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) QRCode(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	size, _ := strconv.Atoi(c.QueryParam("size"))
	png, err := h.svc.QRPNG(c.Request().Context(), id, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "card not found")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
