package submission

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/immbridge/immbridge/internal/platform/blobstore"
	"github.com/immbridge/immbridge/internal/platform/roster"
)

type Handler struct {
	svc   *Service
	store blobstore.Store
}

func NewHandler(svc *Service, store blobstore.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/runs", h.StartRun)
	api.GET("/runs/:id", h.ListRunEntries)
}

type startRunRequest struct {
	// RosterKey locates the roster CSV in the blob store.
	RosterKey string `json:"roster_key"`
}

func (h *Handler) StartRun(c echo.Context) error {
	var req startRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RosterKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roster_key is required")
	}

	body, err := h.store.Get(c.Request().Context(), req.RosterKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrObjectNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("roster %q not found", req.RosterKey))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	records, err := roster.Parse(bytes.NewReader(body))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("parse roster: %v", err))
	}

	report, err := h.svc.Run(c.Request().Context(), records)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ListRunEntries(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entries, err := h.svc.RunEntries(c.Request().Context(), id.String())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*MessageLogEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
