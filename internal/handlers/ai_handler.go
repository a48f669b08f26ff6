package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lost2found/backend/internal/matching"
	"github.com/lost2found/backend/internal/repositories"
	"github.com/lost2found/backend/internal/store"
)

// AIHandler exposes the AI matching pipeline
type AIHandler struct {
	pipeline        *matching.Pipeline
	matchRepository repositories.MatchRepository
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(pipeline *matching.Pipeline, matchRepo repositories.MatchRepository) *AIHandler {
	return &AIHandler{pipeline: pipeline, matchRepository: matchRepo}
}

// RegisterAIRoutes registers matching routes
func (h *AIHandler) RegisterAIRoutes(g *echo.Group) {
	g.GET("/ai/:itemId", h.GetMatches)
	g.GET("/ai/:itemId/history", h.GetMatchHistory)
}

// GetMatches runs the matching pipeline for an item and returns the scores
func (h *AIHandler) GetMatches(c echo.Context) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}

	matches, err := h.pipeline.Run(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if matches == nil {
		matches = []matching.Match{}
	}
	return c.JSON(http.StatusOK, echo.Map{"matches": matches})
}

// GetMatchHistory returns previously recorded matches for an item
func (h *AIHandler) GetMatchHistory(c echo.Context) error {
	if _, err := actorFromContext(c); err != nil {
		return err
	}

	records, err := h.matchRepository.GetByItemID(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"matches": records})
}
