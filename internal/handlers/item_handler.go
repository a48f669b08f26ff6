package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/qr"
	"github.com/lost2found/backend/internal/repositories"
	"github.com/lost2found/backend/internal/sanitize"
	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/store"
	"github.com/lost2found/backend/internal/throttle"
	"github.com/lost2found/backend/internal/workflow"
)

// ItemHandler handles HTTP requests related to lost/found items
type ItemHandler struct {
	itemRepository repositories.ItemRepository
	claims         *workflow.Service
	throttle       *throttle.Policy
	frontendURL    string
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemRepo repositories.ItemRepository, claims *workflow.Service, throttlePolicy *throttle.Policy, frontendURL string) *ItemHandler {
	return &ItemHandler{
		itemRepository: itemRepo,
		claims:         claims,
		throttle:       throttlePolicy,
		frontendURL:    frontendURL,
	}
}

// RegisterPublicItemRoutes registers the unauthenticated read-side routes
func (h *ItemHandler) RegisterPublicItemRoutes(g *echo.Group) {
	g.GET("/items/detail/:id", h.GetItem)
	g.GET("/items/:id/qr", h.GetItemQR)
	g.GET("/items/:type", h.GetItems)
}

// RegisterItemRoutes registers the authenticated item routes
func (h *ItemHandler) RegisterItemRoutes(g *echo.Group) {
	g.POST("/items/claim", h.ClaimItem)
	g.GET("/items/user/:userId", h.GetUserItems)
	g.PUT("/items/:id/status", h.UpdateItemStatus)
	g.PUT("/items/:id/approve", h.ApproveClaim)
	g.PUT("/items/:id/reject", h.RejectClaim)
	g.DELETE("/items/:id", h.DeleteItem)
	g.POST("/items/:type", h.CreateItem)
}

func validItemType(t string) bool {
	return t == models.TypeLost || t == models.TypeFound
}

// GetItems lists items of one type ("lost" or "found")
func (h *ItemHandler) GetItems(c echo.Context) error {
	itemType := c.Param("type")
	if !validItemType(itemType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Item type must be 'lost' or 'found'")
	}

	items, err := h.itemRepository.GetItemsByType(c.Request().Context(), itemType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// GetItem returns a single item by ID
func (h *ItemHandler) GetItem(c echo.Context) error {
	item, err := h.itemRepository.GetItemByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":          item,
		"statusMessage": status.UserFacing(item.Status, item.ClaimantEmail),
	})
}

// GetUserItems lists all items reported by a user
func (h *ItemHandler) GetUserItems(c echo.Context) error {
	items, err := h.itemRepository.GetItemsByUserID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// CreateItem reports a new lost or found item
func (h *ItemHandler) CreateItem(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	itemType := c.Param("type")
	if !validItemType(itemType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Item type must be 'lost' or 'found'")
	}

	if err := h.throttle.AllowReport(c.Request().Context(), actor.UID); err != nil {
		return workflowHTTPError(err)
	}

	var req models.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	now := time.Now().UTC()
	item := &models.Item{
		Type:        itemType,
		Status:      status.Reported,
		UserID:      actor.UID,
		Title:       sanitize.Text(req.Title, 100),
		Description: sanitize.Text(req.Description, 1000),
		Location:    sanitize.Text(req.Location, 200),
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Labels:      req.Labels,
		Date:        req.Date,
		Contact:     sanitize.Text(req.Contact, 200),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.itemRepository.CreateItem(c.Request().Context(), item); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

// ClaimItem submits a claim on an item
func (h *ItemHandler) ClaimItem(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req models.ClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	notification, err := h.claims.SubmitClaim(c.Request().Context(), actor, workflow.ClaimInput{
		ItemID:  req.ItemID,
		Message: sanitize.Text(req.Message, 500),
		Proof:   sanitize.Text(req.Proof, 1000),
	})
	if err != nil {
		var invalid *workflow.InvalidTransitionError
		if errors.As(err, &invalid) && invalid.To == status.ClaimRequested {
			return echo.NewHTTPError(http.StatusConflict, "This item already has a pending claim")
		}
		return workflowHTTPError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":        true,
		"notificationId": notification.ID,
	})
}

// UpdateItemStatus performs a manual status change
func (h *ItemHandler) UpdateItemStatus(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	itemID := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	next, err := status.Parse(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.claims.UpdateStatus(c.Request().Context(), actor, itemID, next); err != nil {
		return workflowHTTPError(err)
	}

	item, err := h.itemRepository.GetItemByID(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

// ApproveClaim verifies the pending claim (owner only)
func (h *ItemHandler) ApproveClaim(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.claims.ApproveClaim(c.Request().Context(), actor, c.Param("id")); err != nil {
		return workflowHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RejectClaim turns the pending claim down (owner only)
func (h *ItemHandler) RejectClaim(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.claims.RejectClaim(c.Request().Context(), actor, c.Param("id")); err != nil {
		return workflowHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteItem removes an item report (owner only)
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	itemID := c.Param("id")

	item, err := h.itemRepository.GetItemByID(c.Request().Context(), itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if item.UserID != actor.UID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this item")
	}

	if err := h.itemRepository.DeleteItem(c.Request().Context(), itemID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetItemQR renders the handover-verification QR code for an item
func (h *ItemHandler) GetItemQR(c echo.Context) error {
	itemID := c.Param("id")
	if _, err := h.itemRepository.GetItemByID(c.Request().Context(), itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	png, err := qr.PNG(h.frontendURL, itemID, qr.DefaultSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
