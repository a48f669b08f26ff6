package models

import (
	"time"

	"github.com/lost2found/backend/internal/status"
)

// Item types.
const (
	TypeLost  = "lost"
	TypeFound = "found"
)

// Item represents a reported lost or found object stored in the document store.
// Timestamps are serialized as RFC 3339 strings, matching the wire contract.
type Item struct {
	ID            string        `json:"id,omitempty"`
	Type          string        `json:"type"` // "lost" or "found"
	Status        status.Status `json:"status,omitempty"`
	UserID        string        `json:"userId"` // Firebase UID of the reporting user
	ClaimantID    string        `json:"claimantId,omitempty"`
	ClaimantEmail string        `json:"claimantEmail,omitempty"`
	ClaimantName  string        `json:"claimantName,omitempty"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Location      string        `json:"location"`
	ImageURL      string        `json:"imageUrl,omitempty"`
	Category      string        `json:"category,omitempty"`
	Labels        []string      `json:"labels,omitempty"` // AI-derived image labels
	Contact       string        `json:"contact,omitempty"`
	Date          string        `json:"date,omitempty"` // when the item was lost/found
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt,omitempty"`
	ResolvedAt    *time.Time    `json:"resolvedAt,omitempty"` // set once, on first RESOLVED/SECURED
}

// CreateItemRequest defines the request body for reporting an item.
type CreateItemRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,max=1000"`
	Location    string   `json:"location" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	ImageURL    string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Labels      []string `json:"labels,omitempty"`
	Date        string   `json:"date,omitempty"`
	Contact     string   `json:"contact,omitempty"`
}

// ClaimRequest defines the request body for claiming an item.
type ClaimRequest struct {
	ItemID  string `json:"itemId" validate:"required"`
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
	Proof   string `json:"proof,omitempty" validate:"omitempty,min=5,max=1000"`
}

// UpdateStatusRequest defines the request body for a manual status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
