package models

import "time"

// Notification types.
const (
	NotificationClaimRequest  = "CLAIM_REQUEST"
	NotificationMatchFound    = "MATCH_FOUND"
	NotificationClaimApproved = "CLAIM_APPROVED"
	NotificationClaimRejected = "CLAIM_REJECTED"
	NotificationItemResolved  = "ITEM_RESOLVED"
)

// Workflow markers on notifications.
const (
	NotificationActionRequired = "ACTION_REQUIRED"
	PriorityHigh               = "HIGH"
)

// Notification represents an event requiring a user's attention, stored in
// the document store alongside items.
type Notification struct {
	ID            string    `json:"id,omitempty"`
	UserID        string    `json:"userId"` // recipient
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ItemID        string    `json:"itemId,omitempty"`
	RelatedUserID string    `json:"relatedUserId,omitempty"` // who triggered it (e.g. the claimant)
	Read          bool      `json:"read"`
	Status        string    `json:"status,omitempty"`   // e.g. ACTION_REQUIRED
	Priority      string    `json:"priority,omitempty"` // e.g. HIGH
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateNotificationRequest defines the request body for creating a notification.
type CreateNotificationRequest struct {
	UserID        string `json:"userId" validate:"required"`
	Type          string `json:"type" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Message       string `json:"message" validate:"required"`
	ItemID        string `json:"itemId,omitempty"`
	RelatedUserID string `json:"relatedUserId,omitempty"`
}
