package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// ImpressionEventType represents overlay lifecycle events
type ImpressionEventType string

const (
	// ImpressionShown indicates an overlay became visible
	ImpressionShown ImpressionEventType = "SHOWN"
	// ImpressionPaused indicates the visitor hovered an overlay
	ImpressionPaused ImpressionEventType = "PAUSED"
	// ImpressionResumed indicates the visitor stopped hovering
	ImpressionResumed ImpressionEventType = "RESUMED"
	// ImpressionDismissed indicates an overlay started fading out
	ImpressionDismissed ImpressionEventType = "DISMISSED"
)

// ImpressionEvent records one overlay lifecycle step on one page
type ImpressionEvent struct {
	// TypeMeta describes API version details
	TypeMeta `json:",inline"`
	// ID uniquely identifies this event
	ID uuid.UUID `json:"id"`
	// SessionID identifies the page session
	SessionID uuid.UUID `json:"sessionId"`
	// Page identifies the page the overlay was shown on
	Page string `json:"page"`
	// Group is the page's audience group
	Group string `json:"group"`
	// Type indicates what happened
	Type ImpressionEventType `json:"type"`
	// ItemID identifies the content item
	ItemID int `json:"itemId"`
	// ItemType is the content item's type
	ItemType string `json:"itemType"`
	// Reason is "expired" or "manual" for dismissals
	Reason string `json:"reason,omitempty"`
	// VisibleMs is the visible time so far, pauses excluded
	VisibleMs int64 `json:"visibleMs"`
	// Timestamp records when the event occurred
	Timestamp time.Time `json:"timestamp"`
}
