package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// StreamMessageType defines types of messages on a page overlay stream
type StreamMessageType string

const (
	// StreamMessageCatalog carries the eligible items once, at session start
	StreamMessageCatalog StreamMessageType = "CATALOG"
	// StreamMessageSnapshot carries the rotation state to render
	StreamMessageSnapshot StreamMessageType = "SNAPSHOT"
	// StreamMessageInteraction carries a hover or click from the page
	StreamMessageInteraction StreamMessageType = "INTERACTION"
	// StreamMessageClickResult tells the page how a click was handled
	StreamMessageClickResult StreamMessageType = "CLICK_RESULT"
	// StreamMessageError reports a session failure
	StreamMessageError StreamMessageType = "ERROR"
)

// StreamMessage is the envelope for every overlay stream frame
type StreamMessage struct {
	// TypeMeta describes API version details
	TypeMeta `json:",inline"`
	// Type indicates the kind of message
	Type StreamMessageType `json:"type"`
	// SessionID identifies the page session
	SessionID uuid.UUID `json:"sessionId,omitempty"`
	// Timestamp indicates when the message was created
	Timestamp time.Time `json:"timestamp"`

	Catalog     *OverlayCatalog  `json:"catalog,omitempty"`
	Snapshot    *OverlaySnapshot `json:"snapshot,omitempty"`
	Interaction *Interaction     `json:"interaction,omitempty"`
	ClickResult *ClickResult     `json:"clickResult,omitempty"`
	Error       *Error           `json:"error,omitempty"`
}

// OverlayCatalog lists what a page session will rotate through
type OverlayCatalog struct {
	// Group is the page's normalized audience group
	Group string `json:"group"`
	// Rotation holds timing and presentation classes
	Rotation RotationConfig `json:"rotation"`
	// Items is the ordered eligible list, indexed by snapshot Index
	Items []CatalogItem `json:"items"`
}

// CatalogItem is an eligible item with its render hints
type CatalogItem struct {
	// Index is the item's position in the rotation
	Index int `json:"index"`
	// Item is the content item
	Item ContentItem `json:"item"`
	// LinkTarget is the anchor target attribute for navigable items
	LinkTarget string `json:"linkTarget,omitempty"`
	// ShowCTA reports whether the call-to-action label is rendered
	ShowCTA bool `json:"showCta"`
	// Schema is the JSON-LD markup describing the item
	Schema string `json:"schema,omitempty"`
}

// OverlaySnapshot is the rotation engine state at one instant
type OverlaySnapshot struct {
	// Phase is one of IDLE, SHOWING, PAUSED or FADING_OUT
	Phase string `json:"phase"`
	// Index is the current position in the rotation
	Index int `json:"index"`
	// ItemID is the id of the current item
	ItemID int `json:"itemId"`
	// Progress is the countdown ratio in [0, 1]
	Progress float64 `json:"progress"`
	// DashOffset is the countdown arc stroke offset in [0, 100]
	DashOffset float64 `json:"dashOffset"`
	// ElapsedMs is the visible time excluding pauses
	ElapsedMs int64 `json:"elapsedMs"`
	// RemainingMs is the time left before natural dismissal
	RemainingMs int64 `json:"remainingMs"`
	// Trigger names what produced the snapshot
	Trigger string `json:"trigger"`
}

// InteractionType defines page interaction kinds
type InteractionType string

const (
	InteractionHoverEnter InteractionType = "HOVER_ENTER"
	InteractionHoverLeave InteractionType = "HOVER_LEAVE"
	InteractionClick      InteractionType = "CLICK"
)

// Interaction is a pointer event on an overlay
type Interaction struct {
	// Type indicates the kind of interaction
	Type InteractionType `json:"type"`
	// Index identifies the overlay the event happened on
	Index int `json:"index"`
}

// ClickAction tells the page what to do with a click
type ClickAction string

const (
	// ClickNavigate lets the browser follow the link
	ClickNavigate ClickAction = "NAVIGATE"
	// ClickDismissed means the overlay was dismissed early
	ClickDismissed ClickAction = "DISMISSED"
	// ClickIgnored means the click hit a stale overlay
	ClickIgnored ClickAction = "IGNORED"
)

// ClickResult answers a click interaction
type ClickResult struct {
	Index  int         `json:"index"`
	Action ClickAction `json:"action"`
	URL    string      `json:"url,omitempty"`
	Target string      `json:"target,omitempty"`
}
