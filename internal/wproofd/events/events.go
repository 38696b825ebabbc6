// Package events turns rotation transitions into impression events for
// analytics consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

// Dismissal reasons
const (
	ReasonExpired = "expired"
	ReasonManual  = "manual"
)

// publishTimeout bounds a single publish
const publishTimeout = 2 * time.Second

// Publisher delivers impression events
type Publisher interface {
	Publish(ctx context.Context, event v1alpha1.ImpressionEvent) error
}

// Source identifies the page session events are recorded for
type Source struct {
	SessionID uuid.UUID
	Page      string
	Group     string
}

// Recorder is a rotation presenter that publishes an impression event for
// every lifecycle transition. Progress ticks are ignored.
type Recorder struct {
	publisher Publisher
	source    Source
	clock     rotation.Clock
	logger    zerolog.Logger
}

var _ rotation.Presenter = (*Recorder)(nil)

// NewRecorder creates a recorder publishing to p
func NewRecorder(p Publisher, source Source, clock rotation.Clock, logger zerolog.Logger) *Recorder {
	return &Recorder{
		publisher: p,
		source:    source,
		clock:     clock,
		logger: logger.With().
			Str("component", "impressions").
			Str("session", source.SessionID.String()).
			Logger(),
	}
}

// Render implements rotation.Presenter
func (r *Recorder) Render(snap rotation.Snapshot) {
	event, ok := r.eventFor(snap)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn().Err(err).
			Str("type", string(event.Type)).
			Int("item", event.ItemID).
			Msg("failed to publish impression")
	}
}

func (r *Recorder) eventFor(snap rotation.Snapshot) (v1alpha1.ImpressionEvent, bool) {
	if snap.Item == nil {
		return v1alpha1.ImpressionEvent{}, false
	}

	event := v1alpha1.ImpressionEvent{
		TypeMeta:  v1alpha1.NewTypeMeta("ImpressionEvent"),
		ID:        uuid.New(),
		SessionID: r.source.SessionID,
		Page:      r.source.Page,
		Group:     r.source.Group,
		ItemID:    snap.Item.ID,
		ItemType:  string(snap.Item.Type),
		VisibleMs: snap.Elapsed.Milliseconds(),
		Timestamp: r.clock.Now().UTC(),
	}

	switch snap.Trigger {
	case rotation.TriggerShow:
		event.Type = v1alpha1.ImpressionShown
	case rotation.TriggerPause:
		event.Type = v1alpha1.ImpressionPaused
	case rotation.TriggerResume:
		event.Type = v1alpha1.ImpressionResumed
	case rotation.TriggerExpire:
		event.Type = v1alpha1.ImpressionDismissed
		event.Reason = ReasonExpired
	case rotation.TriggerDismiss:
		event.Type = v1alpha1.ImpressionDismissed
		event.Reason = ReasonManual
	default:
		return v1alpha1.ImpressionEvent{}, false
	}
	return event, true
}

// LogPublisher writes events to a logger. It is used when no broker is
// configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher logging at debug level
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "impressions").Logger()}
}

// Publish logs event
func (p *LogPublisher) Publish(ctx context.Context, event v1alpha1.ImpressionEvent) error {
	p.logger.Debug().
		Str("session", event.SessionID.String()).
		Str("page", event.Page).
		Str("type", string(event.Type)).
		Int("item", event.ItemID).
		Str("reason", event.Reason).
		Int64("visibleMs", event.VisibleMs).
		Msg("impression")
	return nil
}
