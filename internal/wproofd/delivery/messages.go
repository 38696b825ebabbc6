package delivery

import (
	"time"

	"github.com/google/uuid"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

func newMessage(t v1alpha1.StreamMessageType, sessionID uuid.UUID) v1alpha1.StreamMessage {
	return v1alpha1.StreamMessage{
		TypeMeta:  v1alpha1.NewTypeMeta("StreamMessage"),
		Type:      t,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
}

func snapshotToAPI(s rotation.Snapshot) *v1alpha1.OverlaySnapshot {
	out := &v1alpha1.OverlaySnapshot{
		Phase:       string(s.Phase),
		Index:       s.Index,
		Progress:    s.Progress,
		DashOffset:  s.DashOffset(),
		ElapsedMs:   s.Elapsed.Milliseconds(),
		RemainingMs: s.Remaining.Milliseconds(),
		Trigger:     string(s.Trigger),
	}
	if s.Item != nil {
		out.ItemID = s.Item.ID
	}
	return out
}

func clickResultToAPI(index int, r rotation.ClickResult) *v1alpha1.ClickResult {
	out := &v1alpha1.ClickResult{
		Index:  index,
		Action: v1alpha1.ClickAction(r.Action),
		URL:    r.URL,
	}
	if r.Action == rotation.ClickNavigate {
		out.Target = r.Target.HTMLTarget()
	}
	return out
}
