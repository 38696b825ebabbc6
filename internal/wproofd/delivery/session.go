package delivery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound frames buffered per session
	sendBuffer = 64
)

// session is one page connection. Everything that touches the scheduler or
// the send channel runs on loop.
type session struct {
	id         uuid.UUID
	page       string
	ws         *websocket.Conn
	send       chan []byte
	loop       *rotation.Loop
	scheduler  *rotation.Scheduler
	controller *rotation.Controller
	logger     zerolog.Logger

	// closed is only read and written on loop
	closed bool
}

// Render implements rotation.Presenter
func (s *session) Render(snap rotation.Snapshot) {
	msg := newMessage(v1alpha1.StreamMessageSnapshot, s.id)
	msg.Snapshot = snapshotToAPI(snap)
	s.enqueue(msg, snap.Trigger == rotation.TriggerTick)
}

// enqueue queues msg for the write pump. Droppable frames are skipped when
// the page falls behind; anything else closes the session.
func (s *session) enqueue(msg v1alpha1.StreamMessage, droppable bool) {
	if s.closed {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(msg.Type)).Msg("failed to encode stream message")
		return
	}

	select {
	case s.send <- data:
	default:
		if droppable {
			return
		}
		s.logger.Warn().Msg("page is not keeping up, closing session")
		s.shutdown()
	}
}

// shutdown stops the rotation and closes the send channel. It runs on loop.
// closed is set first: stopping renders a final snapshot back through
// enqueue, which must then see the session as gone.
func (s *session) shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	s.scheduler.Stop()
	close(s.send)
}

// handle applies a page interaction. It runs on loop.
func (s *session) handle(in v1alpha1.Interaction) {
	switch in.Type {
	case v1alpha1.InteractionHoverEnter:
		s.controller.HoverEnter(in.Index)
	case v1alpha1.InteractionHoverLeave:
		s.controller.HoverLeave(in.Index)
	case v1alpha1.InteractionClick:
		result := s.controller.Click(in.Index)
		msg := newMessage(v1alpha1.StreamMessageClickResult, s.id)
		msg.ClickResult = clickResultToAPI(in.Index, result)
		s.enqueue(msg, false)
	default:
		s.sendError("UNKNOWN_INTERACTION", "unknown interaction type")
	}
}

func (s *session) sendError(code, message string) {
	msg := newMessage(v1alpha1.StreamMessageError, s.id)
	msg.Error = &v1alpha1.Error{Code: code, Message: message}
	s.enqueue(msg, false)
}

func (s *session) readPump(ctx context.Context) {
	s.ws.SetReadLimit(maxMessageSize)
	if err := s.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var msg v1alpha1.StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != v1alpha1.StreamMessageInteraction || msg.Interaction == nil {
			s.logger.Debug().Err(err).Msg("invalid interaction message")
			s.loop.Post(func() {
				s.sendError("INVALID_MESSAGE", "expected an interaction message")
			})
			continue
		}

		interaction := *msg.Interaction
		if !s.loop.Post(func() { s.handle(interaction) }) {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *session) write(mt int, payload []byte) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(mt, payload)
}

// writePump drains send until it is closed
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.ws.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.write(websocket.TextMessage, message); err != nil {
				s.logger.Debug().Err(err).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.logger.Debug().Err(err).Msg("failed to write ping")
				return
			}
		}
	}
}
