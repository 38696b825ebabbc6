package delivery

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/events"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

// Config tunes page sessions
type Config struct {
	// TickInterval is how often countdown progress is streamed
	TickInterval time.Duration
	// FadeDuration is how long an overlay takes to leave
	FadeDuration time.Duration
	// AllowedOrigins restricts which sites may open streams, all when empty
	AllowedOrigins []string
}

// Server accepts page stream connections
type Server struct {
	cfg       Config
	publisher events.Publisher
	upgrader  websocket.Upgrader
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[*session]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a stream server publishing impressions to publisher
func NewServer(cfg Config, publisher events.Publisher, logger zerolog.Logger) *Server {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}
	if cfg.FadeDuration <= 0 {
		cfg.FadeDuration = rotation.DefaultFadeDuration
	}

	s := &Server{
		cfg:       cfg,
		publisher: publisher,
		logger:    logger.With().Str("component", "delivery").Logger(),
		sessions:  make(map[*session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Serve upgrades the request and runs the rotation of plan until the page
// disconnects or ctx of the request ends. It blocks for the session lifetime.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, plan *Plan) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("page", plan.Page).Msg("websocket upgrade failed")
		return
	}

	id := uuid.New()
	logger := s.logger.With().Str("session", id.String()).Str("page", plan.Page).Logger()

	loop := rotation.NewLoop(256)
	clock := rotation.NewLoopClock(loop)

	sess := &session{
		id:     id,
		page:   plan.Page,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		loop:   loop,
		logger: logger,
	}

	recorder := events.NewRecorder(s.publisher, events.Source{
		SessionID: id,
		Page:      plan.Page,
		Group:     string(plan.Selection.Group),
	}, clock, logger)

	scheduler, err := rotation.New(plan.Selection.Items, plan.Selection.Rotation, clock,
		rotation.WithPresenter(rotation.Presenters(sess, recorder)),
		rotation.WithLogger(logger),
		rotation.WithTickInterval(s.cfg.TickInterval),
		rotation.WithFadeDuration(s.cfg.FadeDuration),
	)
	if err != nil {
		logger.Error().Err(err).Msg("rotation could not be scheduled")
		msg := newMessage(v1alpha1.StreamMessageError, id)
		msg.Error = &v1alpha1.Error{Code: "INVALID_CONFIG", Message: "rotation settings are invalid"}
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteJSON(msg)
		ws.Close()
		return
	}
	sess.scheduler = scheduler
	sess.controller = rotation.NewController(scheduler, logger)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.track(sess)
	defer s.untrack(sess)

	go loop.Run(ctx)
	go sess.writePump()

	loop.Post(func() {
		catalog := newMessage(v1alpha1.StreamMessageCatalog, id)
		catalog.Catalog = plan.catalogMessage()
		sess.enqueue(catalog, false)
		scheduler.Start()
	})

	logger.Info().
		Str("group", string(plan.Selection.Group)).
		Int("items", scheduler.Len()).
		Msg("page session started")

	sess.readPump(ctx)

	if !loop.Do(sess.shutdown) {
		// The loop is gone, so nothing else can touch send
		if !sess.closed {
			sess.closed = true
			close(sess.send)
		}
	}
	loop.Close()

	logger.Info().Msg("page session ended")
}

// Sessions returns the number of open page sessions
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown closes every open session and waits for them to finish or ctx to
// expire
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for sess := range s.sessions {
		sess.ws.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess)
	s.wg.Done()
}
