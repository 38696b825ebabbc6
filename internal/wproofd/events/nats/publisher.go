// Package nats publishes impression events to NATS
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
)

// DefaultSubjectPrefix is the subject root impressions are published under
const DefaultSubjectPrefix = "wproof.impressions"

// Config holds NATS connection settings
type Config struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Connect opens a NATS connection that logs its lifecycle
func Connect(cfg Config, logger zerolog.Logger) (*nats.Conn, error) {
	logger = logger.With().Str("component", "nats").Logger()

	options := []nats.Option{
		nats.Name("wproofd"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return nc, nil
}

// Publisher publishes impression events as JSON
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// NewPublisher creates a publisher on conn. An empty prefix selects
// DefaultSubjectPrefix.
func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event of type t is published on,
// e.g. wproof.impressions.shown
func Subject(prefix string, t v1alpha1.ImpressionEventType) string {
	return prefix + "." + strings.ToLower(string(t))
}

// Publish sends event. The connection buffers writes, so this only blocks
// when the outbound buffer is full.
func (p *Publisher) Publish(ctx context.Context, event v1alpha1.ImpressionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling impression: %w", err)
	}

	if err := p.conn.Publish(Subject(p.prefix, event.Type), data); err != nil {
		return fmt.Errorf("error publishing impression: %w", err)
	}
	return nil
}
