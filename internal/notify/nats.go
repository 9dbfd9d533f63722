// Package notify publishes redirect-map change events so downstream
// consumers (edge proxies reloading their map) can react without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/redirgen/internal/config"
	"git.home.luguber.info/inful/redirgen/internal/logfields"
)

// MapChangeEvent is the payload published when the emitted map changes.
type MapChangeEvent struct {
	BuildID   string    `json:"build_id"`
	Checksum  string    `json:"checksum"`
	MapPath   string    `json:"map_path"`
	Redirects int       `json:"redirects"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier publishes map change events. The NATS client implements it; tests
// and disabled configurations use nil or a fake.
type Notifier interface {
	PublishMapChange(event MapChangeEvent) error
	Close()
}

// NATSNotifier publishes events over a core NATS connection.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the configured NATS server.
func NewNATSNotifier(cfg *config.NotifyConfig) (*NATSNotifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("notify config is required")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name("redirgen"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	slog.Info("NATS notifier connected", logfields.Subject(cfg.Subject))
	return &NATSNotifier{conn: conn, subject: cfg.Subject}, nil
}

// PublishMapChange publishes the event and flushes the connection so the
// message is on the wire before the build finishes.
func (n *NATSNotifier) PublishMapChange(event MapChangeEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal map change event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish map change event: %w", err)
	}
	if err := n.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("flush map change event: %w", err)
	}

	slog.Debug("Published map change event",
		logfields.Subject(n.subject),
		logfields.Checksum(event.Checksum))
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
