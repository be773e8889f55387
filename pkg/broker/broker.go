// Package broker publishes domain events and chat messages to NATS. When no
// broker is configured every publish is a no-op.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/pkg/config"
)

// Publisher delivers a payload on a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}

// NoopPublisher drops every message
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close()                                            {}

// NATSPublisher publishes JSON payloads on a NATS connection
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials NATS with reconnect handling logged through log
func Connect(cfg *config.NATSConfig, name string, log *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.UserInfo(cfg.Username, cfg.Password),
		nats.ReconnectWait(cfg.ReconnectInterval),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("Disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: nc, prefix: cfg.SubjectPrefix}, nil
}

// Publish marshals payload as JSON and publishes it under the configured prefix
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", subject, err)
	}
	return p.conn.Publish(Join(p.prefix, subject), data)
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

var (
	mu        sync.RWMutex
	publisher Publisher = NoopPublisher{}
)

// Init installs the NATS publisher when a URL is configured. A failed
// connection is logged and the service continues without events.
func Init(cfg *config.Config, log *zap.Logger) {
	if cfg.NATS.URL == "" {
		log.Info("NATS_URL not set, event publishing disabled")
		return
	}

	p, err := Connect(&cfg.NATS, cfg.Server.Name, log)
	if err != nil {
		log.Warn("Failed to connect to NATS, continuing without event publishing", zap.Error(err))
		return
	}
	log.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
	Set(p)
}

// Get returns the installed publisher
func Get() Publisher {
	mu.RLock()
	defer mu.RUnlock()
	return publisher
}

// Set replaces the installed publisher
func Set(p Publisher) {
	mu.Lock()
	defer mu.Unlock()
	publisher = p
}

// Join builds a dotted subject, skipping empty parts
func Join(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// CompanySubject scopes a subject to one company, e.g. company.7.invoice.paid
func CompanySubject(companyID uint, parts ...string) string {
	return Join(append([]string{"company", fmt.Sprint(companyID)}, parts...)...)
}
