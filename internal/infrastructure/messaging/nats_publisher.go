// Package messaging publishes restaurant lifecycle events.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/logger"
)

// DefaultSubjectPrefix is prepended to every lifecycle subject
const DefaultSubjectPrefix = "splitdine."

type natsConn interface {
	Publish(subject string, data []byte) error
	Close()
}

var connectNATS = func(url string, opts ...nats.Option) (natsConn, error) {
	return nats.Connect(url, opts...)
}

// NATSPublisher publishes lifecycle events as JSON to NATS subjects
type NATSPublisher struct {
	conn   natsConn
	prefix string
}

var _ domainRepos.EventPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to NATS
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := connectNATS(url, nats.Name("splitdine-admin"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// Publish sends the event on prefix + event.Subject
func (p *NATSPublisher) Publish(ctx context.Context, event domainRepos.LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	subject := p.prefix + event.Subject
	logger.Debug(ctx, "Publishing event", zap.String("subject", subject), zap.Int("restaurant_id", event.RestaurantID))

	return p.conn.Publish(subject, payload)
}

// Close drains nothing and closes the connection
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
