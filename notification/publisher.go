// notification/publisher.go
package notification

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// Publisher hands a persisted notification to a delivery transport.
type Publisher interface {
	Publish(ctx context.Context, n *model.Notification) error
	Close() error
}

// LogPublisher only records the delivery in the application log.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, n *model.Notification) error {
	logger.Info("NOTIFICATION",
		zap.String("notificationID", n.ID),
		zap.String("recipient", n.RecipientEmail),
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
