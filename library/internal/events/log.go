package events

import (
	"context"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"go.uber.org/zap"
)

// LogPublisher writes events to the service log. It is used when Kafka is disabled.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Notify(_ context.Context, n model.Notification) error {
	p.log.Info("notification",
		zap.String("type", string(n.Type)),
		zap.String("patron", n.PatronID),
		zap.String("title_uid", n.TitleID),
		zap.Any("payload", n.Payload),
		zap.Time("occurred_at", n.OccurredAt),
	)
	return nil
}

func (p *LogPublisher) Audit(_ context.Context, rec model.AuditRecord) error {
	p.log.Info("audit",
		zap.String("actor", rec.Actor),
		zap.String("action", rec.Action),
		zap.String("entity_type", rec.EntityType),
		zap.String("entity_id", rec.EntityID),
		zap.String("detail", rec.Detail),
		zap.Time("at", rec.At),
	)
	return nil
}
