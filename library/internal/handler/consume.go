package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/IBM/sarama"
	"github.com/jonboulle/clockwork"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type upsertTitle func(ctx context.Context, actor model.Actor, title model.Title) (model.Title, error)

const (
	RetryBaseDelay = 100 * time.Millisecond
	RetryMaxDelay  = 10 * time.Second
)

// Consumer applies catalog title updates to the copy counters.
type Consumer struct {
	upsertTitleHandler upsertTitle
	clock              clockwork.Clock
	log                *zap.Logger
	ready              chan bool
}

func NewConsumer(upsertTitle upsertTitle, clock clockwork.Clock, log *zap.Logger) *Consumer {
	return &Consumer{
		upsertTitleHandler: upsertTitle,
		clock:              clock,
		log:                log.Named("consumer"),
		ready:              make(chan bool),
	}
}

// Ready is closed once the first session has been set up.
func (consumer *Consumer) Ready() <-chan bool {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if err := consumer.handleWithRetry(session.Context(), message); err != nil {
				consumer.log.Error("consumer.handle", zap.Error(err),
					zap.String("topic", message.Topic), zap.Int64("offset", message.Offset))
				return nil
			}
			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// handleWithRetry retries one message with exponential backoff until it is
// applied or the session ends. On session end the offset stays unmarked, so
// the next owner of the partition starts from this message.
func (consumer *Consumer) handleWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	delay := RetryBaseDelay
	for attempt := 1; ; attempt++ {
		err := consumer.handle(ctx, message)
		if err == nil {
			return nil
		}
		consumer.log.Warn("retry title update", zap.Error(err),
			zap.Int64("offset", message.Offset), zap.Int("attempt", attempt), zap.Duration("delay", delay))
		select {
		case <-consumer.clock.After(delay):
		case <-ctx.Done():
			return errors.Wrapf(err, "gave up after %d attempts", attempt)
		}
		delay = min(2*delay, RetryMaxDelay)
	}
}

// handle returns an error for transient failures only. Malformed or
// rejected updates are logged and dropped.
func (consumer *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var msg model.TitleMessage
	if err := jsoniter.Unmarshal(message.Value, &msg); err != nil {
		consumer.log.Error("decode title message", zap.Error(err))
		return nil
	}
	actor := model.Actor{Name: msg.UpdatedBy, Role: model.RoleStaff}
	if actor.Name == "" {
		actor.Name = "catalog"
	}
	_, err := consumer.upsertTitleHandler(ctx, actor, model.Title{
		TitleUid:    msg.TitleUid,
		Name:        msg.Name,
		TotalCopies: msg.TotalCopies,
	})
	if errors.Is(err, errs.ErrValidation) {
		consumer.log.Warn("title update rejected", zap.String("title_uid", msg.TitleUid), zap.Error(err))
		return nil
	}
	return err
}
