package events

import (
	"context"

	"github.com/Astemirdum/library-lending/library/internal/model"
	cb "github.com/Astemirdum/library-lending/pkg/circuit_breaker"
	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KafkaPublisher sends notifications and audit records to their topics.
// Notifications are keyed by title so one title's events stay ordered.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	cb       cb.CircuitBreaker
	log      *zap.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer sarama.SyncProducer, breaker cb.CircuitBreaker, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		cb:       breaker,
		log:      log.Named("kafka"),
	}
}

func (p *KafkaPublisher) Notify(_ context.Context, n model.Notification) error {
	return p.send(kafka.NotificationTopic, n.TitleID, n)
}

func (p *KafkaPublisher) Audit(_ context.Context, rec model.AuditRecord) error {
	return p.send(kafka.AuditTopic, rec.EntityID, rec)
}

func (p *KafkaPublisher) send(topic, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(b),
	}
	err = p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
	if err != nil {
		p.log.Warn("send event", zap.String("topic", topic), zap.String("key", key),
			zap.Stringer("breaker", p.cb.State()), zap.Error(err))
		return errors.Wrapf(err, "send to %s", topic)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
