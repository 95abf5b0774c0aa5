package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/events"
	"github.com/Astemirdum/library-lending/library/internal/model"
	cb "github.com/Astemirdum/library-lending/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	jsoniter "github.com/json-iterator/go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublisher_Notify(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var n model.Notification
		require.NoError(t, jsoniter.Unmarshal(val, &n))
		require.Equal(t, model.NotificationReservationApproved, n.Type)
		require.Equal(t, "alice", n.PatronID)
		require.Equal(t, "title-1", n.TitleID)
		return nil
	})

	p := events.NewKafkaPublisher(producer, cb.NewCircuitBreaker(10, time.Second, 0.5, 1), zap.NewNop())
	err := p.Notify(context.Background(), model.Notification{
		Type:     model.NotificationReservationApproved,
		PatronID: "alice",
		TitleID:  "title-1",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_BreakerOpens(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	breaker := cb.NewCircuitBreakerWithClock(clockwork.NewFakeClock(), 2, time.Minute, 1, 1)
	p := events.NewKafkaPublisher(producer, breaker, zap.NewNop())
	rec := model.AuditRecord{Actor: "staff", Action: "loan.return", EntityType: model.EntityLoan, EntityID: "l1"}

	require.ErrorIs(t, p.Audit(context.Background(), rec), sarama.ErrOutOfBrokers)
	require.ErrorIs(t, p.Audit(context.Background(), rec), sarama.ErrOutOfBrokers)
	require.Equal(t, cb.Open, breaker.State())

	require.ErrorIs(t, p.Audit(context.Background(), rec), cb.ErrOpenCB)
	require.NoError(t, p.Close())
}

type recorder struct {
	notifications []model.Notification
	audits        []model.AuditRecord
	err           error
}

func (r *recorder) Notify(_ context.Context, n model.Notification) error {
	r.notifications = append(r.notifications, n)
	return r.err
}

func (r *recorder) Audit(_ context.Context, rec model.AuditRecord) error {
	r.audits = append(r.audits, rec)
	return r.err
}

func TestFanout(t *testing.T) {
	t.Parallel()
	ok := &recorder{}
	broken := &recorder{err: sarama.ErrOutOfBrokers}
	f := events.Fanout{broken, ok, events.NewLogPublisher(zap.NewNop())}

	err := f.Notify(context.Background(), model.Notification{Type: model.NotificationLoanOverdue})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.Len(t, ok.notifications, 1)
	require.Len(t, broken.notifications, 1)

	require.NoError(t, events.Fanout{ok}.Audit(context.Background(), model.AuditRecord{Action: "x"}))
	require.Len(t, ok.audits, 1)
}
