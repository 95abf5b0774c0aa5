package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/library/internal/events"
	"github.com/Astemirdum/library-lending/library/internal/handler"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/Astemirdum/library-lending/library/internal/server"
	"github.com/Astemirdum/library-lending/library/internal/service"
	"github.com/Astemirdum/library-lending/library/migrations"
	cb "github.com/Astemirdum/library-lending/pkg/circuit_breaker"
	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/Astemirdum/library-lending/pkg/logger"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	"github.com/IBM/sarama"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App holds the wired lending service and whatever it must close.
type App struct {
	cfg     *config.Config
	svc     *service.Service
	clock   clockwork.Clock
	log     *zap.Logger
	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewLogger(cfg.Log, "library")
	clock := clockwork.NewRealClock()
	a := &App{cfg: cfg, clock: clock, log: log}

	var (
		repo repository.Repository
		l    ledger.Ledger
	)
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("in-memory storage, state is lost on restart")
		repo = repository.NewMemory()
		l = ledger.NewMemory(clock, log)
	case config.StoragePostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, errors.Wrap(err, "db init")
		}
		a.closers = append(a.closers, func() error { db.Close(); return nil })
		pgRepo, err := repository.NewRepository(db, log)
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "repo")
		}
		repo = pgRepo
		l = ledger.NewPostgres(db, clock, log)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage)
	}

	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "kafka.NewProducer")
		}
		const (
			recordLength     = 20
			openTimeout      = 30 * time.Second
			failureRatio     = 0.5
			recoveryRequests = 3
		)
		kp := events.NewKafkaPublisher(producer,
			cb.NewCircuitBreakerWithClock(clock, recordLength, openTimeout, failureRatio, recoveryRequests), log)
		a.closers = append(a.closers, kp.Close)
		publisher = events.Fanout{kp, publisher}
	}

	a.svc = service.NewService(repo, l, publisher, publisher, service.Policy{
		Fine: cfg.Policy.Fine.Policy(),
		Loan: cfg.Policy.Loan,
	}, clock, log)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

// Sweep runs one maintenance pass as of now.
func (a *App) Sweep(ctx context.Context) (model.SweepReport, error) {
	return a.svc.RunMaintenanceSweep(ctx, a.clock.Now())
}

func Run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error("close", zap.Error(err))
		}
	}()
	log := a.log

	var group sarama.ConsumerGroup
	if cfg.Kafka.Enabled {
		if group, err = kafka.NewConsumer(cfg.Kafka, kafka.LendingConsumerGroup); err != nil {
			return errors.Wrap(err, "kafka.NewConsumer")
		}
	}

	h := handler.New(a.svc, a.clock, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	g, gCtx := errgroup.WithContext(ctx)
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	g.Go(func() error {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
			return err
		}
		return nil
	})
	if cfg.Sweep.Enabled {
		sweeper := service.NewSweeper(a.svc, a.clock, cfg.Sweep.Interval, log)
		g.Go(func() error {
			return sweeper.Run(gCtx)
		})
	}
	if group != nil {
		g.Go(func() error {
			defer group.Close()
			return kafka.Consume(gCtx, group, handler.NewConsumer(a.svc.UpsertTitle, a.clock, log), kafka.TitleTopic)
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case termSig := <-sig:
		log.Debug("Graceful shutdown", zap.Any("signal", termSig))
	case <-gCtx.Done():
		log.Warn("component stopped, shutting down")
	}
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	err = g.Wait()
	log.Info("Graceful shutdown finished")
	return err
}

// Migrate applies the schema migrations and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, nil)
	if err != nil {
		return errors.Wrap(err, "db init")
	}
	defer db.Close()
	return postgres.Migrate(db, migrations.MigrationFiles)
}
