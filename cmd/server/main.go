package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	compliancehandler "opsdesk/internal/compliance/handler"
	compliancemetrics "opsdesk/internal/compliance/metrics"
	compliancesvc "opsdesk/internal/compliance/service"
	dashhandler "opsdesk/internal/dashboard/handler"
	dashmetrics "opsdesk/internal/dashboard/metrics"
	dashsvc "opsdesk/internal/dashboard/service"
	dashstore "opsdesk/internal/dashboard/store"
	"opsdesk/internal/heuristics"
	heuristicsconfig "opsdesk/internal/heuristics/config"
	httpapi "opsdesk/internal/http"
	jwttoken "opsdesk/internal/jwt_token"
	"opsdesk/internal/platform/config"
	"opsdesk/internal/platform/httpserver"
	"opsdesk/internal/platform/logger"
	"opsdesk/internal/platform/metrics"
	"opsdesk/internal/platform/postgres"
	"opsdesk/internal/platform/redis"
	recordshandler "opsdesk/internal/records/handler"
	recordssvc "opsdesk/internal/records/service"
	recordsstore "opsdesk/internal/records/store"
	"opsdesk/internal/sweep"
	"opsdesk/pkg/platform/audit"
	"opsdesk/pkg/platform/audit/outbox"
	"opsdesk/pkg/platform/audit/publisher"
	auditmemory "opsdesk/pkg/platform/audit/store/memory"
	auditpostgres "opsdesk/pkg/platform/audit/store/postgres"
	authmw "opsdesk/pkg/platform/middleware/auth"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("opsdesk stopped with error", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services. Nil fields fall back to memory.
type infra struct {
	records recordssvc.Store
	audits  audit.Store
	acks    dashstore.AckStore
	relay   *outbox.Relay
	health  []httpapi.HealthCheck
	closers []func()
}

func (i *infra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	inf, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer inf.close()

	auditor := publisher.NewPublisher(inf.audits, publisher.WithLogger(log))

	settings, err := heuristicsconfig.New(cfg.HeuristicsConfig, heuristicsconfig.WithLogger(log))
	if err != nil {
		return fmt.Errorf("load heuristics config: %w", err)
	}

	records := recordssvc.New(inf.records,
		recordssvc.WithLogger(log),
		recordssvc.WithAuditEmitter(auditor),
	)
	compliance := compliancesvc.New(settings.Current().Compliance,
		compliancesvc.WithShipments(records),
		compliancesvc.WithAuditEmitter(auditor),
		compliancesvc.WithMetrics(compliancemetrics.New()),
		compliancesvc.WithLogger(log),
	)
	dashboard := dashsvc.New(records, compliance, settings, inf.acks,
		dashsvc.WithAuditEmitter(auditor),
		dashsvc.WithMetrics(dashmetrics.New()),
		dashsvc.WithLogger(log),
	)
	settings.OnChange(func(s heuristics.Settings) {
		compliance.SetWatchlists(s.Compliance)
		if err := auditor.Emit(context.Background(), audit.Event{
			Subject: "settings:heuristics",
			Action:  string(audit.EventHeuristicsReloaded),
			ActorID: audit.ActorSystem,
		}); err != nil {
			log.Warn("failed to emit audit event", "action", audit.EventHeuristicsReloaded, "error", err)
		}
	})

	var validator authmw.TokenValidator
	if cfg.AuthEnabled() {
		validator = jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:    log,
		Latency:   metrics.New(),
		Validator: validator,
		Metrics:   metrics.Handler(),
		Health:    inf.health,
		Modules: []httpapi.Module{
			recordshandler.New(records, log),
			compliancehandler.New(compliance, log),
			dashhandler.New(dashboard, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router, log)

	sweeper := sweep.New(dashboard,
		sweep.WithSchedule(cfg.SweepSchedule),
		sweep.WithAuditEmitter(auditor),
		sweep.WithMetrics(sweep.NewMetrics()),
		sweep.WithLogger(log),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting opsdesk",
			"addr", cfg.Addr,
			"auth", cfg.AuthEnabled(),
			"postgres", cfg.DatabaseURL != "",
			"redis", cfg.Redis.URL != "" || len(cfg.Redis.Addrs) > 0,
			"kafka", len(cfg.Kafka.Brokers) > 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("http server stopped")
		return nil
	})
	g.Go(func() error {
		return settings.Watch(gctx)
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	if inf.relay != nil {
		g.Go(func() error {
			if err := inf.relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func setupInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	inf := &infra{
		records: recordsstore.NewInMemory(),
		audits:  auditmemory.NewInMemoryStore(),
		acks:    dashstore.NewInMemory(cfg.Redis.AckTTL),
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		inf.closers = append(inf.closers, func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			inf.close()
			return nil, err
		}
		auditStore := auditpostgres.New(db)
		inf.records = recordsstore.NewPostgres(db)
		inf.audits = auditStore
		inf.health = append(inf.health, httpapi.HealthCheck{Name: "postgres", Check: db.PingContext})

		if len(cfg.Kafka.Brokers) > 0 {
			client, err := kgo.NewClient(
				kgo.SeedBrokers(cfg.Kafka.Brokers...),
				kgo.DefaultProduceTopic(cfg.Kafka.AuditTopic),
				kgo.RequiredAcks(kgo.AllISRAcks()),
			)
			if err != nil {
				inf.close()
				return nil, fmt.Errorf("create kafka client: %w", err)
			}
			inf.closers = append(inf.closers, client.Close)
			if err := outbox.EnsureTopic(ctx, kadm.NewClient(client), cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
				log.Warn("audit topic bootstrap failed; relay will retry publishing", "error", err)
			}
			inf.relay = outbox.NewRelay(auditStore, client, cfg.Kafka.AuditTopic, log,
				outbox.WithInterval(cfg.Kafka.RelayInterval),
				outbox.WithMetrics(outbox.NewMetrics()),
			)
			inf.health = append(inf.health, httpapi.HealthCheck{Name: "kafka", Check: client.Ping})
		}
	} else if len(cfg.Kafka.Brokers) > 0 {
		log.Warn("KAFKA_BROKERS is set but DATABASE_URL is not; audit relay disabled")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		inf.close()
		return nil, err
	}
	if rc != nil {
		inf.closers = append(inf.closers, func() { _ = rc.Close() })
		inf.acks = dashstore.NewRedis(rc.UniversalClient, cfg.Redis.AckTTL)
		inf.health = append(inf.health, httpapi.HealthCheck{Name: "redis", Check: rc.Health})
	}
	return inf, nil
}
