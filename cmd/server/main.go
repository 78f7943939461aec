// Command server runs the offsite profiling portal: a multi-step wizard that
// institutional intermediaries step through before their profile is submitted
// to the regulator's ingestion endpoint.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"offsite/internal/audit"
	auditkafka "offsite/internal/audit/kafka"
	"offsite/internal/platform/config"
	"offsite/internal/platform/httpserver"
	"offsite/internal/platform/logger"
	"offsite/internal/platform/metrics"
	platformredis "offsite/internal/platform/redis"
	"offsite/internal/profiling/draft"
	"offsite/internal/profiling/handler"
	"offsite/internal/profiling/ingest"
	"offsite/internal/profiling/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	drafts, cleanup, err := newDraftStore(cfg, log)
	if err != nil {
		return fmt.Errorf("draft store: %w", err)
	}
	defer cleanup()

	publisher, err := newAuditPublisher(cfg, log)
	if err != nil {
		return fmt.Errorf("audit publisher: %w", err)
	}
	if closer, ok := publisher.(*auditkafka.Publisher); ok {
		defer closer.Close()
	}

	m := metrics.New()
	submitter := ingest.New(cfg.Ingest)
	wizard := service.NewService(drafts, submitter, publisher, m, log,
		service.WithIdleTTL(cfg.SessionIdleTTL),
	)

	router := chi.NewRouter()
	handler.New(wizard, log, 60*time.Second).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting offsite profiling portal", "addr", cfg.Addr, "draft_backend", cfg.DraftBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// newDraftStore builds the configured draft backend. The returned cleanup
// releases the backing connection and is safe to call on every path.
func newDraftStore(cfg config.Config, log *slog.Logger) (draft.Store, func(), error) {
	switch cfg.DraftBackend {
	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, fmt.Errorf("redis draft backend selected but OFFSITE_REDIS_URL is empty")
		}
		return draft.NewRedisStore(client.Client), func() { _ = client.Close() }, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		if _, err := db.Exec(draft.Schema); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure draft schema: %w", err)
		}
		return draft.NewPostgresStore(db), func() { _ = db.Close() }, nil
	case "", "memory":
		log.Warn("using in-memory draft store; drafts will not survive a restart")
		return draft.NewInMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown draft backend %q", cfg.DraftBackend)
	}
}

// newAuditPublisher connects the Kafka audit trail when brokers are
// configured; otherwise events stay in process memory.
func newAuditPublisher(cfg config.Config, log *slog.Logger) (audit.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("no kafka brokers configured; audit events are kept in memory only")
		return audit.NewMemoryPublisher(), nil
	}
	return auditkafka.New(cfg.Kafka, log)
}
