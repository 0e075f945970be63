// Command fairqueue pushes tagged tasks from several producers through a worker
// pool backed by the fair queue and checks that every tag is handled exactly once.
//
// Usage:
//
//	go run ./cmd/fairqueue -config configs/config.yaml
//	FAIRQUEUE_SERVER_PORT=8080 go run ./cmd/fairqueue
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-fairqueue/pkg/common/http/handler"
	"github.com/huynhanx03/go-fairqueue/pkg/logger"
	"github.com/huynhanx03/go-fairqueue/pkg/settings"
	"github.com/huynhanx03/go-fairqueue/pkg/workerpool"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	cfg, err := settings.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("stress run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *settings.Config, log *zap.Logger) error {
	pool := workerpool.New(cfg.Pool, log.Named("pool"))
	pool.Start(ctx)

	srv := startServer(cfg.Server, pool, log.Named("http"))

	total := cfg.Stress.Producers * cfg.Stress.ItemsPerProducer
	seen := make([]atomic.Int32, total)

	start := time.Now()
	var producers errgroup.Group
	for p := 0; p < cfg.Stress.Producers; p++ {
		id := p
		producers.Go(func() error {
			for i := 0; i < cfg.Stress.ItemsPerProducer; i++ {
				tag := id*cfg.Stress.ItemsPerProducer + i
				err := pool.Submit(func(context.Context) error {
					seen[tag].Add(1)
					return nil
				})
				if err != nil {
					return errors.Wrapf(err, "producer %d", id)
				}
			}
			return nil
		})
	}
	submitErr := producers.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Stress.ShutdownTimeout)*time.Second)
	defer cancel()
	shutdownErr := pool.Shutdown(shutdownCtx)
	elapsed := time.Since(start)

	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}

	if submitErr != nil {
		return submitErr
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	return verify(seen, pool.Stats(), elapsed, log)
}

// verify checks that every tag ran exactly once and that the queue counters balance.
func verify(seen []atomic.Int32, stats workerpool.Stats, elapsed time.Duration, log *zap.Logger) error {
	var missing, duplicated int
	for tag := range seen {
		switch n := seen[tag].Load(); {
		case n == 0:
			missing++
		case n > 1:
			duplicated++
		}
	}

	q := stats.Queue
	log.Info("stress run finished",
		zap.Int("tasks", len(seen)),
		zap.Int("workers", stats.Workers),
		zap.Duration("elapsed", elapsed),
		zap.Uint64("processed", stats.Processed),
		zap.Uint64("failed", stats.Failed),
		zap.Uint64("visited", q.Visited),
		zap.Uint64("fast_dequeues", q.FastDequeues),
		zap.Uint64("parked_dequeues", q.ParkedDequeues),
		zap.Uint64("relays", q.Relays),
		zap.Uint64("spurious_wakeups", q.SpuriousWakeups),
	)

	if missing > 0 || duplicated > 0 {
		return errors.Errorf("%d tags missing, %d tags duplicated", missing, duplicated)
	}
	if q.Visited+uint64(q.Size) != q.Enqueued {
		return errors.Errorf("visited %d + size %d != enqueued %d", q.Visited, q.Size, q.Enqueued)
	}
	return nil
}

// startServer serves the stats endpoints when a port is configured.
func startServer(cfg settings.Server, src handler.StatsSource, log *zap.Logger) *http.Server {
	if cfg.Port == 0 {
		return nil
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler.NewRouter(cfg.Mode, src),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("stats server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("stats server stopped", zap.Error(err))
		}
	}()
	return srv
}
