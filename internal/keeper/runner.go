// internal/keeper/runner.go
package keeper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/percolator-keeper/internal/blockchain"
	"github.com/rovshanmuradov/percolator-keeper/internal/config"
	"github.com/rovshanmuradov/percolator-keeper/internal/logger"
	"github.com/rovshanmuradov/percolator-keeper/internal/wallet"
)

// Runner wires configuration and key material into the scheduler loop and
// supervises it alongside the metrics reporter. Initialization failures
// are fatal; once the loop is running, nothing short of a signal or
// context cancellation stops it.
type Runner struct {
	cfg        *config.Config
	log        *logger.Logger
	metrics    *Metrics
	shutdownCh chan os.Signal
}

func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		log:        log,
		metrics:    NewMetrics(),
		shutdownCh: make(chan os.Signal, 1),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	startupLog := r.log.WithOperation("startup")

	w, err := wallet.New(r.cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("no usable keeper wallet key: %w", err)
	}
	startupLog.Info("Keeper wallet loaded", zap.String("address", w.String()))

	selector, err := blockchain.NewSelector(r.cfg.RPCList, r.log.Logger)
	if err != nil {
		return fmt.Errorf("failed to build RPC selector: %w", err)
	}
	acquire := func(ctx context.Context) (Ledger, error) {
		conn, err := selector.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	decoder := OffsetDecoder{
		SlabSlotOffset:   r.cfg.SlabSlotOffset,
		OracleSlotOffset: r.cfg.OracleSlotOffset,
	}
	oracle := NewOracle(r.cfg.SlabKey(), r.cfg.OracleKey(), r.cfg.StalenessThreshold, decoder, r.log.Logger)
	guard := NewFeeGuard(r.cfg.MaxFeeLamports, r.log.Logger)
	executor := NewExecutor(ExecutorConfig{
		ProgramID:   r.cfg.ProgramKey(),
		Slab:        r.cfg.SlabKey(),
		Oracle:      r.cfg.OracleKey(),
		MaxAttempts: r.cfg.MaxAttempts,
		BackoffBase: time.Duration(r.cfg.RetryBaseDelayMs) * time.Millisecond,
	}, guard, w, acquire, r.metrics, r.log.Logger)

	loop := NewLoop(oracle, executor, acquire,
		time.Duration(r.cfg.PollIntervalMs)*time.Millisecond, r.log.Logger)
	reporter := NewReporter(r.metrics,
		time.Duration(r.cfg.ReportIntervalSec)*time.Second, r.log.Logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-r.shutdownCh
		r.log.Info("Signal received: " + sig.String())
		cancel()
	}()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error { return loop.Run(gCtx) })
	g.Go(func() error { return reporter.Run(gCtx) })
	if r.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gCtx, r.cfg.MetricsAddr, r.metrics.Handler(), r.log.WithComponent("metrics-server"))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
