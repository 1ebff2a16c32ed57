package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openqb/quizroom-backend/internal/auth"
	"github.com/openqb/quizroom-backend/internal/config"
	"github.com/openqb/quizroom-backend/internal/httpapi"
	"github.com/openqb/quizroom-backend/internal/logging"
	"github.com/openqb/quizroom-backend/internal/metrics"
	"github.com/openqb/quizroom-backend/internal/moderation"
	"github.com/openqb/quizroom-backend/internal/questions"
	"github.com/openqb/quizroom-backend/internal/registry"
	"github.com/openqb/quizroom-backend/internal/room"
	"github.com/openqb/quizroom-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	checker := moderation.NewListChecker(cfg.Denylist)
	source := questions.NewMemorySource(questions.SampleTossups(), time.Now().UnixNano())
	verifier := auth.NewJWTVerifier(cfg.SessionSecret)

	deps := room.Deps{
		Logger:    logger,
		Clock:     clockwork.NewRealClock(),
		Source:    source,
		Judge:     room.DefaultPolicy(),
		Checker:   checker,
		Metrics:   m,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}

	reg := registry.New(ctx, deps, cfg.PermanentRooms)
	wsHandler := ws.NewHandler(reg, checker, verifier, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(reg, wsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
