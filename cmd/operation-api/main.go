package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/atadzan/calc-operation-api/internal/account"
	"github.com/atadzan/calc-operation-api/internal/calculator"
	"github.com/atadzan/calc-operation-api/internal/config"
	"github.com/atadzan/calc-operation-api/internal/delivery"
	"github.com/atadzan/calc-operation-api/internal/orchestrator"
	"github.com/atadzan/calc-operation-api/internal/pricing"
	"github.com/atadzan/calc-operation-api/internal/repository"
	"github.com/atadzan/calc-operation-api/internal/retry"
	"github.com/atadzan/calc-operation-api/pkg/database"
	"github.com/atadzan/calc-operation-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err = run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("operation api stopped with error")
	}
	log.Info().Msg("operation api stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := orchestrator.NewHealthServer(log)

	dbConn, err := database.NewDBConn(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err = repository.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("migration err: %w", err)
	}

	store, err := repository.NewOperationRecordStore(dbConn, retry.Exponential(cfg.SaveRetryMax, cfg.SaveRetryBase), log)
	if err != nil {
		return err
	}
	types := repository.NewOperationTypeRepository(dbConn)

	invoker, target, err := newAccountInvoker(ctx, cfg, log)
	if err != nil {
		return err
	}
	debiter := account.NewClient(invoker, account.Config{
		Target:      target,
		DebitPath:   cfg.DebitPath,
		ProfilePath: cfg.ProfilePath,
	}, log)

	evaluator := calculator.NewEvaluator(calculator.NewRandomStringClient(cfg.RandomStringEndpoint, cfg.RemoteTimeout, log))
	pipeline := orchestrator.NewPipeline(pricing.NewResolver(types), evaluator, debiter, store, types, cfg.AnnualTarget, log)

	server := delivery.NewServer(delivery.ServerConfig{
		Port:      cfg.HTTPPort,
		Log:       log,
		Service:   pipeline,
		Validator: delivery.NewTokenValidator(cfg.JWTSecret),
	})

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("error while starting gRPC port %d: %w", cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- health.Serve(lis) }()
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	health.MarkServing()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err = <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	health.Shutdown(shutdownCtx)
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("HTTP server shutdown failed")
	}
	return err
}

// newAccountInvoker returns the configured transport and the target it expects.
func newAccountInvoker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (account.Invoker, string, error) {
	switch cfg.AccountInvoker {
	case config.InvokerLambda:
		client, err := account.NewLambdaClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, "", err
		}
		return account.NewLambdaInvoker(client, log), cfg.AccountFunctionARN, nil
	default:
		return account.NewHTTPInvoker(cfg.RemoteTimeout, log), cfg.AccountServiceURL, nil
	}
}
