package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmdash/backoffice-api/internal/config"
	"github.com/crmdash/backoffice-api/internal/handler"
	"github.com/crmdash/backoffice-api/internal/mailer"
	"github.com/crmdash/backoffice-api/internal/repository"
	"github.com/crmdash/backoffice-api/internal/server"
	"github.com/crmdash/backoffice-api/internal/storage"
	"github.com/crmdash/backoffice-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.New(&logger)

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := storage.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	db := client.Database(cfg.MongoDatabase)

	accountRepo := repository.NewAccountMongoRepository(connectCtx, &logger, db)
	leadRepo := repository.NewLeadMongoRepository(db)
	customerRepo := repository.NewCustomerMongoRepository(db)

	var mail usecase.Mailer
	if cfg.SMTP.Enabled {
		mail = mailer.NewMailer(cfg.SMTP)
	} else {
		logger.Warn().Msg("SMTP disabled, outbound email will not be sent")
	}

	authUsecase := usecase.NewAuthUsecase(accountRepo, mail, &logger)
	resetUsecase := usecase.NewPasswordResetUsecase(
		accountRepo,
		mail,
		&logger,
		cfg.PasswordResetURL,
		cfg.PasswordResetTTL,
	)

	// The recovery link is only echoed in the response body when there is
	// no mailer to deliver it out-of-band.
	authHandler := handler.NewAuthHandler(authUsecase, resetUsecase, !cfg.SMTP.Enabled, &logger)
	leadHandler := handler.NewLeadHandler(leadRepo, &logger)
	customerHandler := handler.NewCustomerHandler(customerRepo, &logger)

	srv := server.New(cfg, &logger, authHandler, leadHandler, customerHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shut down HTTP server cleanly")
		}
	}
}
