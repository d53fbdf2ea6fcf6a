package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"weddingsite/config"
	authadapter "weddingsite/internal/adapters/auth"
	emailadapter "weddingsite/internal/adapters/email"
	delivery "weddingsite/internal/delivery/http"
	"weddingsite/internal/delivery/http/controllers"
	"weddingsite/internal/delivery/http/middleware"
	"weddingsite/internal/repository/postgres"
	"weddingsite/internal/services"
)

func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("database open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: emailadapter.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer init failed", "err", err)
		os.Exit(1)
	}

	issuer, verifier := authadapter.NewJWTTokens(cfg.JWTSecret)
	access := services.NewAccessService(cfg.SitePassword, cfg.AdminPassword, authadapter.NewSecretChecker(), issuer, verifier, cfg.AccessExpiry)

	guestRepo := postgres.NewGuestRepository(db)
	directory := services.NewDirectoryService(guestRepo, logger)
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	rsvp := services.NewRSVPService(guestRepo, directory, emailService, logger)

	secureCookies := cfg.Environment == "production"
	authController := controllers.NewAuthController(logger, access, secureCookies)
	rsvpController := controllers.NewRSVPController(logger, rsvp)
	guestController := controllers.NewGuestController(logger, directory, cfg.CORSOrigins)

	mux := delivery.NewRouter(authController, rsvpController, guestController, access)
	handler := middleware.CORS(cfg.CORSOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			logger.Error("http: server failed", "addr", srv.Addr, "err", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http: graceful shutdown failed", "err", err)
		exitCode = 1
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	logger.Info("stopped")
}
