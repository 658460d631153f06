package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/class-marketplace/internal/auth"
	"github.com/vasiliy-maslov/class-marketplace/internal/config"
	"github.com/vasiliy-maslov/class-marketplace/internal/db"
	handler "github.com/vasiliy-maslov/class-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/class-marketplace/internal/order"
	"github.com/vasiliy-maslov/class-marketplace/internal/product"
	"github.com/vasiliy-maslov/class-marketplace/internal/upload"
	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "class-marketplace").Logger()

	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	log.Info().Msg("API starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.Migrate(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	pg, err := db.New(connectCtx, cfg.Postgres)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userSvc := user.NewService(user.NewRepository(pg.Pool))
	productSvc := product.NewService(product.NewRepository(pg.Pool))
	orderSvc := order.NewService(order.NewRepository(pg.Pool), productSvc)

	router := handler.NewRouter(handler.Handlers{
		Auth:           handler.NewAuthenticator(tokens, userSvc),
		Users:          handler.NewUserHandler(userSvc, tokens),
		Products:       handler.NewProductHandler(productSvc),
		Orders:         handler.NewOrderHandler(orderSvc),
		Uploads:        handler.NewUploadHandler(upload.NewStorage(cfg.Upload.Dir)),
		UploadDir:      cfg.Upload.Dir,
		PayPalClientID: cfg.PayPal.ClientID,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
