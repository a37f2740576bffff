package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"classifieds/internal/auth"
	grpcserver "classifieds/internal/grpc"
	"classifieds/internal/httpapi"
	"classifieds/internal/logger"
	"classifieds/internal/service"
	"classifieds/repository"
)

const shutdownTimeout = 5 * time.Second

// serveCmd runs the HTTP API and the gRPC health endpoint
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Open the database (applying pending migrations), then serve the JSON API on
HTTP_ADDRESS and the gRPC health service on GRPC_ADDRESS until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	h, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(); err != nil {
			logger.Warningf("close db: %v", err)
		}
	}()
	store := repository.NewStore(h)

	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	svc := service.New(service.Deps{
		Store:           store,
		Codec:           codec,
		Hasher:          auth.NewHasher(cfg.Auth.BcryptCost),
		SuperuserEmails: cfg.Auth.SuperuserEmails,
	})
	router := httpapi.NewRouter(httpapi.Options{
		Services:     svc,
		Gate:         auth.NewGate(codec, store),
		Health:       store,
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		SessionTTL:   codec.TTL(),
	})

	stopHTTP, err := httpapi.Start(cfg.HTTP.Address, router)
	if err != nil {
		return err
	}
	stopGRPC, err := grpcserver.StartGRPC(cfg, store)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = stopHTTP(ctx)
		return err
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logger.Noticef("received %v, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stopHTTP(ctx); err != nil {
		logger.Warningf("http shutdown error: %v", err)
	}
	if err := stopGRPC(ctx); err != nil {
		logger.Warningf("grpc shutdown error: %v", err)
	}
	return nil
}
