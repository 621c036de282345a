package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/api/handler"
	"github.com/chai-nz/cafe-service/internal/cache"
	"github.com/chai-nz/cafe-service/internal/config"
	"github.com/chai-nz/cafe-service/internal/db"
	"github.com/chai-nz/cafe-service/internal/db/repository"
	"github.com/chai-nz/cafe-service/internal/logger"
	"github.com/chai-nz/cafe-service/internal/router"
	"github.com/chai-nz/cafe-service/internal/service"
	"github.com/chai-nz/cafe-service/internal/websockets"
)

const cleanupInterval = time.Hour

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	database, err := db.NewPostgres(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(cfg.Database); err != nil {
		zlog.Fatal("failed to run database migrations", zap.Error(err))
	}

	// Redis is optional; without it unread counts hit the database each poll
	var notificationCache service.NotificationCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, zlog)
		if err != nil {
			zlog.Warn("redis unavailable, unread counts will not be cached", zap.Error(err))
		} else {
			defer redisCache.Close()
			notificationCache = redisCache
		}
	}

	hub := websockets.NewHub(zlog)
	go hub.Run()

	repos := repository.NewFactory(database.DB)

	tokenService := service.NewTokenService(repos.Token)
	authService := service.NewAuthService(repos.User, tokenService, repos.OTP,
		service.NewLogSMSSender(zlog),
		service.JWTConfig{Secret: cfg.JWT.Secret, ExpiresIn: cfg.JWT.ExpiresIn},
		zlog)
	notificationService := service.NewNotificationService(repos.Notification, notificationCache, hub, zlog)
	pricer := service.NewPricer(repos.Catalog)
	orderService := service.NewOrderService(repos.Order, pricer, notificationService, zlog)
	invitationService := service.NewInvitationService(repos.Invitation, repos.User,
		service.InvitationConfig{
			FrontendURL: cfg.App.FrontendURL,
			TableTTL:    time.Duration(cfg.Invitations.TableTTLHours) * time.Hour,
			StaffTTL:    time.Duration(cfg.Invitations.StaffTTLDays) * 24 * time.Hour,
		}, zlog)
	guestService := service.NewGuestService(repos.Invitation, repos.User, tokenService, repos.Session,
		service.GuestConfig{
			AccountTTL: time.Duration(cfg.Guest.AccountTTLHours) * time.Hour,
			SessionTTL: time.Duration(cfg.Guest.SessionTTLHours) * time.Hour,
		}, zlog)

	r := router.New(router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Order:        handler.NewOrderHandler(orderService, hub),
		Guest:        handler.NewGuestHandler(guestService),
		Invitation:   handler.NewInvitationHandler(invitationService),
		Notification: handler.NewNotificationHandler(notificationService),
		WebSocket:    handler.NewWebSocketHandler(authService, hub),
	}, authService, tokenService, zlog)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// Janitor sweeps expired invitations, credentials, sessions, guest
	// accounts, and stale OTPs.
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runJanitor(janitorCtx, zlog, guestService, invitationService, repos.Order, repos.OTP)

	go func() {
		zlog.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited properly")
}

// runJanitor runs the expiry sweeps on an hourly tick
func runJanitor(ctx context.Context, zlog *zap.Logger, guests *service.GuestService, invitations *service.InvitationService, orders service.OrderStore, otps service.OTPStore) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)

			if _, err := invitations.CleanupExpired(sweepCtx); err != nil {
				zlog.Warn("invitation cleanup failed", zap.Error(err))
			}
			if err := guests.CleanupExpired(sweepCtx, orders); err != nil {
				zlog.Warn("guest cleanup failed", zap.Error(err))
			}
			if _, err := otps.DeleteExpired(sweepCtx, time.Now()); err != nil {
				zlog.Warn("otp cleanup failed", zap.Error(err))
			}

			cancel()
		}
	}
}
