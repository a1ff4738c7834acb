package main

import (
	"VPN-Admin-dashboard/config"
	"VPN-Admin-dashboard/internal/api"
	"VPN-Admin-dashboard/internal/db"
	"VPN-Admin-dashboard/internal/jobs"
	"VPN-Admin-dashboard/internal/logger"
	"VPN-Admin-dashboard/internal/session"
	"VPN-Admin-dashboard/internal/web"
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	config.LoadConfig()
	cfg := config.AppCfg
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AlertBotToken != "" {
		botapi, err := tgbotapi.NewBotAPI(cfg.AlertBotToken)
		if err != nil {
			log.Fatalf("Failed to create alert bot: %v", err)
		}
		logger.InitNotifier(botapi, cfg.AdminTelegram)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	mgr := session.NewManager(store, cfg.SessionTTL)

	apiCfg := api.Config{
		BaseURL:    cfg.APIURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
	probe := jobs.NewHealthProbe(api.New(apiCfg, nil))

	gin.SetMode(gin.ReleaseMode)
	srv := web.New(web.Options{
		API:            apiCfg,
		Manager:        mgr,
		Signer:         session.NewSigner(cfg.SessionSecret),
		Health:         probe,
		SessionTTL:     cfg.SessionTTL,
		CookieSecure:   cfg.CookieSecure,
		MetricsEnabled: cfg.MetricsEnabled,
		TrustedProxies: cfg.TrustedProxies,
	})

	c, err := jobs.Start(cfg.HealthSchedule, probe, jobs.NewSessionSweep(srv, mgr))
	if err != nil {
		log.Fatalf("Invalid HEALTH_INTERVAL %q: %v", cfg.HealthSchedule, err)
	}
	go probe.Run()

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("dashboard listening", zap.String("addr", cfg.ListenAddr), zap.String("api", cfg.APIURL), zap.String("store", cfg.SessionStore))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	<-c.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the configured token store, sealed with the session secret.
func openStore(ctx context.Context, cfg config.AppConfig) (session.Store, error) {
	var store session.Store
	switch cfg.SessionStore {
	case config.StorePostgres:
		gdb, err := db.InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = session.NewGormStore(gdb)
	case config.StoreRedis:
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		store = session.NewRedisStore(rdb, "vpn-admin")
	default:
		store = session.NewMemoryStore()
	}
	return session.Sealed(store, cfg.SessionSecret)
}
