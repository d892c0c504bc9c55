package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/WhitelistAdmin/internal/config"
	"github.com/router-for-me/WhitelistAdmin/internal/db"
	internalhttp "github.com/router-for-me/WhitelistAdmin/internal/http"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin"
	"github.com/router-for-me/WhitelistAdmin/internal/http/api/admin/handlers"
	"github.com/router-for-me/WhitelistAdmin/internal/http/flash"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/view"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// Options holds process-level inputs shared by every command.
type Options struct {
	ConfigPath string
}

// CreateAdminParams holds inputs for admin creation.
type CreateAdminParams struct {
	Username     string
	Password     string
	IsAdmin      bool
	UserType     string
	Capabilities []string
}

func openDatabase(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	conn, errOpen := db.Open(cfg.Database.DSN, db.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		TimeZone:        cfg.Database.TimeZone,
	})
	if errOpen != nil {
		return nil, errOpen
	}
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		_ = closeDatabase(conn)
		return nil, errMigrate
	}
	return conn, nil
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, opts Options) error {
	cfg, errLoad := config.Load(opts.ConfigPath)
	if errLoad != nil {
		return errLoad
	}
	conn, errOpen := openDatabase(ctx, cfg)
	if errOpen != nil {
		return errOpen
	}
	log.WithField("dialect", db.DialectName(conn)).Info("migrations applied")
	return closeDatabase(conn)
}

// CreateAdmin stores a new admin account.
func CreateAdmin(ctx context.Context, opts Options, params CreateAdminParams) (models.Admin, error) {
	cfg, errLoad := config.Load(opts.ConfigPath)
	if errLoad != nil {
		return models.Admin{}, errLoad
	}
	conn, errOpen := openDatabase(ctx, cfg)
	if errOpen != nil {
		return models.Admin{}, errOpen
	}
	defer func() { _ = closeDatabase(conn) }()

	admin, errNew := handlers.NewAdminAccount(params.Username, params.Password, params.IsAdmin, params.UserType, params.Capabilities)
	if errNew != nil {
		return models.Admin{}, errNew
	}
	if errCreate := conn.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return models.Admin{}, fmt.Errorf("app: create admin %s: %w", admin.Username, errCreate)
	}
	return admin, nil
}

// NewFlashStore builds the configured flash store. The returned pinger is nil for cookie storage.
func NewFlashStore(ctx context.Context, cfg config.Config) (flash.Store, handlers.Pinger, error) {
	switch cfg.Flash.Driver {
	case config.FlashDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Flash.RedisAddr,
			Password: cfg.Flash.RedisPassword,
			DB:       cfg.Flash.RedisDB,
		})
		store := flash.NewRedisStore(client, cfg.Flash.TTL, cfg.Admin.SecureCookies)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if errPing := store.Ping(pingCtx); errPing != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("app: connect redis %s: %w", cfg.Flash.RedisAddr, errPing)
		}
		return store, store, nil
	default:
		return flash.NewCookieStore(cfg.Flash.TTL, cfg.Admin.SecureCookies), nil, nil
	}
}

// BuildEngine assembles the gin engine with every route.
func BuildEngine(conn *gorm.DB, cfg config.Config, flashStore flash.Store, checks map[string]handlers.Pinger) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery(), internalhttp.RequestLogMiddleware())
	if errView := view.Install(engine); errView != nil {
		return nil, fmt.Errorf("app: load views: %w", errView)
	}

	engine.GET("/healthz", handlers.NewHealthHandler(conn, checks).Healthz)
	if !cfg.Metrics.Disabled {
		engine.GET("/"+strings.Trim(cfg.Metrics.Path, "/"), gin.WrapH(promhttp.Handler()))
	}
	if errRoutes := admin.RegisterAdminRoutes(engine, conn, cfg, flashStore); errRoutes != nil {
		return nil, errRoutes
	}
	return engine, nil
}

// RunServer serves the admin API until ctx is cancelled.
func RunServer(ctx context.Context, opts Options) error {
	cfg, errLoad := config.Load(opts.ConfigPath)
	if errLoad != nil {
		return errLoad
	}
	logCloser, errLogging := config.SetupLogging(cfg.Logging)
	if errLogging != nil {
		return errLogging
	}
	defer func() { _ = logCloser.Close() }()

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return errors.New("app: jwt.secret is required")
	}
	gin.SetMode(cfg.Server.Mode)

	conn, errOpen := openDatabase(ctx, cfg)
	if errOpen != nil {
		return errOpen
	}
	defer func() { _ = closeDatabase(conn) }()

	flashStore, flashPinger, errFlash := NewFlashStore(ctx, cfg)
	if errFlash != nil {
		return errFlash
	}
	checks := map[string]handlers.Pinger{}
	if flashPinger != nil {
		checks["flash"] = flashPinger
	}

	engine, errEngine := BuildEngine(conn, cfg, flashStore, checks)
	if errEngine != nil {
		return errEngine
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      internalhttp.MethodOverride(engine),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting whitelist admin on %s (config=%s)", server.Addr, config.ResolveConfigPath(opts.ConfigPath))
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
		close(errCh)
	}()

	select {
	case errServe, ok := <-errCh:
		if ok {
			return errServe
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down whitelist admin")
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("app: shutdown: %w", errShutdown)
	}
	return nil
}

func closeDatabase(conn *gorm.DB) error {
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return errDB
	}
	return sqlDB.Close()
}
