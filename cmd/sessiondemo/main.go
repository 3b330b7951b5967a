package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/sessioncache"
	"github.com/unkn0wn-root/sessioncache/httpsession"
	"github.com/unkn0wn-root/sessioncache/httpsession/ginsession"
	"github.com/unkn0wn-root/sessioncache/internal/config"
	zaplog "github.com/unkn0wn-root/sessioncache/log/zap"
	pr "github.com/unkn0wn-root/sessioncache/provider"
	"github.com/unkn0wn-root/sessioncache/provider/bigcache"
	redisprov "github.com/unkn0wn-root/sessioncache/provider/redis"
	"github.com/unkn0wn-root/sessioncache/provider/ristretto"
)

func main() {
	cfg, cfgErr := config.Load()
	zl, err := newLogger(cfgErr == nil && cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	if cfgErr != nil {
		zl.Fatal("config", zap.Error(cfgErr))
	}
	log := zaplog.ZapLogger{L: zl}

	conn := sessioncache.NewConnection(dialer(cfg), log)
	cache, err := sessioncache.New(sessioncache.Options{
		Namespace:  cfg.Namespace,
		Conn:       conn,
		Logger:     log,
		BackendTTL: cfg.BackendTTL,
	})
	if err != nil {
		zl.Fatal("cache", zap.Error(err))
	}
	sessions, err := httpsession.NewManager(cache, httpsession.Options{
		IdleTimeout: cfg.IdleTimeout,
		Logger:      log,
	})
	if err != nil {
		zl.Fatal("sessions", zap.Error(err))
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), ginsession.Middleware(sessions))
	r.GET("/", visits)
	r.POST("/logout", func(c *gin.Context) {
		ginsession.Get(c).Abandon()
		c.Status(http.StatusNoContent)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server", zap.Error(err))
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown", zap.Error(err))
	}
	if err := conn.Close(shutdownCtx); err != nil {
		zl.Warn("close backend", zap.Error(err))
	}
}

func visits(c *gin.Context) {
	s := ginsession.Get(c)
	n, _ := s.GetInt("visits")
	n++
	s.SetInt("visits", n)
	c.String(http.StatusOK, "visits: "+strconv.Itoa(int(n))+"\n")
}

func dialer(cfg config.Config) pr.Dialer {
	switch cfg.Backend {
	case "redis":
		return redisprov.Dial(redisprov.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "ristretto":
		return ristretto.Dial(ristretto.Config{NumCounters: 1e6, MaxCost: 64 << 20, BufferItems: 64})
	default:
		return bigcache.Dial(bigcache.Config{LifeWindow: 2 * cfg.IdleTimeout})
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
