package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/nimbusrelay/signalcore/internal/config"
	"github.com/nimbusrelay/signalcore/internal/dispatch"
	"github.com/nimbusrelay/signalcore/internal/health"
	"github.com/nimbusrelay/signalcore/internal/logging"
	"github.com/nimbusrelay/signalcore/internal/ratelimit"
	"github.com/nimbusrelay/signalcore/internal/remotectl"
	"github.com/nimbusrelay/signalcore/internal/roomengine"
	"github.com/nimbusrelay/signalcore/internal/tracing"
	"github.com/nimbusrelay/signalcore/internal/transport"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Absence of a .env file is normal outside local development.
	}

	if err := logging.Initialize(os.Getenv("DEVELOPMENT_MODE") == "true"); err != nil {
		panic(err)
	}
	log := logging.GetLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	shutdownTracing, err := tracing.Init(context.Background(), "signalcore", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	limiter, err := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RateLimitWSIP, cfg.RateLimitWSEvent, true)
	if err != nil {
		log.Fatal("failed to initialize rate limiter", zap.Error(err))
	}

	gateway := transport.New(cfg.RemoteControlToken, cfg.CORSOrigins, limiter)
	rooms := roomengine.New(gateway, cfg.RoomAutoCreateOnJoin)
	remote := remotectl.New(gateway, rooms, cfg.AllowSameMachineRemote)
	gateway.SetRouter(dispatch.New(rooms, remote))

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("signalcore"))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins
	corsCfg.AllowCredentials = true
	router.Use(cors.New(corsCfg))

	router.GET("/health", health.Liveness)
	router.GET("/downloads/host-app-win.zip", health.Downloads(cfg.DownloadZipPath))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", gateway.ServeWS)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("signalcore starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
