package main

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/qmdx00/lifecycle"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"lecture-scheduler/core"
	"lecture-scheduler/pkg/resources"
	"lecture-scheduler/pkg/servers"
)

func main() {
	var err error

	name, version := "lecture-scheduler", "1.0"

	// 1. Config (Logger base included)
	resources.LoadConfig()

	level, err := zerolog.ParseLevel(viper.GetString("LOG_LEVEL"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := log.Logger.WithContext(context.Background())
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 2. Telemetry (traces/metrics/logs)
	stopTracerFn, err := resources.CreateTracer(ctx)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to setup otel tracing")
	}
	defer func() { _ = stopTracerFn(ctx) }()

	stopMeterFn, err := resources.CreateMeter(ctx)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to setup otel metrics")
	}
	defer func() { _ = stopMeterFn(ctx) }()

	stopLoggerFn, err := resources.CreateLogger(ctx)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to setup otel logs")
	}
	defer func() { _ = stopLoggerFn(ctx) }()

	// 3. Bridge zerolog -> OTel Logs (still prints to stdout; additionally exports via OTLP to the collector)
	log.Logger = log.Logger.Hook(resources.NewZerologHook(name, version))
	ctx = log.Logger.WithContext(ctx)

	// 4. Core resources and startup load (a missing snapshot is not fatal)
	store := core.NewSnapshotStore(viper.GetString("SAVE_FILE"))
	repository := core.NewRepository()

	events, err := store.Load(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		startupLogger.Warn().Str("file", viper.GetString("SAVE_FILE")).Msg("no snapshot file, starting with an empty schedule")
	case err != nil:
		startupLogger.Error().Err(err).Msg("failed to load snapshot, starting with an empty schedule")
	default:
		repository.Replace(ctx, events)
		startupLogger.Info().Int("events", len(events)).Msg("snapshot loaded")
	}

	// 5. Wiring
	scheduler := core.NewScheduler(repository, store)
	handlers := core.NewHandlers(repository)

	// 6. Daemons/servers setup

	gin.SetMode(gin.ReleaseMode)

	adminHandler := gin.Default()
	adminHandler.Use(otelgin.Middleware(name))
	adminHandler.Use(resources.NewHTTPMetrics(name).Middleware())

	adminHandler.GET("/healthz", handlers.GetHealth)
	adminHandler.GET("/events", handlers.GetEvents)
	adminHandler.GET("/calendar.ics", handlers.GetCalendar)

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	flusher := cron.New()
	_, err = flusher.AddFunc(viper.GetString("SNAPSHOT_CRON"), func() {
		if flushErr := scheduler.Flush(ctx); flushErr != nil {
			log.Ctx(ctx).Error().Err(flushErr).Str("component", "cron-server").Msg("periodic snapshot flush failed")
		}
	})
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to schedule snapshot flush")
	}

	// 7. Daemons/servers lifecycle

	app := lifecycle.NewApp(
		lifecycle.WithName(name),
		lifecycle.WithVersion(version),
	)

	app.Attach(servers.BuildBaseServer())

	schedulerAddress := net.JoinHostPort(viper.GetString("SERVER_HOST"), viper.GetString("SERVER_PORT"))
	app.Attach(servers.BuildTcpServer(schedulerAddress, scheduler))

	adminAddress := net.JoinHostPort(viper.GetString("SERVER_HOST"), viper.GetString("ADMIN_PORT"))
	app.Attach(servers.BuildHttpServer("admin-server", &http.Server{Addr: adminAddress, Handler: adminHandler}))

	debugAddress := net.JoinHostPort(viper.GetString("SERVER_HOST"), viper.GetString("DEBUG_PORT"))
	app.Attach(servers.BuildHttpServer("debug-server", &http.Server{Addr: debugAddress, Handler: debugHandler}))

	app.Attach(servers.BuildCronServer(flusher))

	startupLogger.Info().Msg("application running")

	// 8. Run until a shutdown signal; Stop performs the final save
	if err = app.Run(); err != nil {
		shutdownLogger.Error().Err(err).Msg("runtime error")
	}
}
