package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/yaokonan/terrain-booking/external/bookingapi"
	"github.com/yaokonan/terrain-booking/external/imagestore"
	"github.com/yaokonan/terrain-booking/internal/config"
	"github.com/yaokonan/terrain-booking/internal/interfaces/httpapi"
	"github.com/yaokonan/terrain-booking/internal/observability"
	"github.com/yaokonan/terrain-booking/internal/platform/cache"
	idgen "github.com/yaokonan/terrain-booking/internal/platform/id"
	"github.com/yaokonan/terrain-booking/internal/platform/logging"
	"github.com/yaokonan/terrain-booking/internal/platform/resilience"
	"github.com/yaokonan/terrain-booking/internal/usecase"
)

// Application wires configuration, observability, the booking platform
// client, and the HTTP server into one unit cmd/api can run and shut down.
type Application struct {
	Config config.Config
	Logger *logging.Logger
	Server *http.Server

	warm     *usecase.CatalogWarmService
	pprofSrv *http.Server
	cleanups []func(context.Context) error
}

func New(cfg config.Config) (*Application, error) {
	a := &Application{Config: cfg}

	logger, logShutdown, err := observability.InitBetterStackLogger(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a.Logger = logger
	a.cleanups = append(a.cleanups, logShutdown)
	logging.SetDefault(logger)

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	a.cleanups = append(a.cleanups, uptraceShutdown)

	pyroscopeStop, err := observability.InitPyroscope(cfg, slogger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	a.cleanups = append(a.cleanups, func(context.Context) error { return pyroscopeStop() })

	pprofSrv, err := observability.StartPprofServer(cfg, slogger)
	if err != nil {
		return nil, fmt.Errorf("start pprof server: %w", err)
	}
	a.pprofSrv = pprofSrv

	client := bookingapi.NewClient(bookingapi.ClientConfig{
		BaseURL:    cfg.BookingAPIBaseURL,
		Token:      cfg.BookingAPIToken,
		Timeout:    cfg.BookingAPITimeout,
		MaxRetries: cfg.BookingAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.BookingAPICircuitEnabled,
			FailureThreshold: cfg.BookingAPICircuitFailureCount,
			OpenTimeout:      cfg.BookingAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BookingAPICircuitHalfOpenMaxReq,
		},
	})

	catalogs := make(map[string]*usecase.SportCatalogService, len(cfg.WarmRegions))
	for _, region := range cfg.WarmRegions {
		catalogs[region] = usecase.NewSportCatalogService(client, cfg.SportCacheTTL, logger)
	}
	primary, ok := catalogs[config.DefaultWarmRegion]
	if !ok {
		primary = catalogs[cfg.WarmRegions[0]]
	}

	sessions := cache.NewStore[*usecase.Session](cfg.FormSessionTTL, cfg.FormSessionMaxEntries)
	imageReader := imagestore.NewHTTPReader(nil, imagestore.DefaultMaxImageBytes, logger)

	formService := usecase.NewFormService(
		sessions,
		idgen.NewRandomGenerator("form"),
		client,
		primary,
		imageReader,
		logger,
	)
	a.warm = usecase.NewCatalogWarmService(catalogs, cfg.WarmMaxWorkers, logger)

	handler := httpapi.NewHandler(formService, primary, a.warm, logger)
	router := httpapi.NewRouter(handler, slogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.Server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

// Start launches the periodic catalog warm loop when one is configured.
// Serving HTTP is left to the caller via a.Server.
func (a *Application) Start() {
	if a.Config.WarmInterval > 0 {
		a.warm.RunEvery(a.Config.WarmInterval)
		a.Logger.Info("catalog warm loop started",
			"interval", a.Config.WarmInterval,
			"regions", len(a.Config.WarmRegions),
		)
	}
}

// Shutdown stops the warm loop, drains the HTTP servers, and tears down
// observability in reverse init order.
func (a *Application) Shutdown(ctx context.Context) error {
	var firstErr error

	a.warm.Stop()

	if err := a.Server.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("shutdown http server: %w", err)
	}
	if err := observability.StopPprofServer(a.pprofSrv, nil, 5*time.Second); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("shutdown pprof server: %w", err)
	}

	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func slogLevel(level logging.Level) slog.Level {
	switch {
	case level <= zapcore.DebugLevel:
		return slog.LevelDebug
	case level == zapcore.InfoLevel:
		return slog.LevelInfo
	case level == zapcore.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
