package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcAdapter "github.com/quentinrf/darkwatt/internal/adapters/grpc"
	"github.com/quentinrf/darkwatt/internal/adapters/discovery"
	"github.com/quentinrf/darkwatt/internal/adapters/htmldoc"
	"github.com/quentinrf/darkwatt/internal/adapters/kernel"
	"github.com/quentinrf/darkwatt/internal/adapters/memory"
	"github.com/quentinrf/darkwatt/internal/adapters/mock"
	"github.com/quentinrf/darkwatt/internal/adapters/procstat"
	"github.com/quentinrf/darkwatt/internal/adapters/screen"
	"github.com/quentinrf/darkwatt/internal/adapters/sqlite"
	"github.com/quentinrf/darkwatt/internal/adapters/web"
	"github.com/quentinrf/darkwatt/internal/broadcast"
	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/logging"
	"github.com/quentinrf/darkwatt/internal/messaging"
	"github.com/quentinrf/darkwatt/internal/ports"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Sample screen luminance and serve it over gRPC and HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configFile)
		},
	}
}

func serve(ctx context.Context, configFile string) error {
	manager, err := newConfigManager(configFile)
	if err != nil {
		return err
	}
	if err := manager.Load(); err != nil {
		return err
	}
	config := manager.Current()

	if err := logging.Setup(config.Log.Level, config.Log.Format); err != nil {
		return err
	}
	log.Info().Msg("starting darkwatt")

	tech, _ := domain.ParseDisplayTech(config.Display.Tech)

	// Initialize repository
	var (
		repo    domain.SampleRepository
		savings domain.SavingsStore
	)
	switch config.Repo.Type {
	case "sqlite":
		db, err := sqlite.Open(config.Repo.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database %s: %w", config.Repo.DBPath, err)
		}
		defer db.Close()
		repo = sqlite.NewSampleRepository(db)
		savings = sqlite.NewSavingsStore(db)
		log.Info().Str("db_path", config.Repo.DBPath).Msg("initialized SQLite repository")
	default:
		repo = memory.NewSampleRepository()
		savings = memory.NewSavingsStore()
		log.Info().Msg("initialized in-memory repository")
	}

	// Initialize capture
	display := domain.DisplayInfo{
		WidthPx:     config.Display.Width,
		HeightPx:    config.Display.Height,
		ScaleFactor: config.Display.ScaleFactor,
		Tech:        tech,
	}
	var (
		source  ports.ScreenshotSource
		desktop *screen.Screen
	)
	switch config.Capture.Source {
	case "desktop":
		desktop = screen.New(config.Capture.Display, config.Display.ScaleFactor, tech)
		if info, err := desktop.DisplayInfo(); err != nil {
			log.Warn().Err(err).Msg("display geometry unavailable, using configured size")
		} else {
			display = info
		}
		source = desktop
		log.Info().Int("display", config.Capture.Display).Msg("initialized desktop capture")
	default:
		source = mock.NewFakeScreen(160, 100, 230, 20)
		log.Info().Msg("initialized mock capture")
	}
	defer source.Close()

	tracker := ports.NewSurfaceTracker(display)
	var surfaces ports.SurfaceResolver = tracker
	if config.Surface.Mode == "display" {
		if desktop == nil {
			return errors.New("surface.mode=display requires capture.source=desktop")
		}
		surfaces = desktop
	}

	estimator := kernel.NewEstimator(kernel.Config{
		PeakNits:    config.Display.PeakNits,
		ScaleFactor: config.Display.ScaleFactor,
	})
	hub := broadcast.NewHub(broadcast.DefaultBufferSize)
	state := ports.NewState()

	sampler := ports.NewSampler(surfaces, source, estimator)
	recorder := ports.NewRecorder(sampler, repo, config.Sampling.Interval,
		ports.WithState(state),
		ports.WithReporter(hub),
		ports.WithSavings(savings, estimator, tracker),
		ports.WithCPUMonitor(procstat.NewMonitor()),
		ports.WithRetention(config.Sampling.Retention),
	)

	manager.OnChange(func(c Config) {
		recorder.SetInterval(c.Sampling.Interval)
		log.Info().Dur("interval", c.Sampling.Interval).Msg("sampling interval applied")
	})
	manager.Watch()

	dispatcher := messaging.NewDispatcher(messaging.Config{
		Repo:         repo,
		State:        state,
		Surfaces:     tracker,
		Estimator:    estimator,
		Reporter:     hub,
		Parse:        htmldoc.ParseViewport,
		Reload:       func(context.Context) error { return manager.Reload() },
		SavingsHours: config.Savings.Hours,
	})

	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	tlsFiles := config.TLS.Files()
	if tlsFiles.Enabled() {
		tlsCfg, err := tlsFiles.Server()
		if err != nil {
			return fmt.Errorf("failed to load TLS config: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("tls.cert not set, starting without TLS (dev mode only)")
	}

	grpcServer, health := grpcAdapter.NewServer(grpcAdapter.NewLuminanceServiceHandler(dispatcher, hub), serverOpts...)
	grpcListener, err := net.Listen("tcp", ":"+config.GRPC.Port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	log.Info().Str("port", config.GRPC.Port).Msg("gRPC server listening")

	var httpServer *web.Server
	var httpListener net.Listener
	if config.HTTP.Addr != "" {
		httpListener, err = net.Listen("tcp", config.HTTP.Addr)
		if err != nil {
			grpcListener.Close()
			return fmt.Errorf("failed to listen on %s: %w", config.HTTP.Addr, err)
		}
		httpServer = web.NewServer(dispatcher, hub)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return recorder.Start(gctx)
	})
	g.Go(func() error {
		return grpcServer.Serve(grpcListener)
	})
	if httpServer != nil {
		g.Go(func() error {
			return httpServer.Serve(httpListener)
		})
	}
	if config.Discovery.Enabled {
		g.Go(func() error {
			port := grpcListener.Addr().(*net.TCPAddr).Port
			if err := discovery.Advertise(gctx, config.Discovery.Instance, port, version, tlsFiles.Enabled()); err != nil {
				log.Warn().Err(err).Msg("mDNS advertisement failed, continuing without discovery")
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		health.SetServingStatus(grpcAdapter.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("http shutdown incomplete")
			}
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
