package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/MikhailRaia/slug-shortener/internal/config"
	"github.com/MikhailRaia/slug-shortener/internal/handler"
	"github.com/MikhailRaia/slug-shortener/internal/metrics"
	"github.com/MikhailRaia/slug-shortener/internal/middleware"
	"github.com/MikhailRaia/slug-shortener/internal/proto"
	"github.com/MikhailRaia/slug-shortener/internal/service"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

type App struct {
	config        *config.Config
	store         storage.ShortLinkStore
	handler       http.Handler
	httpServer    *http.Server
	grpcServer    *grpc.Server
	metricsServer *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	linkService := service.NewLinkService(store, m)
	httpHandler := handler.NewHandler(linkService, m)
	routes := httpHandler.RegisterRoutes()

	a := &App{
		config:  cfg,
		store:   store,
		handler: routes,
		httpServer: &http.Server{
			Addr:    cfg.ServerAddress(),
			Handler: routes,
		},
	}

	if cfg.GRPCAddress != "" {
		a.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(middleware.UnaryLogger))
		proto.RegisterShortLinkServiceServer(a.grpcServer, handler.NewShortenerGRPCServer(linkService))
	}

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		a.metricsServer = &http.Server{
			Addr:    cfg.MetricsAddress,
			Handler: mux,
		}
	}

	return a, nil
}

// Run serves until ctx is cancelled or a server fails, then shuts every
// server down within the configured timeout and closes the store.
func (a *App) Run(ctx context.Context) error {
	var grpcListener net.Listener
	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", a.config.GRPCAddress)
		if err != nil {
			return fmt.Errorf("listen grpc on %s: %w", a.config.GRPCAddress, err)
		}
		grpcListener = lis
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", a.httpServer.Addr).Msg("Starting HTTP server")
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcListener != nil {
		g.Go(func() error {
			log.Info().Str("address", a.config.GRPCAddress).Msg("Starting gRPC server")
			if err := a.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	if a.metricsServer != nil {
		g.Go(func() error {
			log.Info().Str("address", a.metricsServer.Addr).Msg("Starting metrics server")
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	log.Info().Dur("timeout", a.config.ShutdownTimeout).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			a.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			a.grpcServer.Stop()
		}
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}

	if closer, ok := a.store.(storage.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}

	return errors.Join(errs...)
}
