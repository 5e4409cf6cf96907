package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Serve the NetBox webhook receiver over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd)
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapBool)
	bindEnvMap(cmd, svcEnvMapDuration)
	return cmd
}

func runService(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("spawning...")
	rt, err := setup(ctx)
	if err != nil {
		return err
	}

	logger.Debug("creating HTTP server...")
	s := &http.Server{
		Handler:      newServeMux(rt, config.Service.Metrics),
		Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout: config.Service.Timeout,
		ReadTimeout:  config.Service.Timeout,
		IdleTimeout:  config.Service.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
		errCh <- s.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// newServeMux routes /metrics to Prometheus when enabled and everything else to the runtime.
func newServeMux(rt *runtime.Runtime, metrics bool) *http.ServeMux {
	mux := http.NewServeMux()
	if metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	mux.Handle("/", rt)
	return mux
}
