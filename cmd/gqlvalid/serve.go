package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	demo "github.com/hanpama/gqlvalid/internal/demo"
	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	logging "github.com/hanpama/gqlvalid/internal/logging"
	metrics "github.com/hanpama/gqlvalid/internal/metrics"
	otel "github.com/hanpama/gqlvalid/internal/otel"
	server "github.com/hanpama/gqlvalid/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo user directory over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := newConf(cmd)
			if err := readConfigFile(conf); err != nil {
				return err
			}
			logger, err := logging.New(conf.GetString("log.level"), conf.GetBool("log.development"))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, conf, logger)
		},
	}
	f := cmd.Flags()
	f.String("server.addr", ":8080", "HTTP listen address")
	f.Bool("server.pretty", false, "Pretty-print JSON responses")
	f.Duration("server.timeout", 10*time.Second, "Per-request timeout")
	f.Int64("server.max-body-bytes", 1<<20, "Maximum request body size, 0 for unlimited")
	f.StringSlice("server.cors", nil, "Allowed CORS origins")
	f.StringSlice("server.forward-header", nil, "HTTP headers made available to resolvers")
	f.Bool("metrics.enabled", true, "Expose Prometheus metrics on /metrics")
	f.String("otel.endpoint", "", "OTLP collector endpoint")
	f.String("otel.service", "gqlvalid", "OpenTelemetry service name")
	return cmd
}

// newMux wires the demo app, event subscribers and HTTP routes. The returned
// function releases the subscribers and flushes telemetry.
func newMux(conf *viper.Viper, logger *zap.Logger) (http.Handler, func(context.Context) error, error) {
	bus := eventbus.New()
	eventbus.Use(bus)
	offLog := logging.Subscribe(bus, logger)

	shutdownOtel, err := otel.Setup(conf.GetString("otel.endpoint"), conf.GetString("otel.service"))
	if err != nil {
		offLog()
		return nil, nil, err
	}

	app, err := demo.New(demo.WithLogger(logger), demo.WithEventBus(bus))
	if err != nil {
		offLog()
		return nil, nil, err
	}

	opts := []server.Option{
		server.WithTimeout(conf.GetDuration("server.timeout")),
		server.WithMaxBodyBytes(conf.GetInt64("server.max-body-bytes")),
		server.WithLogger(logger),
		server.WithEventBus(bus),
	}
	if conf.GetBool("server.pretty") {
		opts = append(opts, server.WithPretty())
	}
	if origins := conf.GetStringSlice("server.cors"); len(origins) > 0 {
		opts = append(opts, server.WithCORS(origins...))
	}
	if headers := conf.GetStringSlice("server.forward-header"); len(headers) > 0 {
		opts = append(opts, server.WithForwardHeaders(headers...))
	}
	h, err := server.New(app.Runtime, app.Schema, opts...)
	if err != nil {
		offLog()
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	offMetrics := func() {}
	if conf.GetBool("metrics.enabled") {
		m := metrics.New()
		offMetrics = m.Subscribe(bus)
		mux.Handle("/metrics", m.Handler())
	}

	shutdown := func(ctx context.Context) error {
		offMetrics()
		offLog()
		eventbus.Use(nil)
		return shutdownOtel(ctx)
	}
	return mux, shutdown, nil
}

func serve(ctx context.Context, conf *viper.Viper, logger *zap.Logger) error {
	mux, shutdown, err := newMux(conf, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	srv := &http.Server{Addr: conf.GetString("server.addr"), Handler: mux}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
