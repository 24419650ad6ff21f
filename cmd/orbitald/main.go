// orbitald is the orbital propagation service: SGP4 state vectors, ground
// tracks, trajectories, and ground station visibility passes over an
// HTTP/JSON API, with Prometheus metrics and an optional NATS bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/salcedoinaki/stellar/internal/api"
	"github.com/salcedoinaki/stellar/internal/platform/observability"
	"github.com/salcedoinaki/stellar/internal/platform/realtime"
	"github.com/salcedoinaki/stellar/internal/platform/tlesource"
	"github.com/salcedoinaki/stellar/internal/services"
	"github.com/salcedoinaki/stellar/internal/utils"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	// Load environment variables from .env file when present.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	// GRPC_PORT is honored for deployments configured for the former RPC
	// transport; the request surface on that port is HTTP/JSON.
	apiAddr := flag.String("api-addr", ":"+envOr("API_PORT", envOr("GRPC_PORT", "50051")), "API server address")
	metricsAddr := flag.String("metrics-addr", ":"+envOr("METRICS_PORT", "9090"), "metrics/ops server address")
	natsURL := flag.String("nats-url", os.Getenv("NATS_URL"), "NATS server URL (empty disables the bridge)")
	flag.Parse()

	log := utils.NewLoggerFromEnv("orbitald")
	log.Info("orbitald %s starting (api %s, metrics %s)", version, *apiAddr, *metricsAddr)

	shutdownTracing, err := observability.InitTracing(context.Background(), "orbitald")
	if err != nil {
		log.Info("tracing disabled: %v", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("tracing shutdown: %v", err)
			}
		}()
	}

	metrics := observability.NewMetrics()
	svc := services.NewOrbitalService(services.DefaultConfig(), log, metrics)

	sourceCfg := tlesource.DefaultConfig()
	if u := os.Getenv("CELESTRAK_URL"); u != "" {
		sourceCfg.CelesTrakURL = u
	}
	source := tlesource.NewClient(sourceCfg, metrics)

	apiServer := &http.Server{
		Addr: *apiAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Service: svc,
			Source:  source,
			Metrics: metrics,
			Logger:  log,
			Version: version,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	opsServer := &http.Server{
		Addr: *metricsAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Service:  svc,
			Source:   source,
			Metrics:  metrics,
			Logger:   log,
			Version:  version,
			ServeOps: true,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The NATS bridge is optional; the HTTP surface works without it.
	if *natsURL != "" {
		bridgeCfg := realtime.DefaultBridgeConfig()
		bridgeCfg.NATSURL = *natsURL
		bridge, err := realtime.NewBridge(bridgeCfg, svc, log)
		if err != nil {
			log.Warn("NATS bridge unavailable: %v (continuing without it)", err)
		} else if err := bridge.Start(); err != nil {
			log.Warn("NATS bridge start failed: %v", err)
		} else {
			defer bridge.Stop()
		}
	}

	serverErr := make(chan error, 2)
	go func() {
		log.Info("API server listening on %s", apiServer.Addr)
		serverErr <- apiServer.ListenAndServe()
	}()
	go func() {
		log.Info("ops server listening on %s", opsServer.Addr)
		serverErr <- opsServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed: %v", err)
			return 1
		}
	case sig := <-stop:
		log.Info("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	code := 0
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("API server shutdown: %v", err)
		code = 1
	}
	if err := opsServer.Shutdown(ctx); err != nil {
		log.Error("ops server shutdown: %v", err)
		code = 1
	}
	log.Info("orbitald stopped")
	return code
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
