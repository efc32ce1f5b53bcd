// Command alertdb runs the alert database HTTP server.
//
// It serves alert packets and alert schemas by identifier from one of three
// storage backends: a local directory tree, an S3-compatible object store, or
// a Google Cloud Storage bucket. The backend is chosen once at startup;
// supplying conflicting backend configuration is a startup error.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/astronomy-commons/alertdb/pkg/api"
	"github.com/astronomy-commons/alertdb/pkg/config"
	"github.com/astronomy-commons/alertdb/pkg/observability"
	"github.com/astronomy-commons/alertdb/pkg/retrieval"
	"github.com/astronomy-commons/alertdb/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	listenHost := flag.String("listen-host", "", "host address to listen on for requests")
	listenPort := flag.String("listen-port", "", "port to listen on for requests")
	opsPort := flag.String("ops-port", "", "port for health probes and metrics")
	backend := flag.String("backend", "", "backend to source alerts from: local-files, s3, or google-cloud")
	localRoot := flag.String("local-file-root", "", "root directory of the alert archive for the local-files backend")
	s3Endpoint := flag.String("s3-endpoint", "", "endpoint URL for an S3-compatible object store")
	s3Bucket := flag.String("s3-bucket", "", "bucket holding the alert archive for the s3 backend")
	gcpProject := flag.String("gcp-project", "", "GCP project for the google-cloud backend")
	gcsBucket := flag.String("gcs-bucket", "", "GCS bucket holding the alert archive for the google-cloud backend")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, or error")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags win over the config file and environment.
	override(&cfg.Server.Host, *listenHost)
	override(&cfg.Server.Port, *listenPort)
	override(&cfg.Server.OpsPort, *opsPort)
	override(&cfg.Storage.Type, *backend)
	override(&cfg.Storage.LocalRoot, *localRoot)
	override(&cfg.Storage.S3Endpoint, *s3Endpoint)
	override(&cfg.Storage.S3Bucket, *s3Bucket)
	override(&cfg.Storage.GCPProject, *gcpProject)
	override(&cfg.Storage.GCSBucket, *gcsBucket)
	override(&cfg.Observability.LogLevel, *logLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.LogLevel(), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	service := retrieval.NewService(store, logger, metrics)
	server := api.NewServer(service, logger, metrics)

	apiSrv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(store, cfg.Storage.Type)
	opsMux := http.NewServeMux()
	opsMux.HandleFunc("GET /healthz", health.Liveness)
	opsMux.HandleFunc("GET /readyz", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		opsMux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	opsSrv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.OpsPort),
		Handler: opsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("alertdb serving on %s (backend=%s)", apiSrv.Addr, cfg.Storage.Type)
		if err := apiSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("ops server on %s", opsSrv.Addr)
		if err := opsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("API server shutdown error")
		}
		if err := opsSrv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("ops server shutdown error")
		}
		if closer, ok := store.(io.Closer); ok {
			closer.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("shutdown complete")
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
