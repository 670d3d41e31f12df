package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/docr/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the document OCR API",
	Long: `Start an HTTP server that accepts document uploads and returns word-level
OCR results with annotated page images.

Endpoints:
  POST /ocr/document - Process an uploaded document (image or PDF)
  GET  /artifacts/*  - Fetch annotated page images
  GET  /ocr/ws       - WebSocket OCR with per-page progress
  GET  /health       - Health check
  GET  /metrics      - Prometheus metrics

Examples:
  docr serve
  docr serve --port 8080
  docr serve --host 0.0.0.0 --artifacts-dir /var/lib/docr/artifacts`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", cfg.Server.Port)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		serverConfig := server.Config{
			Host:             cfg.Server.Host,
			Port:             cfg.Server.Port,
			CORSOrigin:       cfg.Server.CORSOrigin,
			MaxUploadMB:      int64(cfg.Server.MaxUploadMB),
			TimeoutSec:       cfg.Server.TimeoutSec,
			ArtifactsDir:     cfg.Server.ArtifactsDir,
			ArtifactsBaseURL: cfg.Server.ArtifactsBaseURL,

			RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
			RequestsPerHour:   cfg.Server.RateLimit.RequestsPerHour,
			MaxRequestsPerDay: cfg.Server.RateLimit.MaxRequestsPerDay,
			MaxUploadMBPerDay: cfg.Server.RateLimit.MaxUploadMBPerDay,

			PipelineConfig: cfg.ToPipelineConfig(),
		}

		ocrServer, err := server.NewServer(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		ocrServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
		}

		go func() {
			slog.Info("Starting OCR server", "host", cfg.Server.Host, "port", cfg.Server.Port, "engine", cfg.Pipeline.Engine)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		slog.Info("Shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}
		slog.Info("HTTP server shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host address")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origin")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 120, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")
	serveCmd.Flags().String("artifacts-dir", "artifacts", "directory for annotated page images")
	serveCmd.Flags().String("artifacts-base-url", "/artifacts", "public base URL for annotated page images")
	serveCmd.Flags().Int("rate-limit-rpm", 0, "per-client requests per minute (0 disables)")
	serveCmd.Flags().Int("rate-limit-rph", 0, "per-client requests per hour (0 disables)")
	serveCmd.Flags().Int("rate-limit-daily-requests", 0, "per-client requests per day (0 disables)")
	serveCmd.Flags().Int("rate-limit-daily-upload-mb", 0, "per-client upload MB per day (0 disables)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors-origin"))
	_ = viper.BindPFlag("server.max_upload_mb", serveCmd.Flags().Lookup("max-upload-size"))
	_ = viper.BindPFlag("server.timeout_sec", serveCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("server.shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))
	_ = viper.BindPFlag("server.artifacts_dir", serveCmd.Flags().Lookup("artifacts-dir"))
	_ = viper.BindPFlag("server.artifacts_base_url", serveCmd.Flags().Lookup("artifacts-base-url"))
	_ = viper.BindPFlag("server.rate_limit.requests_per_minute", serveCmd.Flags().Lookup("rate-limit-rpm"))
	_ = viper.BindPFlag("server.rate_limit.requests_per_hour", serveCmd.Flags().Lookup("rate-limit-rph"))
	_ = viper.BindPFlag("server.rate_limit.max_requests_per_day", serveCmd.Flags().Lookup("rate-limit-daily-requests"))
	_ = viper.BindPFlag("server.rate_limit.max_upload_mb_per_day", serveCmd.Flags().Lookup("rate-limit-daily-upload-mb"))
}
