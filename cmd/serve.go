package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amora-app/backend/internal/config"
	"github.com/amora-app/backend/internal/database"
	"github.com/amora-app/backend/internal/database/postgres"
	"github.com/amora-app/backend/internal/faceapi"
	"github.com/amora-app/backend/internal/web"
	"github.com/amora-app/backend/internal/web/handlers"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Amora backend API server.
The server exposes partner and photo management endpoints plus the
upload check that matches new photos against stored face descriptors.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// registerServeBackends registers the PostgreSQL repositories for the serve command.
func registerServeBackends(pool *postgres.Pool) {
	partnerRepo := postgres.NewPartnerRepository(pool)
	photoRepo := postgres.NewPhotoRepository(pool)
	database.RegisterPostgresBackend(
		func() database.PartnerWriter { return partnerRepo },
		func() database.PhotoWriter { return photoRepo },
	)
	fmt.Printf("Using PostgreSQL backend\n")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	pool := postgres.GetGlobalPool()
	registerServeBackends(pool)
	port, host := resolveServeHostPort(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	partnerStore, err := database.GetPartnerWriter(ctx)
	if err != nil {
		return fmt.Errorf("resolving partner store: %w", err)
	}
	photoStore, err := database.GetPhotoWriter(ctx)
	if err != nil {
		return fmt.Errorf("resolving photo store: %w", err)
	}

	extractor, err := newExtractor(cfg)
	if err != nil {
		return err
	}
	if extractor == nil {
		fmt.Println("FACE_API_URL not set; image uploads will require precomputed descriptors")
	}

	server := web.NewServer(cfg, port, host, partnerStore, photoStore, extractor)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Amora backend on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// newFaceClient builds the face service client from configuration.
func newFaceClient(cfg *config.Config) (*faceapi.Client, error) {
	client, err := faceapi.NewClient(
		cfg.FaceAPI.URL,
		time.Duration(cfg.FaceAPI.Timeout)*time.Second,
		database.MinDetScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create face service client: %w", err)
	}
	return client, nil
}

// newExtractor builds the face service client, or nil when not configured.
func newExtractor(cfg *config.Config) (handlers.DescriptorExtractor, error) {
	if cfg.FaceAPI.URL == "" {
		return nil, nil
	}
	client, err := newFaceClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
