package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/amora-app/backend/internal/config"
	"github.com/amora-app/backend/internal/database/postgres"
	"github.com/amora-app/backend/internal/faceapi"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Compute missing face descriptors for stored photos",
	Long: `Compute face descriptors for photos that were stored without one,
for example because the face service was unavailable at upload time.

The process can be stopped and resumed - photos that already have a
descriptor are skipped.

Examples:
  # Backfill descriptors (5 concurrent workers)
  amora backfill --storage-dir /var/lib/amora/photos

  # Use different concurrency
  amora backfill --storage-dir /var/lib/amora/photos --concurrency 3`,
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().Int("concurrency", 5, "Number of parallel workers")
	backfillCmd.Flags().String("storage-dir", "", "Directory holding original photo files by file key")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	storageDir := mustGetString(cmd, "storage-dir")
	if storageDir == "" {
		storageDir = os.Getenv("PHOTO_STORAGE_DIR")
	}
	if storageDir == "" {
		return errors.New("--storage-dir flag or PHOTO_STORAGE_DIR environment variable is required")
	}

	ctx := context.Background()
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.FaceAPI.URL == "" {
		return errors.New("FACE_API_URL environment variable is required")
	}

	client, err := newFaceClient(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Connecting to PostgreSQL...")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	pool := postgres.GetGlobalPool()
	defer pool.Close()

	photoRepo := postgres.NewPhotoRepository(pool)

	photos, err := photoRepo.GetPhotosWithoutDescriptor(ctx)
	if err != nil {
		return fmt.Errorf("failed to load photos without descriptors: %w", err)
	}
	if len(photos) == 0 {
		fmt.Println("All photos already have descriptors!")
		return nil
	}

	fmt.Printf("Photos to process: %d\n\n", len(photos))

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Computing descriptors"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var successCount, skippedCount, errorCount int
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, photo := range photos {
		wg.Add(1)
		go func(id, fileKey string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer bar.Add(1)

			path, err := photoFilePath(storageDir, fileKey)
			if err != nil {
				mu.Lock()
				skippedCount++
				mu.Unlock()
				return
			}

			imageData, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				errorCount++
				mu.Unlock()
				return
			}

			descriptor, err := client.ExtractDescriptor(ctx, imageData)
			switch {
			case errors.Is(err, faceapi.ErrNoFace),
				errors.Is(err, faceapi.ErrMultipleFaces),
				errors.Is(err, faceapi.ErrLowConfidence):
				// Not an outage, the photo just cannot produce a
				// usable descriptor. Leave it for manual review.
				mu.Lock()
				skippedCount++
				mu.Unlock()
				return
			case err != nil:
				mu.Lock()
				errorCount++
				mu.Unlock()
				return
			}

			if err := photoRepo.UpdatePhotoDescriptor(ctx, id, descriptor.Values, descriptor.Model, descriptor.DetScore); err != nil {
				mu.Lock()
				errorCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			successCount++
			mu.Unlock()
		}(photo.ID, photo.FileKey)
	}

	wg.Wait()
	fmt.Println()

	fmt.Printf("\nCompleted: %d successful, %d skipped, %d errors\n", successCount, skippedCount, errorCount)
	return nil
}

// photoFilePath resolves a file key inside the storage directory. Keys that
// are empty, absolute, or that climb out of the directory are rejected.
func photoFilePath(storageDir, fileKey string) (string, error) {
	if fileKey == "" {
		return "", errors.New("empty file key")
	}
	if !filepath.IsLocal(fileKey) {
		return "", fmt.Errorf("file key %q escapes the storage directory", fileKey)
	}
	return filepath.Join(storageDir, fileKey), nil
}
