package ingest

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"coachlens/internal/app/model"
	"coachlens/internal/app/repository"
	"coachlens/internal/app/repository/pg"
	"coachlens/internal/app/repository/sqlite"
	"coachlens/internal/app/storage"
	"coachlens/internal/config"
)

var (
	instructorID    string
	filePath        string
	durationSeconds int
)

func init() {
	Cmd.Flags().StringVarP(&instructorID, "instructor", "n", "", "instructor the recording belongs to")
	Cmd.Flags().StringVarP(&filePath, "file", "f", "", "local recording file to upload")
	Cmd.Flags().IntVarP(&durationSeconds, "duration", "d", 0, "recording duration in seconds")

	Cmd.MarkFlagRequired("instructor")
	Cmd.MarkFlagRequired("file")
	Cmd.MarkFlagRequired("duration")
}

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Upload a local recording and register it as a video",
	Long: `Upload a local recording to the object store and register it as a video.

Prints the video id, ready to submit as an evaluation via the API. Uses the
same MINIO_* and DB_DRIVER settings as serve.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.LoadEnv(); err != nil {
			log.Fatal(err)
		}
		if durationSeconds <= 0 {
			log.Fatal("duration must be positive")
		}

		ctx := context.Background()
		media, err := storage.NewMinioMediaStore(ctx, storage.MinioConfig{
			Endpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnvOrDefault("MINIO_BUCKET", "coachlens-recordings"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		})
		if err != nil {
			log.Fatal(err)
		}

		f, err := os.Open(filePath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			log.Fatal(err)
		}

		filename := filepath.Base(filePath)
		result, err := media.Upload(ctx, instructorID, filename, f, info.Size(),
			mime.TypeByExtension(filepath.Ext(filename)))
		if err != nil {
			log.Fatal(err)
		}

		var store repository.JobStore
		switch os.Getenv("DB_DRIVER") {
		case config.DriverPostgres:
			store, err = pg.NewStore(os.Getenv("POSTGRES_DSN"))
		default:
			store, err = sqlite.NewStore(getEnvOrDefault("SQLITE_PATH", "coachlens.db"))
		}
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()

		video := &model.Video{
			ID:              uuid.New().String(),
			InstructorID:    instructorID,
			Filename:        filename,
			SourceKey:       result.Key,
			DurationSeconds: durationSeconds,
			UploadedAt:      time.Now().UTC(),
		}
		if err := store.SaveVideo(ctx, video); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("ingested %s as video %s (key %s)\n", filename, video.ID, result.Key)
	},
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
