package export

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"coachlens/internal/app/export"
	"coachlens/internal/app/repository"
	"coachlens/internal/app/repository/pg"
	"coachlens/internal/app/repository/sqlite"
	"coachlens/internal/config"
)

var instructorID string
var outputFilePath string

func init() {
	Cmd.Flags().StringVarP(&instructorID, "instructor", "n", "", "instructor whose evaluations to export")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "output xlsx file path")

	Cmd.MarkFlagRequired("instructor")
	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export an instructor's evaluations to excel",
	Long: `Export an instructor's evaluations to excel.

One row per evaluation, one column per tracked metric. Uses the same
DB_DRIVER/SQLITE_PATH/POSTGRES_DSN settings as serve.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.LoadEnv(); err != nil {
			log.Fatal(err)
		}

		var (
			store repository.JobStore
			err   error
		)
		switch os.Getenv("DB_DRIVER") {
		case config.DriverPostgres:
			store, err = pg.NewStore(os.Getenv("POSTGRES_DSN"))
		default:
			path := os.Getenv("SQLITE_PATH")
			if path == "" {
				path = "coachlens.db"
			}
			store, err = sqlite.NewStore(path)
		}
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()

		evaluations, err := store.ListEvaluationsByInstructor(context.Background(), instructorID)
		if err != nil {
			log.Fatal(err)
		}

		if err := export.ToExcel(evaluations, outputFilePath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
	},
}
