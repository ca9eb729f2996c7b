package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/cmd/feeledger/config"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/server"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/storage"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the serve command
var (
	serveAddress  string
	databaseDSN   string
	serveTimezone string
	maxScanRows   int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fee ledger HTTP API",
	Long: `Serve runs the HTTP API backed by PostgreSQL: collection-desk writes,
student ledger reads, collection reports, the dashboard, demand uploads and
the receipt display setting.

The database DSN comes from --dsn, the FEELEDGER_DSN environment variable,
or a local .env file.

Examples:
  feeledger serve --address :8080 --dsn "host=localhost user=fee dbname=fees"
  FEELEDGER_DSN="host=db user=fee dbname=fees" feeledger serve`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", ":8080", "listen address")
	serveCmd.Flags().StringVar(&databaseDSN, "dsn", "", "PostgreSQL connection string")
	serveCmd.Flags().StringVar(&serveTimezone, "timezone", "", "IANA timezone for report day boundaries (default: local)")
	serveCmd.Flags().IntVar(&maxScanRows, "max-scan-rows", 0, "cap on rows scanned per range query")

	viper.BindPFlag("address", serveCmd.Flags().Lookup("address"))
	viper.BindPFlag("dsn", serveCmd.Flags().Lookup("dsn"))
}

func runServe(cmd *cobra.Command, args []string) error {
	// Server mode logs JSON to stdout regardless of the CLI default
	if log, err := logger.NewLogger(logger.ServerConfig()); err == nil {
		logger.SetGlobalLogger(log)
	}

	dsn := viper.GetString("dsn")
	if dsn == "" {
		return fmt.Errorf("database DSN is required: set --dsn or FEELEDGER_DSN")
	}

	store, err := storage.Open(config.CreateStorageConfig(dsn, maxScanRows))
	if err != nil {
		return err
	}
	defer store.Close()

	aggregatorConfig, err := config.CreateAggregatorConfig(0, serveTimezone)
	if err != nil {
		return err
	}

	srv := server.New(config.CreateServerConfig(viper.GetString("address")), store, aggregatorConfig)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.GetGlobalLogger().WithField("signal", sig.String()).Info("Shutting down")
		return srv.Shutdown()
	}
}
