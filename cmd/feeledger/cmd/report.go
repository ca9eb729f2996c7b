package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/cmd/feeledger/config"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/normalizer"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/parsers"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reporter"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reports"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the report and dashboard commands
var (
	reportTransactionsFile string
	fromDate               string
	toDate                 string
	groupBy                string
	maxRangeDays           int
	reportTimezone         string
	reportOutputFormat     string
	reportOutputFile       string
	dashboardRecent        int
	dashboardTop           int
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate collection transactions over a date range",
	Long: `Report groups collection transactions over an inclusive date range and
prints per-bucket cash, bank, debit, credit and net totals.

Examples:
  # Daily totals for one month
  feeledger report -T payments.csv --from 2025-06-01 --to 2025-06-30

  # Per-cashier day sheet with fee head breakdowns
  feeledger report -T payments.csv --from 2025-06-15 --to 2025-06-15 --group-by cashier

  # CSV export grouped by fee head
  feeledger report -T payments.csv --from 2025-06-01 --to 2025-06-30 \
    --group-by feeHead --output-format csv --output-file june.csv`,

	PreRunE: validateReportFlags,
	RunE:    runReport,
}

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the fixed-range collection dashboard",
	Long: `Dashboard prints today's, month-to-date and all-time collection positions
plus the most recent transactions and the top colleges by net collection.

Examples:
  feeledger dashboard -T payments.csv
  feeledger dashboard -T payments.csv --recent 20 --top 10`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFileExists(reportTransactionsFile, "transaction file")
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(dashboardCmd)

	reportCmd.Flags().StringVarP(&reportTransactionsFile, "transactions-file", "T", "", "path to transaction CSV file (required)")
	reportCmd.Flags().StringVar(&fromDate, "from", "", "range start date, YYYY-MM-DD (required)")
	reportCmd.Flags().StringVar(&toDate, "to", "", "range end date, YYYY-MM-DD, inclusive (required)")
	reportCmd.Flags().StringVarP(&groupBy, "group-by", "g", "day", "grouping dimension: day, cashier, feeHead, mode")
	reportCmd.Flags().IntVar(&maxRangeDays, "max-range-days", 0, "override the range guard; negative disables it")
	reportCmd.Flags().StringVar(&reportTimezone, "timezone", "", "IANA timezone for day boundaries (default: local)")
	reportCmd.Flags().StringVarP(&reportOutputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reportCmd.Flags().StringVarP(&reportOutputFile, "output-file", "o", "", "output file path (default: stdout)")

	reportCmd.MarkFlagRequired("transactions-file")
	reportCmd.MarkFlagRequired("from")
	reportCmd.MarkFlagRequired("to")

	dashboardCmd.Flags().StringVarP(&reportTransactionsFile, "transactions-file", "T", "", "path to transaction CSV file (required)")
	dashboardCmd.Flags().IntVar(&dashboardRecent, "recent", 10, "number of recent transactions to show")
	dashboardCmd.Flags().IntVar(&dashboardTop, "top", 5, "number of top colleges and courses to show")
	dashboardCmd.Flags().StringVar(&reportTimezone, "timezone", "", "IANA timezone for day boundaries (default: local)")

	dashboardCmd.MarkFlagRequired("transactions-file")
}

func validateReportFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(reportTransactionsFile, "transaction file"); err != nil {
		return err
	}

	if _, err := time.Parse("2006-01-02", fromDate); err != nil {
		return fmt.Errorf("invalid from date format. Use YYYY-MM-DD: %w", err)
	}
	if _, err := time.Parse("2006-01-02", toDate); err != nil {
		return fmt.Errorf("invalid to date format. Use YYYY-MM-DD: %w", err)
	}

	if _, err := reports.ParseGroupBy(groupBy); err != nil {
		return fmt.Errorf("invalid group-by '%s'. Valid values: day, cashier, feeHead, mode", groupBy)
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[reportOutputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", reportOutputFormat)
	}

	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	transactions, err := loadTransactions(reportTransactionsFile)
	if err != nil {
		return err
	}

	aggregatorConfig, err := config.CreateAggregatorConfig(maxRangeDays, reportTimezone)
	if err != nil {
		return err
	}

	start, _ := time.Parse("2006-01-02", fromDate)
	end, _ := time.Parse("2006-01-02", toDate)
	r := reports.Range{Start: start, End: end}

	dimension, err := reports.ParseGroupBy(groupBy)
	if err != nil {
		return err
	}

	buckets, err := reports.Aggregate(transactions, r, dimension, aggregatorConfig)
	if err != nil {
		return err
	}

	generator, err := reporter.NewReportGenerator(config.CreateReportConfig(reportOutputFormat))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output, cleanup, err := openOutput(reportOutputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	report := reporter.BuildCollectionReport(buckets, dimension, r)
	if err := generator.GenerateCollectionReport(report, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nAggregated %d transactions into %d buckets.\n",
			len(transactions), len(buckets))
	}

	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	transactions, err := loadTransactions(reportTransactionsFile)
	if err != nil {
		return err
	}

	aggregatorConfig, err := config.CreateAggregatorConfig(0, reportTimezone)
	if err != nil {
		return err
	}

	// The file-based dashboard has no student directory, so course groupings
	// stay empty; college groupings come from the transactions themselves.
	summary, err := reports.BuildDashboard(transactions, nil, time.Now(), aggregatorConfig,
		dashboardRecent, dashboardTop)
	if err != nil {
		return err
	}

	generator, err := reporter.NewReportGenerator(config.CreateReportConfig("console"))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	return generator.GenerateDashboardReport(summary, os.Stdout)
}

// loadTransactions parses and normalizes a transaction file, ignoring the
// demand side entirely.
func loadTransactions(path string) ([]models.Transaction, error) {
	parser := parsers.NewTransactionParser(config.CreateTransactionParserConfig())
	raw, stats, err := parser.ParseTransactions(path)
	if err != nil {
		return nil, err
	}

	result, err := normalizer.Normalize(nil, raw)
	if err != nil {
		return nil, err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Parsed %d transaction rows (%d skipped, %d rejected)\n",
			stats.RecordsRead, len(stats.SkippedLines), len(result.Rejected))
	}

	return result.Transactions, nil
}
