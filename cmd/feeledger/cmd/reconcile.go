package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/cmd/feeledger/config"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/ledger"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/normalizer"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/parsers"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	demandsFile      string
	transactionsFile string
	studentID        string
	feeHeadID        string
	studentYear      int
	semester         string
	outputFormat     string
	outputFile       string
	maskedHeads      []string
	maskName         string
	showCollege      bool
	strictRows       bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile fee demands against collection transactions",
	Long: `Reconcile merges standing fee demands with collection transactions and
prints one ledger line per fee position for the scoped student, including
heads that were charged but never paid and heads that were paid with no
standing demand.

Examples:
  # Full ledger for one student
  feeledger reconcile --demands-file demands.csv --transactions-file payments.csv --student STU001

  # One fee head, one semester
  feeledger reconcile -D demands.csv -T payments.csv --student STU001 \
    --fee-head TUITION --semester 1

  # Receipt view with masked heads folded into a single line
  feeledger reconcile -D demands.csv -T payments.csv --student STU001 \
    --mask-heads HOSTEL,MESS --mask-name "Processing Fee"

  # JSON output to a file
  feeledger reconcile -D demands.csv -T payments.csv --student STU001 \
    --output-format json --output-file ledger.json`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&demandsFile, "demands-file", "D", "", "path to demand upload CSV file (required)")
	reconcileCmd.Flags().StringVarP(&transactionsFile, "transactions-file", "T", "", "path to transaction CSV file (required)")
	reconcileCmd.Flags().StringVarP(&studentID, "student", "s", "", "student id to reconcile (required)")

	// Scope flags
	reconcileCmd.Flags().StringVar(&feeHeadID, "fee-head", "", "restrict to one fee head")
	reconcileCmd.Flags().IntVar(&studentYear, "year", 0, "restrict to one year of study")
	reconcileCmd.Flags().StringVar(&semester, "semester", "", "restrict to one semester: yearly, 1, 2")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Receipt mask flags
	reconcileCmd.Flags().StringSliceVar(&maskedHeads, "mask-heads", []string{}, "comma-separated fee head ids to fold into one masked line")
	reconcileCmd.Flags().StringVar(&maskName, "mask-name", receipt.DefaultMaskName, "display name for the masked line")
	reconcileCmd.Flags().BoolVar(&showCollege, "show-college", true, "show the college header on console output")

	// Upload handling flags
	reconcileCmd.Flags().BoolVar(&strictRows, "strict-rows", false, "fail when any upload row is rejected instead of skipping it")

	reconcileCmd.MarkFlagRequired("demands-file")
	reconcileCmd.MarkFlagRequired("transactions-file")
	reconcileCmd.MarkFlagRequired("student")

	viper.BindPFlag("demands-file", reconcileCmd.Flags().Lookup("demands-file"))
	viper.BindPFlag("transactions-file", reconcileCmd.Flags().Lookup("transactions-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(demandsFile, "demand upload file"); err != nil {
		return err
	}
	if err := validateFileExists(transactionsFile, "transaction file"); err != nil {
		return err
	}
	if studentID == "" {
		return fmt.Errorf("student is required")
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if semester != "" {
		if _, err := models.ParseSemester(semester); err != nil {
			return fmt.Errorf("invalid semester '%s'. Valid values: yearly, 1, 2", semester)
		}
	}
	if studentYear < 0 {
		return fmt.Errorf("year cannot be negative")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Demands file: %s\n", demandsFile)
		fmt.Fprintf(os.Stderr, "Transactions file: %s\n", transactionsFile)
		fmt.Fprintf(os.Stderr, "Student: %s\n", studentID)
	}

	result, err := loadAndNormalize(demandsFile, transactionsFile)
	if err != nil {
		return err
	}
	if strictRows && len(result.Rejected) > 0 {
		first := result.Rejected[0]
		return fmt.Errorf("%d upload rows rejected; first at index %d: %w",
			len(result.Rejected), first.Index, first.Err)
	}

	scope := ledger.Scope{
		StudentID:   studentID,
		FeeHeadID:   feeHeadID,
		StudentYear: studentYear,
	}
	if semester != "" {
		term, err := models.ParseSemester(semester)
		if err != nil {
			return err
		}
		scope.Semester = &term
	}

	lines, err := ledger.Reconcile(result.Demands, result.Transactions, scope)
	if err != nil {
		return err
	}

	setting := config.CreateMaskSetting(maskedHeads, maskName, showCollege)
	report := reporter.BuildStudentLedger(lines, setting, nil)

	generator, err := reporter.NewReportGenerator(config.CreateReportConfig(outputFormat))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output, cleanup, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := generator.GenerateLedgerReport(report, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed in %s.\n", time.Since(report.GeneratedAt).Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "Ledger lines: %d  Rejected upload rows: %d\n", len(report.Lines), len(result.Rejected))
	}

	return nil
}

// loadAndNormalize parses both upload files and converts them to canonical
// records, reporting skipped rows on stderr in verbose mode.
func loadAndNormalize(demandsPath, transactionsPath string) (*normalizer.Result, error) {
	demandParser := parsers.NewDemandParser(config.CreateDemandParserConfig())
	rawDemands, demandStats, err := demandParser.ParseDemands(demandsPath)
	if err != nil {
		return nil, err
	}

	transactionParser := parsers.NewTransactionParser(config.CreateTransactionParserConfig())
	rawTransactions, txStats, err := transactionParser.ParseTransactions(transactionsPath)
	if err != nil {
		return nil, err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Parsed %d demand rows (%d skipped), %d transaction rows (%d skipped)\n",
			demandStats.RecordsRead, len(demandStats.SkippedLines),
			txStats.RecordsRead, len(txStats.SkippedLines))
	}

	result, err := normalizer.Normalize(rawDemands, rawTransactions)
	if err != nil {
		return nil, err
	}

	if viper.GetBool("verbose") && len(result.Rejected) > 0 {
		fmt.Fprintf(os.Stderr, "Rejected %d malformed rows:\n", len(result.Rejected))
		for _, row := range result.Rejected {
			fmt.Fprintf(os.Stderr, "  %s row %d: %s\n", row.Kind, row.Index, row.Err.Message)
		}
	}

	return result, nil
}

// openOutput returns the report destination and a cleanup func
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
