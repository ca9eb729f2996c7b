// Package reporter renders ledger and collection-report output.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: comma-separated output for spreadsheet applications
//
// The receipt view is masking-aware: ledger lines are passed through the
// receipt mask transform with an explicitly supplied setting before any
// rendering happens, so stored ledger values are never touched.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/ledger"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reports"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format       OutputFormat `json:"format"`
	CSVDelimiter rune         `json:"csv_delimiter"`
	CSVHeaders   bool         `json:"csv_headers"`
	// IncludeBreakdowns emits nested fee-head and college breakdowns in
	// console output
	IncludeBreakdowns bool `json:"include_breakdowns"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:            FormatConsole,
		CSVDelimiter:      ',',
		CSVHeaders:        true,
		IncludeBreakdowns: true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders ledger and collection reports
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// StudentLedgerReport is the rendered view of one student's reconciled ledger
type StudentLedgerReport struct {
	Student     *models.StudentInfo `json:"student,omitempty"`
	ShowCollege bool                `json:"showCollegeHeader"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Lines       []ledger.LedgerLine `json:"lines"`
	Totals      ledger.LedgerLine   `json:"totals"`
}

// BuildStudentLedger composes reconciled lines into the receipt view,
// applying the mask setting at the output boundary.
func BuildStudentLedger(lines []ledger.LedgerLine, setting receipt.Setting, student *models.StudentInfo) *StudentLedgerReport {
	maskedLines := receipt.ApplyMask(lines, setting)
	return &StudentLedgerReport{
		Student:     student,
		ShowCollege: setting.ShowCollegeHeader,
		GeneratedAt: time.Now(),
		Lines:       maskedLines,
		Totals:      ledger.Totals(maskedLines),
	}
}

// GenerateLedgerReport writes a student ledger report in the configured format
func (rg *ReportGenerator) GenerateLedgerReport(report *StudentLedgerReport, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("ledger report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.ledgerConsole(report, writer)
	case FormatJSON:
		return jsonEncode(report, writer)
	case FormatCSV:
		return rg.ledgerCSV(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) ledgerConsole(report *StudentLedgerReport, w io.Writer) error {
	fmt.Fprintf(w, "STUDENT FEE LEDGER\n")
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))

	if report.Student != nil {
		fmt.Fprintf(w, "Student: %s (%s)\n", report.Student.Name, report.Student.ID)
		if report.ShowCollege && report.Student.College != "" {
			fmt.Fprintf(w, "College: %s  Course: %s\n", report.Student.College, report.Student.Course)
		}
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "%-24s %6s %8s %12s %12s %12s  %s\n",
		"FEE HEAD", "YEAR", "SEM", "DEMAND", "PAID", "DUE", "STATUS")
	for _, line := range report.Lines {
		fmt.Fprintf(w, "%-24s %6d %8s %12s %12s %12s  %s\n",
			lineLabel(line), line.Key.StudentYear, line.Key.Semester,
			line.Demand.StringFixed(2), line.Paid.StringFixed(2), line.Due.StringFixed(2),
			lineStatus(line))
	}

	fmt.Fprintf(w, "\n%-40s %12s %12s %12s\n", "TOTAL",
		report.Totals.Demand.StringFixed(2),
		report.Totals.Paid.StringFixed(2),
		report.Totals.Due.StringFixed(2))
	fmt.Fprintf(w, "Cash: %s  Bank: %s  Concessions: %s\n",
		report.Totals.CashPaid.StringFixed(2),
		report.Totals.BankPaid.StringFixed(2),
		report.Totals.CreditTotal.StringFixed(2))

	return nil
}

func (rg *ReportGenerator) ledgerCSV(report *StudentLedgerReport, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = rg.config.CSVDelimiter
	defer cw.Flush()

	if rg.config.CSVHeaders {
		if err := cw.Write([]string{
			"fee_head", "student_year", "semester", "demand", "paid", "due", "overpaid", "cash", "bank", "concession",
		}); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, line := range report.Lines {
		record := []string{
			lineLabel(line),
			fmt.Sprintf("%d", line.Key.StudentYear),
			line.Key.Semester.String(),
			line.Demand.StringFixed(2),
			line.Paid.StringFixed(2),
			line.Due.StringFixed(2),
			fmt.Sprintf("%t", line.Overpaid),
			line.CashPaid.StringFixed(2),
			line.BankPaid.StringFixed(2),
			line.CreditTotal.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return cw.Error()
}

func lineLabel(line ledger.LedgerLine) string {
	if line.FeeHeadName != "" {
		return line.FeeHeadName
	}
	return line.Key.FeeHeadID
}

func lineStatus(line ledger.LedgerLine) string {
	switch {
	case line.Overpaid:
		return "OVERPAID"
	case line.Due.IsZero():
		return "SETTLED"
	case line.NetPaid.IsZero() || line.NetPaid.IsNegative():
		return "UNPAID"
	default:
		return "PARTIAL"
	}
}

// CollectionReport is the rendered view of an aggregated collection report
type CollectionReport struct {
	GroupBy     reports.GroupBy        `json:"groupBy"`
	Range       reports.Range          `json:"range"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Buckets     []reports.ReportBucket `json:"buckets"`
	Total       reports.ReportBucket   `json:"total"`
}

// BuildCollectionReport composes aggregated buckets into a report view
func BuildCollectionReport(buckets []reports.ReportBucket, groupBy reports.GroupBy, r reports.Range) *CollectionReport {
	return &CollectionReport{
		GroupBy:     groupBy,
		Range:       r,
		GeneratedAt: time.Now(),
		Buckets:     buckets,
		Total:       reports.GrandTotal(buckets),
	}
}

// GenerateCollectionReport writes a collection report in the configured format
func (rg *ReportGenerator) GenerateCollectionReport(report *CollectionReport, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("collection report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.collectionConsole(report, writer)
	case FormatJSON:
		return jsonEncode(report, writer)
	case FormatCSV:
		return rg.collectionCSV(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) collectionConsole(report *CollectionReport, w io.Writer) error {
	fmt.Fprintf(w, "COLLECTION REPORT (%s)\n", report.GroupBy)
	fmt.Fprintf(w, "Range: %s to %s\n", report.Range.Start.Format("2006-01-02"), report.Range.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(w, "%-20s %6s %12s %12s %12s %12s %12s\n",
		"GROUP", "COUNT", "CASH", "BANK", "DEBIT", "CREDIT", "NET")
	for _, b := range report.Buckets {
		fmt.Fprintf(w, "%-20s %6d %12s %12s %12s %12s %12s\n",
			b.Key, b.Count,
			b.Cash.StringFixed(2), b.Bank.StringFixed(2),
			b.Debit.StringFixed(2), b.Credit.StringFixed(2), b.Total.StringFixed(2))

		if rg.config.IncludeBreakdowns {
			for _, fh := range b.FeeHeads {
				fmt.Fprintf(w, "  %-18s %18s %12s %12s\n",
					fh.FeeHeadID, "", fh.Debit.StringFixed(2), fh.Total.StringFixed(2))
				for _, c := range fh.Colleges {
					fmt.Fprintf(w, "    %-16s %30s %12s\n", c.College, "", c.Total.StringFixed(2))
				}
			}
			for _, c := range b.Colleges {
				fmt.Fprintf(w, "  %-18s %30s %12s\n", c.College, "", c.Total.StringFixed(2))
			}
		}
	}

	t := report.Total
	fmt.Fprintf(w, "\n%-20s %6d %12s %12s %12s %12s %12s\n",
		"TOTAL", t.Count,
		t.Cash.StringFixed(2), t.Bank.StringFixed(2),
		t.Debit.StringFixed(2), t.Credit.StringFixed(2), t.Total.StringFixed(2))

	return nil
}

func (rg *ReportGenerator) collectionCSV(report *CollectionReport, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = rg.config.CSVDelimiter
	defer cw.Flush()

	if rg.config.CSVHeaders {
		if err := cw.Write([]string{"group", "count", "cash", "bank", "debit", "credit", "net"}); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, b := range report.Buckets {
		record := []string{
			b.Key,
			fmt.Sprintf("%d", b.Count),
			b.Cash.StringFixed(2),
			b.Bank.StringFixed(2),
			b.Debit.StringFixed(2),
			b.Credit.StringFixed(2),
			b.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return cw.Error()
}

// GenerateDashboardReport writes a dashboard summary; console output shows
// the three fixed windows and the top groupings, other formats emit the
// structure directly.
func (rg *ReportGenerator) GenerateDashboardReport(summary *reports.DashboardSummary, writer io.Writer) error {
	if summary == nil {
		return fmt.Errorf("dashboard summary cannot be nil")
	}

	if rg.config.Format != FormatConsole {
		return jsonEncode(summary, writer)
	}

	fmt.Fprintf(writer, "COLLECTION DASHBOARD\n\n")
	fmt.Fprintf(writer, "%-14s %6s %12s %12s %12s\n", "PERIOD", "COUNT", "CASH", "BANK", "NET")
	printPeriod := func(name string, p reports.PeriodSummary) {
		fmt.Fprintf(writer, "%-14s %6d %12s %12s %12s\n",
			name, p.Count, p.Cash.StringFixed(2), p.Bank.StringFixed(2), p.Total.StringFixed(2))
	}
	printPeriod("Today", summary.Today)
	printPeriod("Month-to-date", summary.MonthToDate)
	printPeriod("All time", summary.AllTime)

	if len(summary.TopColleges) > 0 {
		fmt.Fprintf(writer, "\nTop colleges:\n")
		for _, g := range summary.TopColleges {
			fmt.Fprintf(writer, "  %-24s %12s\n", g.Name, g.Total.StringFixed(2))
		}
	}
	if len(summary.TopCourses) > 0 {
		fmt.Fprintf(writer, "\nTop courses:\n")
		for _, g := range summary.TopCourses {
			fmt.Fprintf(writer, "  %-24s %12s\n", g.Name, g.Total.StringFixed(2))
		}
	}

	if len(summary.Recent) > 0 {
		fmt.Fprintf(writer, "\nRecent transactions:\n")
		for _, t := range summary.Recent {
			fmt.Fprintf(writer, "  %s %-10s %-14s %10s %s/%s\n",
				t.CollectedAt.Format("2006-01-02 15:04"), t.StudentID, t.FeeHeadID,
				t.Amount.StringFixed(2), t.Type, t.Mode)
		}
	}

	return nil
}

func jsonEncode(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
