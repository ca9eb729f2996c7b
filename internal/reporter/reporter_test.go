package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/ledger"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reports"

	"github.com/shopspring/decimal"
)

func sampleLines() []ledger.LedgerLine {
	return []ledger.LedgerLine{
		{
			Key:         models.FeeKey{FeeHeadID: "TUITION", StudentYear: 1},
			Demand:      decimal.NewFromInt(40000),
			Paid:        decimal.NewFromInt(40000),
			NetPaid:     decimal.NewFromInt(40000),
			Due:         decimal.Zero,
			CashPaid:    decimal.NewFromInt(40000),
			BankPaid:    decimal.Zero,
			CreditTotal: decimal.Zero,
		},
		{
			Key:         models.FeeKey{FeeHeadID: "HOSTEL", StudentYear: 1},
			Demand:      decimal.NewFromInt(20000),
			Paid:        decimal.NewFromInt(5000),
			NetPaid:     decimal.NewFromInt(5000),
			Due:         decimal.NewFromInt(15000),
			CashPaid:    decimal.NewFromInt(5000),
			BankPaid:    decimal.Zero,
			CreditTotal: decimal.Zero,
		},
	}
}

func sampleBuckets() []reports.ReportBucket {
	return []reports.ReportBucket{
		{
			Key:    "CSH01",
			Count:  2,
			Cash:   decimal.NewFromInt(1000),
			Bank:   decimal.Zero,
			Debit:  decimal.NewFromInt(1000),
			Credit: decimal.NewFromInt(200),
			Total:  decimal.NewFromInt(800),
		},
	}
}

func TestBuildStudentLedger_AppliesMask(t *testing.T) {
	setting := receipt.NewSetting(true, []string{"HOSTEL"}, "Processing Fee")

	report := BuildStudentLedger(sampleLines(), setting, nil)

	if len(report.Lines) != 2 {
		t.Fatalf("Expected 2 lines (1 visible + synthetic), got %d", len(report.Lines))
	}
	if report.Lines[1].FeeHeadName != "Processing Fee" {
		t.Errorf("Expected synthetic masked line, got %+v", report.Lines[1])
	}
	if !report.Totals.Demand.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("Expected totals conserved across masking, got %s", report.Totals.Demand)
	}
	if !report.ShowCollege {
		t.Error("Expected college header flag carried from setting")
	}
}

func TestGenerateLedgerReport_Console(t *testing.T) {
	generator, err := NewReportGenerator(DefaultReportConfig())
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	report := BuildStudentLedger(sampleLines(), receipt.DefaultSetting(), &models.StudentInfo{
		ID: "STU001", Name: "Test Student", College: "ENG", Course: "B.Tech",
	})

	var buf bytes.Buffer
	if err := generator.GenerateLedgerReport(report, &buf); err != nil {
		t.Fatalf("GenerateLedgerReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"STUDENT FEE LEDGER", "Test Student", "TUITION", "SETTLED", "HOSTEL", "PARTIAL", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("Console output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateLedgerReport_JSON(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	report := BuildStudentLedger(sampleLines(), receipt.DefaultSetting(), nil)

	var buf bytes.Buffer
	if err := generator.GenerateLedgerReport(report, &buf); err != nil {
		t.Fatalf("GenerateLedgerReport failed: %v", err)
	}

	var decoded StudentLedgerReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output does not round-trip: %v", err)
	}
	if len(decoded.Lines) != 2 {
		t.Errorf("Expected 2 lines in JSON, got %d", len(decoded.Lines))
	}
}

func TestGenerateLedgerReport_CSV(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	report := BuildStudentLedger(sampleLines(), receipt.DefaultSetting(), nil)

	var buf bytes.Buffer
	if err := generator.GenerateLedgerReport(report, &buf); err != nil {
		t.Fatalf("GenerateLedgerReport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 records, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "fee_head,") {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "TUITION") {
		t.Errorf("Expected TUITION record, got %s", lines[1])
	}
}

func TestGenerateCollectionReport_Console(t *testing.T) {
	generator, err := NewReportGenerator(DefaultReportConfig())
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	r := reports.Range{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	report := BuildCollectionReport(sampleBuckets(), reports.GroupByCashier, r)

	var buf bytes.Buffer
	if err := generator.GenerateCollectionReport(report, &buf); err != nil {
		t.Fatalf("GenerateCollectionReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"COLLECTION REPORT (cashier)", "CSH01", "800.00", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("Console output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateCollectionReport_CSV(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	r := reports.Range{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	report := BuildCollectionReport(sampleBuckets(), reports.GroupByCashier, r)

	var buf bytes.Buffer
	if err := generator.GenerateCollectionReport(report, &buf); err != nil {
		t.Fatalf("GenerateCollectionReport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "group,count,cash,bank,debit,credit,net" {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}
	if lines[1] != "CSH01,2,1000.00,0.00,1000.00,200.00,800.00" {
		t.Errorf("Unexpected CSV record: %s", lines[1])
	}
}

func TestGenerateDashboardReport_Console(t *testing.T) {
	generator, err := NewReportGenerator(DefaultReportConfig())
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	summary := &reports.DashboardSummary{
		Today:       reports.PeriodSummary{Count: 1, Cash: decimal.NewFromInt(1000), Bank: decimal.Zero, Total: decimal.NewFromInt(1000)},
		MonthToDate: reports.PeriodSummary{Count: 2, Cash: decimal.NewFromInt(1500), Bank: decimal.Zero, Total: decimal.NewFromInt(1500)},
		AllTime:     reports.PeriodSummary{Count: 3, Cash: decimal.NewFromInt(1700), Bank: decimal.Zero, Total: decimal.NewFromInt(1700)},
		TopColleges: []reports.GroupTotal{{Name: "ENG", Count: 2, Total: decimal.NewFromInt(1500)}},
	}

	var buf bytes.Buffer
	if err := generator.GenerateDashboardReport(summary, &buf); err != nil {
		t.Fatalf("GenerateDashboardReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"COLLECTION DASHBOARD", "Today", "Month-to-date", "All time", "ENG"} {
		if !strings.Contains(out, want) {
			t.Errorf("Console output missing %q:\n%s", want, out)
		}
	}
}

func TestNewReportGenerator_InvalidFormat(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = "xml"
	if _, err := NewReportGenerator(config); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
