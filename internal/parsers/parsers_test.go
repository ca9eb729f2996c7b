package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestParseDemands_CanonicalHeaders(t *testing.T) {
	path := writeTempCSV(t, "demands.csv", `studentId,feeHeadId,academicYear,studentYear,semester,amount,category,scholarshipEligible
STU001,TUITION,2025-26,1,,45000,GEN,true
STU001,HOSTEL,2025-26,1,1,20000,GEN,false
`)

	parser := NewDemandParser(nil)
	rows, stats, err := parser.ParseDemands(path)
	if err != nil {
		t.Fatalf("ParseDemands failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if stats.RecordsRead != 2 {
		t.Errorf("Expected stats to report 2 records, got %d", stats.RecordsRead)
	}

	first := rows[0]
	if first.StudentID != "STU001" || first.FeeHeadID != "TUITION" {
		t.Errorf("Unexpected first row: %+v", first)
	}
	if first.Amount != "45000" {
		t.Errorf("Expected raw amount string '45000', got %q", first.Amount)
	}
	if first.Semester != "" {
		t.Errorf("Expected blank semester preserved for the normalizer, got %q", first.Semester)
	}
	if first.ScholarshipEligible != "true" {
		t.Errorf("Expected raw scholarship flag 'true', got %q", first.ScholarshipEligible)
	}
}

func TestParseDemands_AliasedHeaders(t *testing.T) {
	path := writeTempCSV(t, "demands.csv", `admission_no,fee_head,year_of_study,sem,amt
STU001,TUITION,1,,45000
`)

	parser := NewDemandParser(nil)
	rows, _, err := parser.ParseDemands(path)
	if err != nil {
		t.Fatalf("ParseDemands failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].StudentID != "STU001" || rows[0].Amount != "45000" {
		t.Errorf("Alias resolution failed: %+v", rows[0])
	}
}

func TestParseDemands_MissingRequiredColumn(t *testing.T) {
	path := writeTempCSV(t, "demands.csv", `studentId,studentYear,amount
STU001,1,45000
`)

	parser := NewDemandParser(nil)
	_, _, err := parser.ParseDemands(path)
	if err == nil {
		t.Fatal("Expected error for missing feeHeadId column")
	}

	ledgerErr, ok := errors.AsLedgerError(err)
	if !ok {
		t.Fatalf("Expected a LedgerError, got %T", err)
	}
	if ledgerErr.Code != errors.CodeMissingColumn {
		t.Errorf("Expected code %s, got %s", errors.CodeMissingColumn, ledgerErr.Code)
	}
}

func TestParseDemands_FileNotFound(t *testing.T) {
	parser := NewDemandParser(nil)
	_, _, err := parser.ParseDemands("/nonexistent/demands.csv")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	ledgerErr, ok := errors.AsLedgerError(err)
	if !ok {
		t.Fatalf("Expected a LedgerError, got %T", err)
	}
	if ledgerErr.Code != errors.CodeFileNotFound {
		t.Errorf("Expected code %s, got %s", errors.CodeFileNotFound, ledgerErr.Code)
	}
}

func TestParseDemands_SkipsEmptyRows(t *testing.T) {
	path := writeTempCSV(t, "demands.csv", `studentId,feeHeadId,studentYear,amount
STU001,TUITION,1,45000
,,,
STU002,TUITION,1,45000
`)

	parser := NewDemandParser(nil)
	rows, stats, err := parser.ParseDemands(path)
	if err != nil {
		t.Fatalf("ParseDemands failed: %v", err)
	}

	if len(rows) != 2 {
		t.Errorf("Expected empty row skipped, got %d rows", len(rows))
	}
	if stats.RecordsRead != 2 {
		t.Errorf("Expected 2 records read, got %d", stats.RecordsRead)
	}
}

func TestParseDemands_ValueProblemsPassThrough(t *testing.T) {
	// Bad values are the normalizer's concern, not the parser's
	path := writeTempCSV(t, "demands.csv", `studentId,feeHeadId,studentYear,amount
STU001,TUITION,not-a-year,not-a-number
`)

	parser := NewDemandParser(nil)
	rows, _, err := parser.ParseDemands(path)
	if err != nil {
		t.Fatalf("Expected parser to pass bad values through, got %v", err)
	}
	if len(rows) != 1 || rows[0].Amount != "not-a-number" {
		t.Errorf("Expected raw value preserved, got %+v", rows)
	}
}

func TestParseTransactions_CanonicalHeaders(t *testing.T) {
	path := writeTempCSV(t, "transactions.csv", `id,studentId,feeHeadId,studentYear,semester,amount,type,mode,cashierId,college,receiptNo,collectedAt
tx-1,STU001,TUITION,1,,30000,DEBIT,CASH,CSH01,ENG,RCP-1001,2025-06-15 10:30:00
tx-2,STU001,TUITION,1,,5000,CREDIT,CASH,CSH01,ENG,RCP-1002,2025-06-15 11:00:00
`)

	parser := NewTransactionParser(nil)
	rows, stats, err := parser.ParseTransactions(path)
	if err != nil {
		t.Fatalf("ParseTransactions failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if stats.RecordsRead != 2 {
		t.Errorf("Expected 2 records read, got %d", stats.RecordsRead)
	}

	first := rows[0]
	if first.ID != "tx-1" || first.Type != "DEBIT" || first.Mode != "CASH" {
		t.Errorf("Unexpected first row: %+v", first)
	}
	if first.CollectedAt != "2025-06-15 10:30:00" {
		t.Errorf("Expected raw timestamp preserved, got %q", first.CollectedAt)
	}
}

func TestParseTransactions_AliasedHeaders(t *testing.T) {
	path := writeTempCSV(t, "transactions.csv", `transaction_id,admission_no,fee_head,year,amount,debit_credit,payment_mode,cashier,receipt,date
tx-1,STU001,TUITION,1,30000,DR,ONLINE,CSH01,RCP-1001,2025-06-15
`)

	parser := NewTransactionParser(nil)
	rows, _, err := parser.ParseTransactions(path)
	if err != nil {
		t.Fatalf("ParseTransactions failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.ID != "tx-1" || row.StudentID != "STU001" || row.Type != "DR" || row.Mode != "ONLINE" {
		t.Errorf("Alias resolution failed: %+v", row)
	}
}

func TestParseTransactions_MissingCollectedAt(t *testing.T) {
	path := writeTempCSV(t, "transactions.csv", `studentId,feeHeadId,studentYear,amount
STU001,TUITION,1,30000
`)

	parser := NewTransactionParser(nil)
	_, _, err := parser.ParseTransactions(path)
	if err == nil {
		t.Fatal("Expected error for missing collectedAt column")
	}
}

func TestParseTransactions_RaggedRows(t *testing.T) {
	// Short rows resolve missing columns to "" rather than aborting
	path := writeTempCSV(t, "transactions.csv", `studentId,feeHeadId,studentYear,amount,collectedAt,cashierId
STU001,TUITION,1,30000,2025-06-15
`)

	parser := NewTransactionParser(nil)
	rows, _, err := parser.ParseTransactions(path)
	if err != nil {
		t.Fatalf("ParseTransactions failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].CashierID != "" {
		t.Errorf("Expected missing trailing field to resolve empty, got %q", rows[0].CashierID)
	}
}
