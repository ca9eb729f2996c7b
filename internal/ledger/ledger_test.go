package ledger

import (
	"testing"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"

	"github.com/shopspring/decimal"
)

func testDemand(studentID, feeHeadID string, year int, semester models.SemesterTerm, amount float64) models.Demand {
	return models.Demand{
		StudentID:   studentID,
		FeeHeadID:   feeHeadID,
		StudentYear: year,
		Semester:    semester,
		Amount:      decimal.NewFromFloat(amount),
	}
}

func testTransaction(studentID, feeHeadID string, year int, semester models.SemesterTerm,
	amount float64, txType models.TransactionType, mode models.PaymentMode) models.Transaction {
	return models.Transaction{
		ID:          "tx-" + feeHeadID,
		StudentID:   studentID,
		FeeHeadID:   feeHeadID,
		StudentYear: year,
		Semester:    semester,
		Amount:      decimal.NewFromFloat(amount),
		Type:        txType,
		Mode:        mode,
		CollectedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func findLine(t *testing.T, lines []LedgerLine, key models.FeeKey) LedgerLine {
	t.Helper()
	for _, line := range lines {
		if line.Key == key {
			return line
		}
	}
	t.Fatalf("no ledger line for key %s", key)
	return LedgerLine{}
}

func TestReconcile_PartialPaymentWithConcession(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "TUITION", 1, models.SemesterYearly, 50000),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "TUITION", 1, models.SemesterYearly, 30000, models.TransactionTypeDebit, models.PaymentModeCash),
		testTransaction("STU001", "TUITION", 1, models.SemesterYearly, 10000, models.TransactionTypeDebit, models.PaymentModeBank),
		testTransaction("STU001", "TUITION", 1, models.SemesterYearly, 5000, models.TransactionTypeCredit, models.PaymentModeCash),
	}

	lines, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("Expected 1 ledger line, got %d", len(lines))
	}

	line := lines[0]
	if !line.Demand.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected demand 50000, got %s", line.Demand)
	}
	if !line.Paid.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("Expected paid 35000, got %s", line.Paid)
	}
	if !line.Due.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("Expected due 15000, got %s", line.Due)
	}
	if line.Overpaid {
		t.Error("Expected line not to be overpaid")
	}
	if !line.CashPaid.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("Expected cash paid 30000, got %s", line.CashPaid)
	}
	if !line.BankPaid.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected bank paid 10000, got %s", line.BankPaid)
	}
	if !line.CreditTotal.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected credit total 5000, got %s", line.CreditTotal)
	}
}

func TestReconcile_KeyUnion(t *testing.T) {
	// A demanded-but-unpaid head and a paid-but-undemanded head must both
	// produce lines.
	demands := []models.Demand{
		testDemand("STU001", "TUITION", 1, models.SemesterYearly, 40000),
		testDemand("STU001", "LIBRARY", 1, models.SemesterYearly, 2000),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "TUITION", 1, models.SemesterYearly, 40000, models.TransactionTypeDebit, models.PaymentModeCash),
		testTransaction("STU001", "FINE", 1, models.SemesterYearly, 500, models.TransactionTypeDebit, models.PaymentModeCash),
	}

	lines, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("Expected 3 ledger lines, got %d", len(lines))
	}

	library := findLine(t, lines, models.FeeKey{FeeHeadID: "LIBRARY", StudentYear: 1})
	if !library.Due.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Expected unpaid library due 2000, got %s", library.Due)
	}
	if !library.Paid.IsZero() {
		t.Errorf("Expected unpaid library paid 0, got %s", library.Paid)
	}

	fine := findLine(t, lines, models.FeeKey{FeeHeadID: "FINE", StudentYear: 1})
	if !fine.Demand.IsZero() {
		t.Errorf("Expected ad hoc fine demand 0, got %s", fine.Demand)
	}
	if !fine.Paid.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected ad hoc fine paid 500, got %s", fine.Paid)
	}
	if !fine.Overpaid {
		t.Error("Expected ad hoc payment to report as overpaid")
	}
}

func TestReconcile_SemesterIsolation(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "EXAM", 2, models.SemesterFirst, 1500),
		testDemand("STU001", "EXAM", 2, models.SemesterSecond, 1500),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "EXAM", 2, models.SemesterFirst, 1500, models.TransactionTypeDebit, models.PaymentModeCash),
	}

	lines, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	first := findLine(t, lines, models.FeeKey{FeeHeadID: "EXAM", StudentYear: 2, Semester: models.SemesterFirst})
	if !first.Due.IsZero() {
		t.Errorf("Expected sem 1 settled, got due %s", first.Due)
	}

	second := findLine(t, lines, models.FeeKey{FeeHeadID: "EXAM", StudentYear: 2, Semester: models.SemesterSecond})
	if !second.Due.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected sem 2 due 1500, got %s", second.Due)
	}
}

func TestReconcile_YearlyAndSemesterAreDistinct(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "SPORTS", 1, models.SemesterYearly, 1000),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "SPORTS", 1, models.SemesterFirst, 1000, models.TransactionTypeDebit, models.PaymentModeCash),
	}

	lines, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("Expected yearly demand and sem 1 payment to stay separate, got %d lines", len(lines))
	}

	yearly := findLine(t, lines, models.FeeKey{FeeHeadID: "SPORTS", StudentYear: 1, Semester: models.SemesterYearly})
	if !yearly.Due.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected yearly demand to stay due, got %s", yearly.Due)
	}
}

func TestReconcile_OverCreditGoesNegative(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "BUS", 1, models.SemesterYearly, 3000),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "BUS", 1, models.SemesterYearly, 5000, models.TransactionTypeCredit, models.PaymentModeCash),
	}

	lines, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	line := lines[0]
	if !line.Paid.IsZero() {
		t.Errorf("Expected displayed paid floored at 0, got %s", line.Paid)
	}
	if !line.NetPaid.Equal(decimal.NewFromInt(-5000)) {
		t.Errorf("Expected net paid -5000, got %s", line.NetPaid)
	}
	if !line.Due.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("Expected due 8000, got %s", line.Due)
	}
}

func TestReconcile_ScopeFilters(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "TUITION", 1, models.SemesterYearly, 40000),
		testDemand("STU001", "HOSTEL", 1, models.SemesterYearly, 20000),
		testDemand("STU002", "TUITION", 1, models.SemesterYearly, 40000),
	}

	lines, err := Reconcile(demands, nil, Scope{StudentID: "STU001", FeeHeadID: "HOSTEL"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("Expected 1 scoped line, got %d", len(lines))
	}
	if lines[0].Key.FeeHeadID != "HOSTEL" {
		t.Errorf("Expected HOSTEL line, got %s", lines[0].Key.FeeHeadID)
	}
}

func TestReconcile_SemesterScopeUsesPointer(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "EXAM", 1, models.SemesterYearly, 1000),
		testDemand("STU001", "EXAM", 1, models.SemesterFirst, 500),
	}

	yearly := models.SemesterYearly
	lines, err := Reconcile(demands, nil, Scope{StudentID: "STU001", Semester: &yearly})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Key.Semester != models.SemesterYearly {
		t.Fatalf("Expected only the yearly bucket, got %d lines", len(lines))
	}

	// Nil semester means no filter at all
	lines, err = Reconcile(demands, nil, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected both buckets with no semester filter, got %d lines", len(lines))
	}
}

func TestReconcile_EmptyScopeRejected(t *testing.T) {
	_, err := Reconcile(nil, nil, Scope{})
	if err == nil {
		t.Fatal("Expected error for empty student id")
	}

	ledgerErr, ok := errors.AsLedgerError(err)
	if !ok {
		t.Fatalf("Expected a LedgerError, got %T", err)
	}
	if ledgerErr.Code != errors.CodeInvalidScope {
		t.Errorf("Expected code %s, got %s", errors.CodeInvalidScope, ledgerErr.Code)
	}
}

func TestReconcile_LinesSortedByKey(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "TUITION", 2, models.SemesterYearly, 100),
		testDemand("STU001", "BUS", 1, models.SemesterYearly, 100),
		testDemand("STU001", "BUS", 1, models.SemesterFirst, 100),
	}

	lines, err := Reconcile(demands, nil, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	for i := 1; i < len(lines); i++ {
		if lines[i].Key.Less(lines[i-1].Key) {
			t.Errorf("Lines out of order at %d: %s before %s", i, lines[i-1].Key, lines[i].Key)
		}
	}
}

func TestReconcile_InputsUnchanged(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "TUITION", 1, models.SemesterYearly, 40000),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "TUITION", 1, models.SemesterYearly, 40000, models.TransactionTypeDebit, models.PaymentModeCash),
	}
	demandBefore := demands[0].Amount.String()
	txBefore := transactions[0].Amount.String()

	if _, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"}); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if demands[0].Amount.String() != demandBefore {
		t.Error("Reconcile mutated the demand input")
	}
	if transactions[0].Amount.String() != txBefore {
		t.Error("Reconcile mutated the transaction input")
	}
}

func TestTotals(t *testing.T) {
	demands := []models.Demand{
		testDemand("STU001", "TUITION", 1, models.SemesterYearly, 40000),
		testDemand("STU001", "HOSTEL", 1, models.SemesterYearly, 20000),
	}
	transactions := []models.Transaction{
		testTransaction("STU001", "TUITION", 1, models.SemesterYearly, 30000, models.TransactionTypeDebit, models.PaymentModeCash),
	}

	lines, err := Reconcile(demands, transactions, Scope{StudentID: "STU001"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	totals := Totals(lines)
	if !totals.Demand.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("Expected total demand 60000, got %s", totals.Demand)
	}
	if !totals.Paid.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("Expected total paid 30000, got %s", totals.Paid)
	}
	if !totals.Due.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("Expected total due 30000, got %s", totals.Due)
	}
}
