// Package normalizer converts heterogeneous demand and payment upload rows
// into the canonical models.Demand and models.Transaction shapes.
//
// Normalization is row-wise tolerant: one malformed row is rejected with its
// index and reason, and the rest of the batch proceeds. The caller receives
// both the valid records and the rejected rows and decides whether to block
// the whole upload or continue with a skipped-rows report.
package normalizer

import (
	"strings"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"
)

// RawDemand is one demand row as it arrives from a bulk upload or a direct
// write. All fields are strings because upload sources disagree on numeric
// encoding; the normalizer owns the coercion.
type RawDemand struct {
	StudentID           string `json:"studentId"`
	FeeHeadID           string `json:"feeHeadId"`
	AcademicYear        string `json:"academicYear"`
	StudentYear         string `json:"studentYear"`
	Semester            string `json:"semester"`
	Amount              string `json:"amount"`
	Category            string `json:"category"`
	ScholarshipEligible string `json:"scholarshipEligible"`
}

// RawTransaction is one payment row as it arrives from an upload or a
// collection-desk write.
type RawTransaction struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	FeeHeadID   string `json:"feeHeadId"`
	StudentYear string `json:"studentYear"`
	Semester    string `json:"semester"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Mode        string `json:"mode"`
	CashierID   string `json:"cashierId"`
	College     string `json:"college"`
	ReceiptNo   string `json:"receiptNo"`
	CollectedAt string `json:"collectedAt"`
}

// RejectedRow records one row that failed normalization
type RejectedRow struct {
	Index int                 `json:"index"`
	Kind  string              `json:"kind"` // "demand" or "transaction"
	Err   *errors.LedgerError `json:"error"`
}

// Result holds the outcome of a normalization run: the canonical records plus
// the rows that were rejected, in input order.
type Result struct {
	Demands      []models.Demand      `json:"demands"`
	Transactions []models.Transaction `json:"transactions"`
	Rejected     []RejectedRow        `json:"rejected,omitempty"`
}

// RejectedErrors returns the rejection reasons as a flat error slice
func (r *Result) RejectedErrors() []*errors.LedgerError {
	errs := make([]*errors.LedgerError, 0, len(r.Rejected))
	for _, row := range r.Rejected {
		errs = append(errs, row.Err)
	}
	return errs
}

// demandKey identifies a demand position for duplicate merging
type demandKey struct {
	studentID string
	key       models.FeeKey
}

// Normalize converts raw demand and transaction rows into canonical records.
//
// Duplicate demand keys (same student, fee head, year, semester) are summed,
// not overwritten: multiple demand rows for the same head are legitimate
// partial charges in institutional data. Transactions are never merged.
func Normalize(rawDemands []RawDemand, rawTransactions []RawTransaction) (*Result, error) {
	log := logger.GetGlobalLogger().WithComponent("normalizer")

	result := &Result{}

	merged := make(map[demandKey]*models.Demand)
	order := make([]demandKey, 0, len(rawDemands))

	for i, raw := range rawDemands {
		demand, err := normalizeDemand(i, raw)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRow{Index: i, Kind: "demand", Err: err})
			continue
		}

		dk := demandKey{studentID: demand.StudentID, key: demand.Key()}
		if existing, ok := merged[dk]; ok {
			existing.Amount = existing.Amount.Add(demand.Amount)
			continue
		}
		merged[dk] = demand
		order = append(order, dk)
	}

	for _, dk := range order {
		result.Demands = append(result.Demands, *merged[dk])
	}

	for i, raw := range rawTransactions {
		txn, err := normalizeTransaction(i, raw)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRow{Index: i, Kind: "transaction", Err: err})
			continue
		}
		result.Transactions = append(result.Transactions, *txn)
	}

	log.WithFields(logger.Fields{
		"demands":      len(result.Demands),
		"transactions": len(result.Transactions),
		"rejected":     len(result.Rejected),
	}).Info("Normalized upload batch")

	return result, nil
}

func normalizeDemand(index int, raw RawDemand) (*models.Demand, *errors.LedgerError) {
	if strings.TrimSpace(raw.StudentID) == "" {
		return nil, errors.MalformedRecord(index, "studentId", raw.StudentID, nil)
	}
	if strings.TrimSpace(raw.FeeHeadID) == "" {
		return nil, errors.MalformedRecord(index, "feeHeadId", raw.FeeHeadID, nil)
	}

	amount, err := models.ParseDecimalFromString(raw.Amount)
	if err != nil {
		return nil, errors.MalformedRecord(index, "amount", raw.Amount, err)
	}
	if amount.IsNegative() {
		return nil, errors.MalformedRecord(index, "amount", raw.Amount, nil).
			WithSuggestion("demand amounts must be non-negative")
	}

	year, err := models.ParseStudentYear(raw.StudentYear)
	if err != nil {
		return nil, errors.MalformedRecord(index, "studentYear", raw.StudentYear, err)
	}

	semester, err := models.ParseSemester(raw.Semester)
	if err != nil {
		return nil, errors.MalformedRecord(index, "semester", raw.Semester, err)
	}

	demand := &models.Demand{
		StudentID:           strings.TrimSpace(raw.StudentID),
		FeeHeadID:           strings.TrimSpace(raw.FeeHeadID),
		AcademicYear:        strings.TrimSpace(raw.AcademicYear),
		StudentYear:         year,
		Semester:            semester,
		Amount:              amount,
		Category:            strings.TrimSpace(raw.Category),
		ScholarshipEligible: models.ParseBool(raw.ScholarshipEligible),
	}

	if err := demand.Validate(); err != nil {
		return nil, errors.MalformedRecord(index, "demand", raw, err)
	}

	return demand, nil
}

func normalizeTransaction(index int, raw RawTransaction) (*models.Transaction, *errors.LedgerError) {
	if strings.TrimSpace(raw.StudentID) == "" {
		return nil, errors.MalformedRecord(index, "studentId", raw.StudentID, nil)
	}
	if strings.TrimSpace(raw.FeeHeadID) == "" {
		return nil, errors.MalformedRecord(index, "feeHeadId", raw.FeeHeadID, nil)
	}

	amount, err := models.ParseDecimalFromString(raw.Amount)
	if err != nil {
		return nil, errors.MalformedRecord(index, "amount", raw.Amount, err)
	}
	if !amount.IsPositive() {
		return nil, errors.MalformedRecord(index, "amount", raw.Amount, nil).
			WithSuggestion("transaction amounts must be positive magnitudes; use type CREDIT for concessions")
	}

	year, err := models.ParseStudentYear(raw.StudentYear)
	if err != nil {
		return nil, errors.MalformedRecord(index, "studentYear", raw.StudentYear, err)
	}

	semester, err := models.ParseSemester(raw.Semester)
	if err != nil {
		return nil, errors.MalformedRecord(index, "semester", raw.Semester, err)
	}

	txType := models.TransactionTypeDebit
	if strings.TrimSpace(raw.Type) != "" {
		txType, err = models.ParseTransactionType(raw.Type)
		if err != nil {
			return nil, errors.MalformedRecord(index, "type", raw.Type, err)
		}
	}

	mode := models.PaymentModeCash
	if strings.TrimSpace(raw.Mode) != "" {
		mode, err = models.ParsePaymentMode(raw.Mode)
		if err != nil {
			return nil, errors.MalformedRecord(index, "mode", raw.Mode, err)
		}
	}

	collectedAt, err := models.ParseTimeWithFormats(raw.CollectedAt)
	if err != nil {
		return nil, errors.MalformedRecord(index, "collectedAt", raw.CollectedAt, err)
	}

	txn := &models.Transaction{
		ID:          strings.TrimSpace(raw.ID),
		StudentID:   strings.TrimSpace(raw.StudentID),
		FeeHeadID:   strings.TrimSpace(raw.FeeHeadID),
		StudentYear: year,
		Semester:    semester,
		Amount:      amount,
		Type:        txType,
		Mode:        mode,
		CashierID:   strings.TrimSpace(raw.CashierID),
		College:     strings.TrimSpace(raw.College),
		ReceiptNo:   strings.TrimSpace(raw.ReceiptNo),
		CollectedAt: collectedAt,
	}

	if err := txn.Validate(); err != nil {
		return nil, errors.MalformedRecord(index, "transaction", raw, err)
	}

	return txn, nil
}
