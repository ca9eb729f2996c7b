package server

import (
	"strings"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/normalizer"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
)

// CreateTransactionRequest is the collection-desk write payload. Amount is a
// string because desk clients send formatted values; coercion lives in the
// models parse helpers, same as bulk uploads.
type CreateTransactionRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	FeeHeadID   string `json:"feeHeadId" validate:"required"`
	StudentYear int    `json:"studentYear" validate:"required,min=1,max=10"`
	Semester    int    `json:"semester" validate:"min=0,max=2"`
	Amount      string `json:"amount" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=DEBIT CREDIT"`
	Mode        string `json:"mode" validate:"omitempty,oneof=CASH BANK"`
	CashierID   string `json:"cashierId"`
	College     string `json:"college"`
	CollectedAt string `json:"collectedAt" validate:"omitempty"`
}

// toModel converts the request into a canonical transaction. Defaults match
// the normalizer: blank type means DEBIT, blank mode means CASH.
func (r *CreateTransactionRequest) toModel() (*models.Transaction, error) {
	amount, err := models.ParseDecimalFromString(r.Amount)
	if err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidAmount, "amount", r.Amount, err)
	}
	if !amount.IsPositive() {
		return nil, errors.ValidationError(errors.CodeInvalidAmount, "amount", r.Amount, nil).
			WithSuggestion("Transaction amounts are positive magnitudes; use type CREDIT for concessions")
	}

	txType := models.TransactionTypeDebit
	if strings.TrimSpace(r.Type) != "" {
		txType, err = models.ParseTransactionType(r.Type)
		if err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidData, "type", r.Type, err)
		}
	}

	mode := models.PaymentModeCash
	if strings.TrimSpace(r.Mode) != "" {
		mode, err = models.ParsePaymentMode(r.Mode)
		if err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidData, "mode", r.Mode, err)
		}
	}

	var collectedAt time.Time
	if strings.TrimSpace(r.CollectedAt) != "" {
		collectedAt, err = models.ParseTimeWithFormats(r.CollectedAt)
		if err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidDate, "collectedAt", r.CollectedAt, err)
		}
	}

	return &models.Transaction{
		StudentID:   strings.TrimSpace(r.StudentID),
		FeeHeadID:   strings.TrimSpace(r.FeeHeadID),
		StudentYear: r.StudentYear,
		Semester:    models.SemesterTerm(r.Semester),
		Amount:      amount,
		Type:        txType,
		Mode:        mode,
		CashierID:   strings.TrimSpace(r.CashierID),
		College:     strings.TrimSpace(r.College),
		CollectedAt: collectedAt,
	}, nil
}

// ReceiptSettingRequest is the admin payload for the receipt display setting
type ReceiptSettingRequest struct {
	ShowCollegeHeader bool     `json:"showCollegeHeader"`
	MaskedFeeHeadIDs  []string `json:"maskedFeeHeadIds" validate:"max=200,dive,required"`
	MaskName          string   `json:"maskName" validate:"omitempty,max=64"`
}

// BulkDemandRequest carries a demand upload batch in raw row form
type BulkDemandRequest struct {
	Demands []normalizer.RawDemand `json:"demands" validate:"required,min=1,max=10000"`
}

// BulkDemandResponse reports the row-wise outcome of a demand upload
type BulkDemandResponse struct {
	Accepted int                      `json:"accepted"`
	Rejected []normalizer.RejectedRow `json:"rejected,omitempty"`
}

// errorResponse is the uniform error body for all API failures
type errorResponse struct {
	Error      string                 `json:"error"`
	Code       string                 `json:"code,omitempty"`
	Category   string                 `json:"category,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}
