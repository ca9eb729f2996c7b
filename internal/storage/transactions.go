package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/google/uuid"
)

// TransactionFilter narrows a transaction range query. Zero values mean no
// filter on that dimension.
type TransactionFilter struct {
	From      *time.Time
	To        *time.Time
	StudentID string
	CashierID string
	FeeHeadID string
	College   string
}

// RecordTransaction appends one transaction to the ledger. The insert is a
// single atomic row write; there is no update path. A missing id or receipt
// number is assigned here so callers never mint identifiers themselves.
func (s *Store) RecordTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if t == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "transaction", nil, nil)
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.ReceiptNo == "" {
		t.ReceiptNo = fmt.Sprintf("RCP-%s", uuid.NewString()[:8])
	}
	if t.CollectedAt.IsZero() {
		t.CollectedAt = time.Now()
	}

	if err := t.Validate(); err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidData, "transaction", t.ID, err)
	}

	row := rowFromModel(t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.StorageError(errors.CodeWriteFailed, "record_transaction", err)
	}

	s.logger.WithFields(logger.Fields{
		"transaction_id": t.ID,
		"student_id":     t.StudentID,
		"receipt_no":     t.ReceiptNo,
	}).Info("Recorded fee transaction")

	return t, nil
}

// ListTransactions returns the complete result set for the filter, ordered
// by collection time. The MaxScanRows guard rejects queries that would scan
// more rows than configured instead of silently truncating.
func (s *Store) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	query := s.db.WithContext(ctx).Model(&TransactionRow{}).Order("collected_at asc")

	if filter.From != nil {
		query = query.Where("collected_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("collected_at <= ?", *filter.To)
	}
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.CashierID != "" {
		query = query.Where("cashier_id = ?", filter.CashierID)
	}
	if filter.FeeHeadID != "" {
		query = query.Where("fee_head_id = ?", filter.FeeHeadID)
	}
	if filter.College != "" {
		query = query.Where("college = ?", filter.College)
	}

	if s.config.MaxScanRows > 0 {
		query = query.Limit(s.config.MaxScanRows + 1)
	}

	var rows []TransactionRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "list_transactions", err)
	}

	if s.config.MaxScanRows > 0 && len(rows) > s.config.MaxScanRows {
		return nil, errors.New(errors.CategoryRange, errors.CodeRangeTooLarge,
			fmt.Sprintf("query matches more than %d rows", s.config.MaxScanRows)).
			WithSuggestion("narrow the date range or add more filters").
			WithContext("max_rows", s.config.MaxScanRows)
	}

	result := make([]models.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toModel())
	}
	return result, nil
}

// RecentTransactions returns the most recent n transactions
func (s *Store) RecentTransactions(ctx context.Context, n int) ([]models.Transaction, error) {
	if n <= 0 {
		return nil, nil
	}

	var rows []TransactionRow
	err := s.db.WithContext(ctx).
		Model(&TransactionRow{}).
		Order("collected_at desc").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "recent_transactions", err)
	}

	result := make([]models.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toModel())
	}
	return result, nil
}
