package parsers

import (
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/normalizer"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"
)

// Canonical transaction column names
const (
	txColID          = "id"
	txColStudentID   = "studentId"
	txColFeeHeadID   = "feeHeadId"
	txColStudentYear = "studentYear"
	txColSemester    = "semester"
	txColAmount      = "amount"
	txColType        = "type"
	txColMode        = "mode"
	txColCashierID   = "cashierId"
	txColCollege     = "college"
	txColReceiptNo   = "receiptNo"
	txColCollectedAt = "collectedAt"
)

// TransactionParserConfig configures collection export parsing
type TransactionParserConfig struct {
	*ParseConfig
	// ColumnAliases maps lowercased header labels to canonical column names
	ColumnAliases map[string]string
}

// DefaultTransactionParserConfig covers the header variants produced by the
// collection-desk exports
func DefaultTransactionParserConfig() *TransactionParserConfig {
	return &TransactionParserConfig{
		ParseConfig: DefaultParseConfig(),
		ColumnAliases: map[string]string{
			"studentid":        txColStudentID,
			"feeheadid":        txColFeeHeadID,
			"studentyear":      txColStudentYear,
			"cashierid":        txColCashierID,
			"receiptno":        txColReceiptNo,
			"collectedat":      txColCollectedAt,
			"txn_id":           txColID,
			"transaction_id":   txColID,
			"student_id":       txColStudentID,
			"admission_no":     txColStudentID,
			"fee_head":         txColFeeHeadID,
			"fee_head_id":      txColFeeHeadID,
			"year_of_study":    txColStudentYear,
			"student_year":     txColStudentYear,
			"year":             txColStudentYear,
			"sem":              txColSemester,
			"amt":              txColAmount,
			"transaction_type": txColType,
			"debit_credit":     txColType,
			"payment_mode":     txColMode,
			"cashier":          txColCashierID,
			"cashier_id":       txColCashierID,
			"receipt_no":       txColReceiptNo,
			"receipt":          txColReceiptNo,
			"date":             txColCollectedAt,
			"collected_at":     txColCollectedAt,
			"transaction_time": txColCollectedAt,
			"timestamp":        txColCollectedAt,
		},
	}
}

// TransactionParser reads collection export files into raw rows
type TransactionParser struct {
	*BaseParser
	config *TransactionParserConfig
	logger logger.Logger
}

// NewTransactionParser creates a new TransactionParser
func NewTransactionParser(config *TransactionParserConfig) *TransactionParser {
	if config == nil {
		config = DefaultTransactionParserConfig()
	}
	return &TransactionParser{
		BaseParser: NewBaseParser(config.ParseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("transaction_parser"),
	}
}

// ParseTransactions reads a collection export CSV into raw rows
func (tp *TransactionParser) ParseTransactions(path string) ([]normalizer.RawTransaction, *ParseStats, error) {
	tp.logger.WithField("file_path", path).Info("Parsing collection export")

	file, reader, err := tp.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	required := []string{txColStudentID, txColFeeHeadID, txColStudentYear, txColAmount, txColCollectedAt}
	columns, err := tp.ResolveHeaders(reader, path, tp.config.ColumnAliases, required)
	if err != nil {
		return nil, nil, err
	}

	stats := &ParseStats{}
	var rows []normalizer.RawTransaction

	err = tp.forEachRecord(reader, stats, func(line int, record []string) {
		rows = append(rows, normalizer.RawTransaction{
			ID:          columns.get(record, txColID),
			StudentID:   columns.get(record, txColStudentID),
			FeeHeadID:   columns.get(record, txColFeeHeadID),
			StudentYear: columns.get(record, txColStudentYear),
			Semester:    columns.get(record, txColSemester),
			Amount:      columns.get(record, txColAmount),
			Type:        columns.get(record, txColType),
			Mode:        columns.get(record, txColMode),
			CashierID:   columns.get(record, txColCashierID),
			College:     columns.get(record, txColCollege),
			ReceiptNo:   columns.get(record, txColReceiptNo),
			CollectedAt: columns.get(record, txColCollectedAt),
		})
	})
	if err != nil {
		return rows, stats, err
	}

	tp.logger.WithFields(logger.Fields{
		"file_path":    path,
		"records_read": stats.RecordsRead,
		"skipped":      len(stats.SkippedLines),
	}).Info("Collection export parsed")

	return rows, stats, nil
}
