package storage

import (
	"strings"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"

	"github.com/shopspring/decimal"
)

// TransactionRow is the persisted shape of a fee transaction. Rows are
// inserted once and never updated.
type TransactionRow struct {
	ID          string          `gorm:"primaryKey;type:uuid"`
	StudentID   string          `gorm:"not null;index"`
	FeeHeadID   string          `gorm:"not null;index"`
	StudentYear int             `gorm:"not null"`
	Semester    int             `gorm:"not null;default:0"`
	Amount      decimal.Decimal `gorm:"not null;type:numeric(14,2)"`
	Type        string          `gorm:"not null"`
	Mode        string          `gorm:"not null"`
	CashierID   string          `gorm:"index"`
	College     string          `gorm:"index"`
	ReceiptNo   string          `gorm:"uniqueIndex"`
	CollectedAt time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time
}

// TableName keeps the historical table name used by the collection desk
func (TransactionRow) TableName() string {
	return "fee_transactions"
}

// toModel converts a row to the canonical transaction shape
func (r *TransactionRow) toModel() models.Transaction {
	return models.Transaction{
		ID:          r.ID,
		StudentID:   r.StudentID,
		FeeHeadID:   r.FeeHeadID,
		StudentYear: r.StudentYear,
		Semester:    models.SemesterTerm(r.Semester),
		Amount:      r.Amount,
		Type:        models.TransactionType(r.Type),
		Mode:        models.PaymentMode(r.Mode),
		CashierID:   r.CashierID,
		College:     r.College,
		ReceiptNo:   r.ReceiptNo,
		CollectedAt: r.CollectedAt,
	}
}

func rowFromModel(t *models.Transaction) TransactionRow {
	return TransactionRow{
		ID:          t.ID,
		StudentID:   t.StudentID,
		FeeHeadID:   t.FeeHeadID,
		StudentYear: t.StudentYear,
		Semester:    int(t.Semester),
		Amount:      t.Amount,
		Type:        string(t.Type),
		Mode:        string(t.Mode),
		CashierID:   t.CashierID,
		College:     t.College,
		ReceiptNo:   t.ReceiptNo,
		CollectedAt: t.CollectedAt,
	}
}

// DemandRow is the persisted shape of a standing fee obligation. Rows for
// the same ledger key are legitimate partial charges; reconciliation sums
// them, so no uniqueness constraint spans the key columns.
type DemandRow struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement"`
	StudentID           string          `gorm:"not null;index:idx_demand_key"`
	FeeHeadID           string          `gorm:"not null;index:idx_demand_key"`
	AcademicYear        string          `gorm:"index"`
	StudentYear         int             `gorm:"not null;index:idx_demand_key"`
	Semester            int             `gorm:"not null;default:0;index:idx_demand_key"`
	Amount              decimal.Decimal `gorm:"not null;type:numeric(14,2)"`
	Category            string
	ScholarshipEligible bool
	CreatedAt           time.Time
}

// TableName returns the demand table name
func (DemandRow) TableName() string {
	return "fee_demands"
}

func (r *DemandRow) toDemand() models.Demand {
	return models.Demand{
		StudentID:           r.StudentID,
		FeeHeadID:           r.FeeHeadID,
		AcademicYear:        r.AcademicYear,
		StudentYear:         r.StudentYear,
		Semester:            models.SemesterTerm(r.Semester),
		Amount:              r.Amount,
		Category:            r.Category,
		ScholarshipEligible: r.ScholarshipEligible,
	}
}

func demandToRow(d *models.Demand) DemandRow {
	return DemandRow{
		StudentID:           d.StudentID,
		FeeHeadID:           d.FeeHeadID,
		AcademicYear:        d.AcademicYear,
		StudentYear:         d.StudentYear,
		Semester:            int(d.Semester),
		Amount:              d.Amount,
		Category:            d.Category,
		ScholarshipEligible: d.ScholarshipEligible,
	}
}

// ReceiptSettingRow is the single stored receipt display configuration.
// Masked fee head ids are stored as a comma-joined list; the set semantics
// live in the receipt package.
type ReceiptSettingRow struct {
	ID                int    `gorm:"primaryKey"`
	ShowCollegeHeader bool   `gorm:"not null;default:true"`
	MaskedFeeHeadIDs  string `gorm:"type:text"`
	MaskName          string `gorm:"not null"`
	UpdatedAt         time.Time
}

// TableName returns the settings table name
func (ReceiptSettingRow) TableName() string {
	return "receipt_settings"
}

func (r *ReceiptSettingRow) toSetting() receipt.Setting {
	var ids []string
	if strings.TrimSpace(r.MaskedFeeHeadIDs) != "" {
		ids = strings.Split(r.MaskedFeeHeadIDs, ",")
	}
	return receipt.NewSetting(r.ShowCollegeHeader, ids, r.MaskName)
}

func settingToRow(s receipt.Setting) ReceiptSettingRow {
	return ReceiptSettingRow{
		ID:                receiptSettingRowID,
		ShowCollegeHeader: s.ShowCollegeHeader,
		MaskedFeeHeadIDs:  strings.Join(s.MaskedIDs(), ","),
		MaskName:          s.MaskName,
	}
}

// StudentRow is the directory record used to enrich report labels
type StudentRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	College     string `gorm:"index"`
	Course      string `gorm:"index"`
	Branch      string
	StudentYear int
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the directory table name
func (StudentRow) TableName() string {
	return "students"
}

func (r *StudentRow) toInfo() models.StudentInfo {
	return models.StudentInfo{
		ID:          r.ID,
		Name:        r.Name,
		College:     r.College,
		Course:      r.Course,
		Branch:      r.Branch,
		StudentYear: r.StudentYear,
		Category:    r.Category,
	}
}
