package storage

import (
	"context"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// receiptSettingRowID pins the settings table to a single logical row
const receiptSettingRowID = 1

// GetReceiptSetting returns the stored receipt setting, or the default
// setting when none has been stored yet.
func (s *Store) GetReceiptSetting(ctx context.Context) (receipt.Setting, error) {
	var row ReceiptSettingRow
	err := s.db.WithContext(ctx).First(&row, receiptSettingRowID).Error
	if err == gorm.ErrRecordNotFound {
		return receipt.DefaultSetting(), nil
	}
	if err != nil {
		return receipt.Setting{}, errors.StorageError(errors.CodeStorageUnavailable, "get_receipt_setting", err)
	}
	return row.toSetting(), nil
}

// SaveReceiptSetting upserts the receipt setting. Last-writer-wins is
// acceptable here: this is low-frequency admin configuration, not ledger
// data.
func (s *Store) SaveReceiptSetting(ctx context.Context, setting receipt.Setting) error {
	row := settingToRow(setting)

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "save_receipt_setting", err)
	}

	s.logger.WithField("mask_name", setting.MaskName).Info("Saved receipt setting")
	return nil
}
