package storage

import (
	"context"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
)

// SaveDemands appends a batch of normalized demand records. Duplicate keys
// are allowed by design: reconciliation sums them, matching how partial
// charges accumulate in institutional data.
func (s *Store) SaveDemands(ctx context.Context, demands []models.Demand) error {
	if len(demands) == 0 {
		return nil
	}

	rows := make([]DemandRow, 0, len(demands))
	for i := range demands {
		rows = append(rows, demandToRow(&demands[i]))
	}

	if err := s.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "save_demands", err)
	}

	s.logger.WithField("count", len(rows)).Info("Saved demand batch")
	return nil
}

// ListDemands returns all standing demands for one student
func (s *Store) ListDemands(ctx context.Context, studentID string) ([]models.Demand, error) {
	var rows []DemandRow
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("fee_head_id asc, student_year asc, semester asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "list_demands", err)
	}

	result := make([]models.Demand, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toDemand())
	}
	return result, nil
}
