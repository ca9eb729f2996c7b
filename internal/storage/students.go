package storage

import (
	"context"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"

	"gorm.io/gorm"
)

// GetStudent looks up one directory record
func (s *Store) GetStudent(ctx context.Context, id string) (*models.StudentInfo, error) {
	var row StudentRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.StorageError(errors.CodeRecordNotFound, "get_student", err).
			WithContext("student_id", id)
	}
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "get_student", err)
	}

	info := row.toInfo()
	return &info, nil
}

// StudentDirectory returns an id-keyed lookup map for the given students.
// With no ids the whole directory is returned; the core treats the result
// as an opaque name-resolution map for report labels.
func (s *Store) StudentDirectory(ctx context.Context, ids []string) (map[string]models.StudentInfo, error) {
	query := s.db.WithContext(ctx).Model(&StudentRow{})
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var rows []StudentRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "student_directory", err)
	}

	directory := make(map[string]models.StudentInfo, len(rows))
	for i := range rows {
		directory[rows[i].ID] = rows[i].toInfo()
	}
	return directory, nil
}

// UpsertStudent writes one directory record, used by roster sync jobs
func (s *Store) UpsertStudent(ctx context.Context, info *models.StudentInfo) error {
	if info == nil || info.ID == "" {
		return errors.ValidationError(errors.CodeMissingField, "student.id", nil, nil)
	}

	row := StudentRow{
		ID:          info.ID,
		Name:        info.Name,
		College:     info.College,
		Course:      info.Course,
		Branch:      info.Branch,
		StudentYear: info.StudentYear,
		Category:    info.Category,
	}

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return errors.StorageError(errors.CodeWriteFailed, "upsert_student", err)
	}
	return nil
}
