package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/types"
)

type WarrantySlipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, slips []*types.WarrantySlip) ([]*types.WarrantySlip, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, slipIDs []uuid.UUID) ([]*types.WarrantySlip, error)
	// ListByUserID scopes the result to one owner in SQL; callers never
	// filter ownership client-side.
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.WarrantySlip, error)
	ListUserIDsWithSlips(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	UpdateReminder(ctx context.Context, tx *gorm.DB, slipID uuid.UUID, reminderSet bool) error
	UpdateOwner(ctx context.Context, tx *gorm.DB, slipID, newUserID uuid.UUID) error
	UpdateEndDate(ctx context.Context, tx *gorm.DB, slipID uuid.UUID, newEnd time.Time) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, slipIDs []uuid.UUID) error
}

type warrantySlipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWarrantySlipRepo(db *gorm.DB, baseLog *logger.Logger) WarrantySlipRepo {
	repoLog := baseLog.With("repo", "WarrantySlipRepo")
	return &warrantySlipRepo{db: db, log: repoLog}
}

func (wr *warrantySlipRepo) Create(ctx context.Context, tx *gorm.DB, slips []*types.WarrantySlip) ([]*types.WarrantySlip, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	if len(slips) == 0 {
		return []*types.WarrantySlip{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&slips).Error; err != nil {
		return nil, err
	}
	return slips, nil
}

func (wr *warrantySlipRepo) GetByIDs(ctx context.Context, tx *gorm.DB, slipIDs []uuid.UUID) ([]*types.WarrantySlip, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var results []*types.WarrantySlip
	if len(slipIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", slipIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (wr *warrantySlipRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.WarrantySlip, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var results []*types.WarrantySlip
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (wr *warrantySlipRepo) ListUserIDsWithSlips(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.WarrantySlip{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (wr *warrantySlipRepo) UpdateReminder(ctx context.Context, tx *gorm.DB, slipID uuid.UUID, reminderSet bool) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.WarrantySlip{}).
		Where("id = ?", slipID).
		Update("reminder_set", reminderSet).Error
}

func (wr *warrantySlipRepo) UpdateOwner(ctx context.Context, tx *gorm.DB, slipID, newUserID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.WarrantySlip{}).
		Where("id = ?", slipID).
		Update("user_id", newUserID).Error
}

func (wr *warrantySlipRepo) UpdateEndDate(ctx context.Context, tx *gorm.DB, slipID uuid.UUID, newEnd time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.WarrantySlip{}).
		Where("id = ?", slipID).
		Update("warranty_end_date", newEnd).Error
}

func (wr *warrantySlipRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, slipIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	if len(slipIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", slipIDs).
		Delete(&types.WarrantySlip{}).Error
}
