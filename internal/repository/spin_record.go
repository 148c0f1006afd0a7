package repository

import (
	"context"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SpinRecordRepository interface {
	Create(ctx context.Context, record *entity.SpinRecord) error
	GetByID(ctx context.Context, id string) (*entity.SpinRecord, error)
	GetByPlayer(ctx context.Context, playerID string, offset, limit int) ([]entity.SpinRecord, error)
	MarkTransferAttempted(ctx context.Context, id string) error
	SetTxHash(ctx context.Context, id, txHash string) error
}

type spinRecordRepository struct{}

func NewSpinRecordRepository() *spinRecordRepository {
	return &spinRecordRepository{}
}

func (r *spinRecordRepository) Create(ctx context.Context, record *entity.SpinRecord) error {
	return xcontext.DB(ctx).Create(record).Error
}

func (r *spinRecordRepository) GetByID(ctx context.Context, id string) (*entity.SpinRecord, error) {
	var result entity.SpinRecord
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *spinRecordRepository) GetByPlayer(
	ctx context.Context, playerID string, offset, limit int,
) ([]entity.SpinRecord, error) {
	var result []entity.SpinRecord
	err := xcontext.DB(ctx).
		Where("player_id=?", playerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MarkTransferAttempted flips the transfer flag exactly once. It returns
// gorm.ErrRecordNotFound if a previous attempt already claimed this record.
func (r *spinRecordRepository) MarkTransferAttempted(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Model(&entity.SpinRecord{}).
		Where("id=? AND transfer_attempted=?", id, false).
		Update("transfer_attempted", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *spinRecordRepository) SetTxHash(ctx context.Context, id, txHash string) error {
	return xcontext.DB(ctx).Model(&entity.SpinRecord{}).
		Where("id=?", id).
		Update("tx_hash", txHash).Error
}
