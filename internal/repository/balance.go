package repository

import (
	"context"
	"math/big"

	"github.com/google/uuid"
	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BalanceRepository interface {
	Get(ctx context.Context, playerID string, tokenID entity.TokenID) (*entity.PlayerBalance, error)
	GetByPlayer(ctx context.Context, playerID string) ([]entity.PlayerBalance, error)
	CreditAccumulated(ctx context.Context, playerID string, tokenID entity.TokenID, amount *big.Int) error
	MoveAccumulatedToClaimed(ctx context.Context, playerID string, tokenID entity.TokenID, amount *big.Int) error
}

type balanceRepository struct{}

func NewBalanceRepository() *balanceRepository {
	return &balanceRepository{}
}

func (r *balanceRepository) Get(
	ctx context.Context, playerID string, tokenID entity.TokenID,
) (*entity.PlayerBalance, error) {
	var result entity.PlayerBalance
	err := xcontext.DB(ctx).
		Take(&result, "player_id=? AND token_id=?", playerID, tokenID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *balanceRepository) GetByPlayer(ctx context.Context, playerID string) ([]entity.PlayerBalance, error) {
	var result []entity.PlayerBalance
	if err := xcontext.DB(ctx).Find(&result, "player_id=?", playerID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CreditAccumulated adds amount to the accumulated balance, creating the row
// on first win. Balances are decimal strings, so the arithmetic happens here
// and the update is guarded by the previously read value to detect races.
func (r *balanceRepository) CreditAccumulated(
	ctx context.Context, playerID string, tokenID entity.TokenID, amount *big.Int,
) error {
	balance, err := r.Get(ctx, playerID, tokenID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}

		return xcontext.DB(ctx).Create(&entity.PlayerBalance{
			Base:        entity.Base{ID: uuid.NewString()},
			PlayerID:    playerID,
			TokenID:     tokenID,
			Accumulated: amount.String(),
			Claimed:     "0",
		}).Error
	}

	current, ok := new(big.Int).SetString(balance.Accumulated, 10)
	if !ok {
		return gorm.ErrInvalidData
	}

	tx := xcontext.DB(ctx).Model(&entity.PlayerBalance{}).
		Where("id=? AND accumulated=?", balance.ID, balance.Accumulated).
		Update("accumulated", new(big.Int).Add(current, amount).String())
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MoveAccumulatedToClaimed shifts amount from accumulated to claimed after a
// successful transfer or an issued claim signature. It returns
// gorm.ErrRecordNotFound if the accumulated balance changed underneath or is
// too small.
func (r *balanceRepository) MoveAccumulatedToClaimed(
	ctx context.Context, playerID string, tokenID entity.TokenID, amount *big.Int,
) error {
	balance, err := r.Get(ctx, playerID, tokenID)
	if err != nil {
		return err
	}

	accumulated, ok := new(big.Int).SetString(balance.Accumulated, 10)
	if !ok {
		return gorm.ErrInvalidData
	}

	claimed, ok := new(big.Int).SetString(balance.Claimed, 10)
	if !ok {
		return gorm.ErrInvalidData
	}

	if accumulated.Cmp(amount) < 0 {
		return gorm.ErrRecordNotFound
	}

	tx := xcontext.DB(ctx).Model(&entity.PlayerBalance{}).
		Where("id=? AND accumulated=?", balance.ID, balance.Accumulated).
		Updates(map[string]any{
			"accumulated": new(big.Int).Sub(accumulated, amount).String(),
			"claimed":     new(big.Int).Add(claimed, amount).String(),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
