package repository

import (
	"context"
	"time"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/dateutil"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	GetByWalletAddress(ctx context.Context, address string) (*entity.Player, error)
	ResetDailySpinsIfNewDay(ctx context.Context, id string, now time.Time) error
	IncrementSpinWithinCap(ctx context.Context, id string, cap int, now time.Time) error
	IncreaseTotalWins(ctx context.Context, id string) error
}

type playerRepository struct{}

func NewPlayerRepository() *playerRepository {
	return &playerRepository{}
}

func (r *playerRepository) Create(ctx context.Context, player *entity.Player) error {
	return xcontext.DB(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	var result entity.Player
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *playerRepository) GetByWalletAddress(ctx context.Context, address string) (*entity.Player, error) {
	var result entity.Player
	if err := xcontext.DB(ctx).Take(&result, "wallet_address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// ResetDailySpinsIfNewDay zeroes the daily counter if the player last spun
// before the current UTC day. Concurrent calls are safe, the condition makes
// the update a no-op after the first one wins.
func (r *playerRepository) ResetDailySpinsIfNewDay(ctx context.Context, id string, now time.Time) error {
	return xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=? AND last_spin_at < ?", id, dateutil.BeginningOfUTCDay(now)).
		Update("spins_used_today", 0).Error
}

// IncrementSpinWithinCap consumes one spin from today's quota. It returns
// gorm.ErrRecordNotFound if the quota is already exhausted.
func (r *playerRepository) IncrementSpinWithinCap(ctx context.Context, id string, cap int, now time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=? AND spins_used_today < ?", id, cap).
		Updates(map[string]any{
			"spins_used_today": gorm.Expr("spins_used_today+?", 1),
			"total_spins":      gorm.Expr("total_spins+?", 1),
			"last_spin_at":     now,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *playerRepository) IncreaseTotalWins(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=?", id).
		Update("total_wins", gorm.Expr("total_wins+?", 1)).Error
}
