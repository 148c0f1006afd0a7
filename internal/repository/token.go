package repository

import (
	"context"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type TokenRepository interface {
	Upsert(ctx context.Context, token *entity.RewardToken) error
	GetByID(ctx context.Context, tokenID entity.TokenID) (*entity.RewardToken, error)
	GetAllActive(ctx context.Context) ([]entity.RewardToken, error)
}

type tokenRepository struct{}

func NewTokenRepository() *tokenRepository {
	return &tokenRepository{}
}

func (r *tokenRepository) Upsert(ctx context.Context, token *entity.RewardToken) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address", "symbol", "decimals", "active",
		}),
	}).Create(token).Error
}

func (r *tokenRepository) GetByID(ctx context.Context, tokenID entity.TokenID) (*entity.RewardToken, error) {
	var result entity.RewardToken
	if err := xcontext.DB(ctx).Take(&result, "token_id=?", tokenID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *tokenRepository) GetAllActive(ctx context.Context) ([]entity.RewardToken, error) {
	var result []entity.RewardToken
	if err := xcontext.DB(ctx).Find(&result, "active=?", true).Error; err != nil {
		return nil, err
	}

	return result, nil
}
