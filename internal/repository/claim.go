package repository

import (
	"context"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/xcontext"
)

type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.IssuedClaim) error
	GetByID(ctx context.Context, id string) (*entity.IssuedClaim, error)
	GetByWalletAddress(ctx context.Context, address string) ([]entity.IssuedClaim, error)
	MaxUnexpiredNonce(ctx context.Context, address string, now int64) (uint64, error)
	Regenerate(ctx context.Context, id string, nonce uint64, deadline int64, signature string) error
}

type claimRepository struct{}

func NewClaimRepository() *claimRepository {
	return &claimRepository{}
}

func (r *claimRepository) Create(ctx context.Context, claim *entity.IssuedClaim) error {
	return xcontext.DB(ctx).Create(claim).Error
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*entity.IssuedClaim, error) {
	var result entity.IssuedClaim
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *claimRepository) GetByWalletAddress(ctx context.Context, address string) ([]entity.IssuedClaim, error) {
	var result []entity.IssuedClaim
	err := xcontext.DB(ctx).
		Where("wallet_address=?", address).
		Order("nonce ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MaxUnexpiredNonce returns the highest nonce among signatures whose
// deadline has not passed, or zero when none are outstanding. Expired
// claims drop out so their nonces become assignable again.
func (r *claimRepository) MaxUnexpiredNonce(
	ctx context.Context, address string, now int64,
) (uint64, error) {
	var nonce uint64
	err := xcontext.DB(ctx).Model(&entity.IssuedClaim{}).
		Select("COALESCE(MAX(nonce), 0)").
		Where("wallet_address=? AND deadline>=?", address, now).
		Scan(&nonce).Error
	if err != nil {
		return 0, err
	}

	return nonce, nil
}

// Regenerate replaces the nonce, deadline and signature of an expired claim
// in place, keeping the audit row id stable across reissues.
func (r *claimRepository) Regenerate(
	ctx context.Context, id string, nonce uint64, deadline int64, signature string,
) error {
	return xcontext.DB(ctx).Model(&entity.IssuedClaim{}).
		Where("id=?", id).
		Updates(map[string]any{
			"nonce":     nonce,
			"deadline":  deadline,
			"signature": signature,
		}).Error
}
