package migration

import (
	"context"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/xcontext"
)

func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Player{},
		&entity.RewardToken{},
		&entity.PlayerBalance{},
		&entity.SpinRecord{},
		&entity.IssuedClaim{},
	)
}
