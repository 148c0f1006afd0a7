package testutil

import (
	"context"
	"time"

	"github.com/spinvault/backend/config"
	"github.com/spinvault/backend/migration"
	"github.com/spinvault/backend/pkg/logger"
	"github.com/spinvault/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Throwaway keys for tests only.
const (
	ClaimSignerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	OperatorKey    = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Blockchain: config.BlockchainConfigs{
			ChainID:             1337,
			VaultAddress:        "0x000000000000000000000000000000000000dEaD",
			ClaimSignerKey:      ClaimSignerKey,
			OperatorKey:         OperatorKey,
			ClaimDeadline:       24 * time.Hour,
			TransferGasLimit:    150000,
			RPCTimeout:          time.Second,
			ReceiptPollInterval: time.Millisecond,
			ReceiptTimeout:      time.Second,
		},
		Spin: config.SpinConfigs{
			DailyCap:            3,
			AmountMin:           20,
			AmountMax:           50,
			MinClaimable:        100,
			BeginnerLuckEnabled: true,
			BeginnerSpins:       3,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
