package main

import (
	"github.com/google/uuid"
	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/internal/repository"
	"github.com/spinvault/backend/migration"
	"github.com/spinvault/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(ct *cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()

	ctx := xcontext.WithConfigs(ct.Context, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	ctx = xcontext.WithDB(ctx, s.db)

	if err := migration.AutoMigrate(ctx); err != nil {
		return err
	}

	tokenRepo := repository.NewTokenRepository()
	seeds := []entity.RewardToken{
		{
			TokenID:  entity.Token1,
			Address:  getEnv("TOKEN1_ADDRESS", ""),
			Symbol:   getEnv("TOKEN1_SYMBOL", "SPN1"),
			Decimals: getInt("TOKEN1_DECIMALS", 18),
			Active:   getEnv("TOKEN1_ADDRESS", "") != "",
		},
		{
			TokenID:  entity.Token2,
			Address:  getEnv("TOKEN2_ADDRESS", ""),
			Symbol:   getEnv("TOKEN2_SYMBOL", "SPN2"),
			Decimals: getInt("TOKEN2_DECIMALS", 18),
			Active:   getEnv("TOKEN2_ADDRESS", "") != "",
		},
		{
			TokenID:  entity.Token3,
			Address:  getEnv("TOKEN3_ADDRESS", ""),
			Symbol:   getEnv("TOKEN3_SYMBOL", "SPN3"),
			Decimals: getInt("TOKEN3_DECIMALS", 18),
			Active:   getEnv("TOKEN3_ADDRESS", "") != "",
		},
	}

	for i := range seeds {
		seeds[i].Base = entity.Base{ID: uuid.NewString()}
		if err := tokenRepo.Upsert(ctx, &seeds[i]); err != nil {
			return err
		}
	}

	s.logger.Infof("Migration completed")
	return nil
}
