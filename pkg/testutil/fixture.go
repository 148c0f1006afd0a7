package testutil

import (
	"context"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/xcontext"
)

var (
	Player1 = &entity.Player{
		Base:          entity.Base{ID: "player1"},
		WalletAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}

	Player2 = &entity.Player{
		Base:          entity.Base{ID: "player2"},
		WalletAddress: "0x2546BcD3c84621e976D8185a91A922aE77ECEc30",
	}

	Token1 = &entity.RewardToken{
		Base:     entity.Base{ID: "reward-token-1"},
		TokenID:  entity.Token1,
		Address:  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Symbol:   "SPN1",
		Decimals: 18,
		Active:   true,
	}

	Token2 = &entity.RewardToken{
		Base:     entity.Base{ID: "reward-token-2"},
		TokenID:  entity.Token2,
		Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Symbol:   "SPN2",
		Decimals: 18,
		Active:   true,
	}

	Token3 = &entity.RewardToken{
		Base:     entity.Base{ID: "reward-token-3"},
		TokenID:  entity.Token3,
		Address:  "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Symbol:   "SPN3",
		Decimals: 18,
		Active:   true,
	}
)

func CreateFixtureDb(ctx context.Context) {
	InsertPlayers(ctx)
	InsertRewardTokens(ctx)
}

// Fixtures insert through the database handle directly, so this package can
// serve the repository tests without importing them back.
func InsertPlayers(ctx context.Context) {
	for _, player := range []*entity.Player{Player1, Player2} {
		if err := xcontext.DB(ctx).Create(player).Error; err != nil {
			panic(err)
		}
	}
}

func InsertRewardTokens(ctx context.Context) {
	for _, token := range []*entity.RewardToken{Token1, Token2, Token3} {
		if err := xcontext.DB(ctx).Create(token).Error; err != nil {
			panic(err)
		}
	}
}
