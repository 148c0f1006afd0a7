package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/internal/model"
	"github.com/spinvault/backend/internal/repository"
	"github.com/spinvault/backend/pkg/authenticator"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/ethutil"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type authDomain struct {
	playerRepo  repository.PlayerRepository
	tokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthDomain(
	playerRepo repository.PlayerRepository,
	tokenEngine authenticator.TokenEngine[model.AccessToken],
) *authDomain {
	return &authDomain{
		playerRepo:  playerRepo,
		tokenEngine: tokenEngine,
	}
}

// Login registers the wallet on first sight and hands out an access token.
func (d *authDomain) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	wallet, err := ethutil.ValidateAddress(req.WalletAddress)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	player, err := d.playerRepo.GetByWalletAddress(ctx, wallet.Hex())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get player: %v", err)
			return nil, errorx.Unknown
		}

		player = &entity.Player{
			Base:          entity.Base{ID: uuid.NewString()},
			WalletAddress: wallet.Hex(),
		}

		if err := d.playerRepo.Create(ctx, player); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create player: %v", err)
			return nil, errorx.Unknown
		}
	}

	token, err := d.tokenEngine.Generate(player.ID, model.AccessToken{
		ID:      player.ID,
		Address: player.WalletAddress,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LoginResponse{
		PlayerID:    player.ID,
		AccessToken: token,
	}, nil
}
