package domain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/spinvault/backend/internal/client"
	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/internal/model"
	"github.com/spinvault/backend/internal/repository"
	"github.com/spinvault/backend/pkg/enum"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/ethutil"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// nonceRaceRetries bounds how often a batch restarts after the on-chain
// nonce moved between fetching and signing.
const nonceRaceRetries = 3

type ClaimDomain interface {
	Signature(ctx context.Context, req *model.ClaimSignatureRequest) (*model.ClaimSignatureResponse, error)
	BatchSignature(ctx context.Context, req *model.BatchClaimSignatureRequest) (*model.BatchClaimSignatureResponse, error)
	Reissue(ctx context.Context, req *model.ReissueClaimRequest) (*model.ClaimSignatureResponse, error)
}

type claimDomain struct {
	playerRepo  repository.PlayerRepository
	balanceRepo repository.BalanceRepository
	tokenRepo   repository.TokenRepository
	claimRepo   repository.ClaimRepository

	vault client.VaultCaller

	// signerKey is loaded once at startup. Nil disables claim signing.
	signerKey *ecdsa.PrivateKey
}

func NewClaimDomain(
	playerRepo repository.PlayerRepository,
	balanceRepo repository.BalanceRepository,
	tokenRepo repository.TokenRepository,
	claimRepo repository.ClaimRepository,
	vault client.VaultCaller,
	signerKey *ecdsa.PrivateKey,
) *claimDomain {
	return &claimDomain{
		playerRepo:  playerRepo,
		balanceRepo: balanceRepo,
		tokenRepo:   tokenRepo,
		claimRepo:   claimRepo,
		vault:       vault,
		signerKey:   signerKey,
	}
}

// validatedClaim is one claim entry after all checks passed, before it gets
// a nonce and a signature.
type validatedClaim struct {
	token  *entity.RewardToken
	amount *big.Int
}

func (d *claimDomain) Signature(
	ctx context.Context, req *model.ClaimSignatureRequest,
) (*model.ClaimSignatureResponse, error) {
	player, wallet, err := d.requirePlayer(ctx)
	if err != nil {
		return nil, err
	}

	validated, err := d.validate(ctx, player.ID, []model.ClaimSignatureRequest{*req})
	if err != nil {
		return nil, err
	}

	if d.signerKey == nil {
		return nil, errorx.New(errorx.SignerUnavailable, "Claim signing is disabled")
	}

	lastNonce, err := d.baseNonce(ctx, wallet, time.Now())
	if err != nil {
		return nil, err
	}

	claims, err := d.issue(ctx, player, wallet, lastNonce, validated)
	if err != nil {
		return nil, err
	}

	return &model.ClaimSignatureResponse{
		Claim:           claims[0],
		ContractAddress: xcontext.Configs(ctx).Blockchain.VaultAddress,
	}, nil
}

func (d *claimDomain) BatchSignature(
	ctx context.Context, req *model.BatchClaimSignatureRequest,
) (*model.BatchClaimSignatureResponse, error) {
	if len(req.Claims) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Empty claim list")
	}

	player, wallet, err := d.requirePlayer(ctx)
	if err != nil {
		return nil, err
	}

	validated, err := d.validate(ctx, player.ID, req.Claims)
	if err != nil {
		return nil, err
	}

	if d.signerKey == nil {
		return nil, errorx.New(errorx.SignerUnavailable, "Claim signing is disabled")
	}

	// The whole batch restarts if the on-chain nonce moves while we sign,
	// otherwise the issued sequence would have a hole the vault rejects.
	for attempt := 0; attempt < nonceRaceRetries; attempt++ {
		chainNonce, err := d.chainNonce(ctx, wallet)
		if err != nil {
			return nil, err
		}

		recheck, err := d.chainNonce(ctx, wallet)
		if err != nil {
			return nil, err
		}

		if recheck != chainNonce {
			xcontext.Logger(ctx).Warnf("Claim nonce of %s moved from %d to %d, restarting batch",
				wallet, chainNonce, recheck)
			continue
		}

		lastNonce, err := d.issuedOrChainNonce(ctx, wallet, chainNonce, time.Now())
		if err != nil {
			return nil, err
		}

		claims, err := d.issue(ctx, player, wallet, lastNonce, validated)
		if err != nil {
			return nil, err
		}

		return &model.BatchClaimSignatureResponse{
			Claims:          claims,
			ContractAddress: xcontext.Configs(ctx).Blockchain.VaultAddress,
		}, nil
	}

	return nil, errorx.New(errorx.NonceRace, "Claim nonce keeps changing, try again later")
}

// Reissue replaces an expired, unconsumed claim signature with a fresh nonce
// and deadline. The balance already moved to claimed at first issuance, so
// no funds move here.
func (d *claimDomain) Reissue(
	ctx context.Context, req *model.ReissueClaimRequest,
) (*model.ClaimSignatureResponse, error) {
	_, wallet, err := d.requirePlayer(ctx)
	if err != nil {
		return nil, err
	}

	claim, err := d.claimRepo.GetByID(ctx, req.ClaimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found claim")
		}

		xcontext.Logger(ctx).Errorf("Cannot get issued claim: %v", err)
		return nil, errorx.Unknown
	}

	if claim.WalletAddress != wallet.Hex() {
		return nil, errorx.New(errorx.PermissionDenied, "Claim belongs to another wallet")
	}

	now := time.Now()
	if claim.Deadline >= now.Unix() {
		return nil, errorx.New(errorx.BadRequest, "Claim has not expired yet")
	}

	if d.signerKey == nil {
		return nil, errorx.New(errorx.SignerUnavailable, "Claim signing is disabled")
	}

	chainNonce, err := d.chainNonce(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if claim.Nonce <= chainNonce {
		return nil, errorx.New(errorx.BadRequest, "Claim was already consumed")
	}

	token, err := d.tokenRepo.GetByID(ctx, claim.TokenID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get token of claim %s: %v", claim.ID, err)
		return nil, errorx.Unknown
	}

	amount, ok := new(big.Int).SetString(claim.Amount, 10)
	if !ok {
		xcontext.Logger(ctx).Errorf("Corrupted amount on claim %s", claim.ID)
		return nil, errorx.Unknown
	}

	lastNonce, err := d.issuedOrChainNonce(ctx, wallet, chainNonce, now)
	if err != nil {
		return nil, err
	}

	nonce := lastNonce + 1
	deadline := now.Add(xcontext.Configs(ctx).Blockchain.ClaimDeadline).Unix()

	signature, err := client.SignClaim(d.signerKey, client.ClaimParams{
		User:     wallet,
		Token:    common.HexToAddress(token.Address),
		Amount:   amount,
		Nonce:    nonce,
		Deadline: deadline,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sign claim: %v", err)
		return nil, errorx.Unknown
	}

	hexSignature := hexutil.Encode(signature)
	if err := d.claimRepo.Regenerate(ctx, claim.ID, nonce, deadline, hexSignature); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot regenerate claim %s: %v", claim.ID, err)
		return nil, errorx.Unknown
	}

	return &model.ClaimSignatureResponse{
		Claim: model.Claim{
			ID:        claim.ID,
			User:      wallet.Hex(),
			TokenID:   string(token.TokenID),
			Token:     token.Address,
			Amount:    amount.String(),
			Nonce:     nonce,
			Deadline:  deadline,
			Signature: hexSignature,
		},
		ContractAddress: xcontext.Configs(ctx).Blockchain.VaultAddress,
	}, nil
}

func (d *claimDomain) requirePlayer(ctx context.Context) (*entity.Player, common.Address, error) {
	playerID := xcontext.RequestUserID(ctx)
	if playerID == "" {
		return nil, common.Address{}, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	player, err := d.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.Address{}, errorx.New(errorx.NotFound, "Not found player")
		}

		xcontext.Logger(ctx).Errorf("Cannot get player: %v", err)
		return nil, common.Address{}, errorx.Unknown
	}

	wallet, err := ethutil.ValidateAddress(player.WalletAddress)
	if err != nil {
		return nil, common.Address{}, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	return player, wallet, nil
}

func (d *claimDomain) chainNonce(ctx context.Context, wallet common.Address) (uint64, error) {
	nonce, err := d.vault.ClaimNonce(ctx, wallet)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claim nonce: %v", err)
		return 0, errorx.New(errorx.Unavailable, "Cannot reach the vault contract")
	}

	return nonce, nil
}

// baseNonce returns the last nonce the next claim must follow: the on-chain
// value or the highest unexpired issued one, whichever is greater. The chain
// only advances when the client redeems, so issuance has to track its own
// outstanding signatures or it would hand the same nonce out twice.
func (d *claimDomain) baseNonce(
	ctx context.Context, wallet common.Address, now time.Time,
) (uint64, error) {
	chainNonce, err := d.chainNonce(ctx, wallet)
	if err != nil {
		return 0, err
	}

	return d.issuedOrChainNonce(ctx, wallet, chainNonce, now)
}

func (d *claimDomain) issuedOrChainNonce(
	ctx context.Context, wallet common.Address, chainNonce uint64, now time.Time,
) (uint64, error) {
	issuedNonce, err := d.claimRepo.MaxUnexpiredNonce(ctx, wallet.Hex(), now.Unix())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get issued claim nonce: %v", err)
		return 0, errorx.Unknown
	}

	if issuedNonce > chainNonce {
		return issuedNonce, nil
	}

	return chainNonce, nil
}

// validate checks every entry before anything is signed. A batch either
// passes completely or is rejected completely.
func (d *claimDomain) validate(
	ctx context.Context, playerID string, reqs []model.ClaimSignatureRequest,
) ([]validatedClaim, error) {
	cfg := xcontext.Configs(ctx).Spin

	validated := make([]validatedClaim, 0, len(reqs))
	totals := map[entity.TokenID]*big.Int{}

	for _, req := range reqs {
		tokenID, err := enum.ToEnum[entity.TokenID](req.TokenID)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid token id %s", req.TokenID)
		}

		token, err := d.tokenRepo.GetByID(ctx, tokenID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found token %s", req.TokenID)
			}

			xcontext.Logger(ctx).Errorf("Cannot get token: %v", err)
			return nil, errorx.Unknown
		}

		if !token.Active {
			return nil, errorx.New(errorx.BadRequest, "Token %s is not claimable", req.TokenID)
		}

		amount, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok || amount.Sign() <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid amount")
		}

		minClaimable := new(big.Int).Mul(
			new(big.Int).SetUint64(cfg.MinClaimable),
			new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(token.Decimals)), nil),
		)
		if amount.Cmp(minClaimable) < 0 {
			return nil, errorx.New(errorx.AmountTooSmall,
				"Claim at least %d %s", cfg.MinClaimable, token.Symbol)
		}

		if _, ok := totals[tokenID]; !ok {
			totals[tokenID] = new(big.Int)
		}
		totals[tokenID].Add(totals[tokenID], amount)

		validated = append(validated, validatedClaim{token: token, amount: amount})
	}

	for tokenID, total := range totals {
		balance, err := d.balanceRepo.Get(ctx, playerID, tokenID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.InsufficientBalance, "Nothing to claim for %s", tokenID)
			}

			xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
			return nil, errorx.Unknown
		}

		accumulated, ok := new(big.Int).SetString(balance.Accumulated, 10)
		if !ok {
			xcontext.Logger(ctx).Errorf("Corrupted balance %s of player %s", balance.ID, playerID)
			return nil, errorx.Unknown
		}

		if accumulated.Cmp(total) < 0 {
			return nil, errorx.New(errorx.InsufficientBalance,
				"Claim of %s exceeds accumulated balance", tokenID)
		}
	}

	return validated, nil
}

// issue signs the validated claims with consecutive nonces starting right
// after lastNonce, then settles balances and audit rows in one transaction.
func (d *claimDomain) issue(
	ctx context.Context,
	player *entity.Player,
	wallet common.Address,
	lastNonce uint64,
	validated []validatedClaim,
) ([]model.Claim, error) {
	deadline := time.Now().Add(xcontext.Configs(ctx).Blockchain.ClaimDeadline).Unix()

	claims := make([]model.Claim, 0, len(validated))
	entities := make([]*entity.IssuedClaim, 0, len(validated))

	for i, vc := range validated {
		params := client.ClaimParams{
			User:     wallet,
			Token:    common.HexToAddress(vc.token.Address),
			Amount:   vc.amount,
			Nonce:    lastNonce + uint64(i) + 1,
			Deadline: deadline,
		}

		signature, err := client.SignClaim(d.signerKey, params)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot sign claim: %v", err)
			return nil, errorx.Unknown
		}

		id := uuid.NewString()
		claims = append(claims, model.Claim{
			ID:        id,
			User:      wallet.Hex(),
			TokenID:   string(vc.token.TokenID),
			Token:     vc.token.Address,
			Amount:    vc.amount.String(),
			Nonce:     params.Nonce,
			Deadline:  deadline,
			Signature: hexutil.Encode(signature),
		})

		entities = append(entities, &entity.IssuedClaim{
			Base:          entity.Base{ID: id},
			WalletAddress: wallet.Hex(),
			TokenID:       vc.token.TokenID,
			Amount:        vc.amount.String(),
			Nonce:         params.Nonce,
			Deadline:      deadline,
			Signature:     hexutil.Encode(signature),
		})
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	for i, vc := range validated {
		err := d.balanceRepo.MoveAccumulatedToClaimed(ctx, player.ID, vc.token.TokenID, vc.amount)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.InsufficientBalance,
					"Claim of %s exceeds accumulated balance", vc.token.TokenID)
			}

			xcontext.Logger(ctx).Errorf("Cannot settle claimed balance: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.claimRepo.Create(ctx, entities[i]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create issued claim: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return claims, nil
}
