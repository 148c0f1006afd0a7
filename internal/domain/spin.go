package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/spinvault/backend/internal/client"
	"github.com/spinvault/backend/internal/domain/spinengine"
	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/internal/model"
	"github.com/spinvault/backend/internal/repository"
	"github.com/spinvault/backend/pkg/dateutil"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/ethutil"
	"github.com/spinvault/backend/pkg/pubsub"
	"github.com/spinvault/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SpinDomain interface {
	Spin(ctx context.Context, req *model.SpinRequest) (*model.SpinResponse, error)
	GetPlayer(ctx context.Context, req *model.GetPlayerRequest) (*model.GetPlayerResponse, error)
	GetSpinHistory(ctx context.Context, req *model.GetSpinHistoryRequest) (*model.GetSpinHistoryResponse, error)
	GetTokens(ctx context.Context, req *model.GetTokensRequest) (*model.GetTokensResponse, error)
}

type spinDomain struct {
	playerRepo     repository.PlayerRepository
	balanceRepo    repository.BalanceRepository
	spinRecordRepo repository.SpinRecordRepository
	tokenRepo      repository.TokenRepository

	engine     *spinengine.Engine
	transferer client.Transferer
	publisher  pubsub.Publisher

	// spinLocks serializes spins per player. The daily quota is enforced by
	// a conditional update anyway, the lock only keeps the spin-credit-pay
	// sequence of one player from interleaving with itself.
	spinLocks *xsync.MapOf[string, *sync.Mutex]
}

func NewSpinDomain(
	playerRepo repository.PlayerRepository,
	balanceRepo repository.BalanceRepository,
	spinRecordRepo repository.SpinRecordRepository,
	tokenRepo repository.TokenRepository,
	engine *spinengine.Engine,
	transferer client.Transferer,
	publisher pubsub.Publisher,
) *spinDomain {
	return &spinDomain{
		playerRepo:     playerRepo,
		balanceRepo:    balanceRepo,
		spinRecordRepo: spinRecordRepo,
		tokenRepo:      tokenRepo,
		engine:         engine,
		transferer:     transferer,
		publisher:      publisher,
		spinLocks:      xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *spinDomain) Spin(ctx context.Context, req *model.SpinRequest) (*model.SpinResponse, error) {
	playerID := xcontext.RequestUserID(ctx)
	if playerID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	lock, _ := d.spinLocks.LoadOrStore(playerID, &sync.Mutex{})
	lock.Lock()
	defer lock.Unlock()

	// Loaded under the lock, so the lifetime spin count cannot be stale
	// when it selects the wheel table below.
	player, err := d.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found player")
		}

		xcontext.Logger(ctx).Errorf("Cannot get player: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	if err := d.playerRepo.ResetDailySpinsIfNewDay(ctx, player.ID, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset daily spins: %v", err)
		return nil, errorx.Unknown
	}

	cap := xcontext.Configs(ctx).Spin.DailyCap
	record, outcome, err := d.executeSpin(ctx, player, cap, now)
	if err != nil {
		return nil, err
	}

	fresh, err := d.playerRepo.GetByID(ctx, player.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload player after spin: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.SpinResponse{
		Segment:        string(outcome.Segment),
		IsWin:          outcome.IsWin,
		SpinsRemaining: cap - fresh.SpinsUsedToday,
	}

	if outcome.IsWin {
		resp.TokenID = string(outcome.TokenID)
		resp.Amount = outcome.Amount.String()
		resp.TxHash = d.autoTransfer(ctx, fresh, record, outcome)
	}

	d.publishRewardEvent(ctx, fresh, record, resp.TxHash)
	return resp, nil
}

// executeSpin consumes quota, rolls the wheel and records the result in a
// single transaction. The spin counts against the quota no matter what
// happens to the payout afterwards.
func (d *spinDomain) executeSpin(
	ctx context.Context, player *entity.Player, cap int, now time.Time,
) (*entity.SpinRecord, spinengine.Outcome, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.playerRepo.IncrementSpinWithinCap(ctx, player.ID, cap, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, spinengine.Outcome{}, errorx.New(errorx.QuotaExceeded,
				"You have used all %d spins for today", cap)
		}

		xcontext.Logger(ctx).Errorf("Cannot use spin quota: %v", err)
		return nil, spinengine.Outcome{}, errorx.Unknown
	}

	outcome := d.engine.Spin(spinengine.PlayerState{LifetimeSpins: player.TotalSpins})

	record := &entity.SpinRecord{
		Base:     entity.Base{ID: uuid.NewString()},
		PlayerID: player.ID,
		Segment:  outcome.Segment,
		IsWin:    outcome.IsWin,
	}

	if outcome.IsWin {
		record.TokenID = outcome.TokenID
		record.Amount = outcome.Amount.String()
	}

	if err := d.spinRecordRepo.Create(ctx, record); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create spin record: %v", err)
		return nil, spinengine.Outcome{}, errorx.Unknown
	}

	if outcome.IsWin {
		err := d.balanceRepo.CreditAccumulated(ctx, player.ID, outcome.TokenID, outcome.Amount)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot credit balance: %v", err)
			return nil, spinengine.Outcome{}, errorx.Unknown
		}

		if err := d.playerRepo.IncreaseTotalWins(ctx, player.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase total wins: %v", err)
			return nil, spinengine.Outcome{}, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return record, outcome, nil
}

// autoTransfer pays the reward out immediately. Failures never bubble up,
// the won amount stays accumulated and remains claimable by signature.
func (d *spinDomain) autoTransfer(
	ctx context.Context, player *entity.Player, record *entity.SpinRecord, outcome spinengine.Outcome,
) string {
	wallet, err := ethutil.ValidateAddress(player.WalletAddress)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Skip auto transfer to invalid address %s: %v",
			player.WalletAddress, err)
		return ""
	}

	token, err := d.tokenRepo.GetByID(ctx, outcome.TokenID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reward token %s: %v", outcome.TokenID, err)
		return ""
	}

	if !token.Active {
		xcontext.Logger(ctx).Warnf("Skip auto transfer of inactive token %s", token.TokenID)
		return ""
	}

	// Claim the record for this attempt before submitting anything, so a
	// duplicated request cannot pay out twice.
	if err := d.spinRecordRepo.MarkTransferAttempted(ctx, record.ID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot mark transfer attempted: %v", err)
		}
		return ""
	}

	txHash, err := d.transferer.Transfer(ctx, wallet, common.HexToAddress(token.Address), outcome.Amount)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Auto transfer failed, reward stays claimable: %v", err)
		return ""
	}

	if err := d.settleTransfer(ctx, player.ID, record.ID, outcome, txHash); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot settle transfer %s: %v", txHash, err)
		return ""
	}

	return txHash
}

func (d *spinDomain) settleTransfer(
	ctx context.Context, playerID, recordID string, outcome spinengine.Outcome, txHash string,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.balanceRepo.MoveAccumulatedToClaimed(ctx, playerID, outcome.TokenID, outcome.Amount)
	if err != nil {
		return err
	}

	if err := d.spinRecordRepo.SetTxHash(ctx, recordID, txHash); err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (d *spinDomain) publishRewardEvent(
	ctx context.Context, player *entity.Player, record *entity.SpinRecord, txHash string,
) {
	if d.publisher == nil {
		return
	}

	event := model.RewardEvent{
		PlayerID:      player.ID,
		WalletAddress: player.WalletAddress,
		Segment:       string(record.Segment),
		TokenID:       string(record.TokenID),
		Amount:        record.Amount,
		TxHash:        txHash,
		CreatedAt:     time.Now(),
	}

	msg, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal reward event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.RewardEventTopic
	if err := d.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(player.ID), Msg: msg}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish reward event: %v", err)
	}
}

func (d *spinDomain) GetPlayer(
	ctx context.Context, req *model.GetPlayerRequest,
) (*model.GetPlayerResponse, error) {
	playerID := req.PlayerID
	if playerID == "" {
		playerID = xcontext.RequestUserID(ctx)
	}

	if playerID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	player, err := d.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found player")
		}

		xcontext.Logger(ctx).Errorf("Cannot get player: %v", err)
		return nil, errorx.Unknown
	}

	balances, err := d.balanceRepo.GetByPlayer(ctx, player.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balances: %v", err)
		return nil, errorx.Unknown
	}

	modelBalances := make([]model.Balance, 0, len(balances))
	for i := range balances {
		token, err := d.tokenRepo.GetByID(ctx, balances[i].TokenID)
		if err != nil {
			token = nil
		}

		modelBalances = append(modelBalances, model.ConvertBalance(&balances[i], token))
	}

	cap := xcontext.Configs(ctx).Spin.DailyCap
	remaining := cap
	if dateutil.IsSameUTCDay(player.LastSpinAt, time.Now()) {
		remaining = cap - player.SpinsUsedToday
	}

	return &model.GetPlayerResponse{
		Player: model.ConvertPlayer(player, remaining, modelBalances),
	}, nil
}

func (d *spinDomain) GetSpinHistory(
	ctx context.Context, req *model.GetSpinHistoryRequest,
) (*model.GetSpinHistoryResponse, error) {
	playerID := xcontext.RequestUserID(ctx)
	if playerID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	limit := req.Limit
	if limit == 0 {
		limit = 20
	}

	if limit > 100 {
		return nil, errorx.New(errorx.BadRequest, "Exceeded maximum limit of 100")
	}

	records, err := d.spinRecordRepo.GetByPlayer(ctx, playerID, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get spin history: %v", err)
		return nil, errorx.Unknown
	}

	spins := make([]model.SpinRecord, 0, len(records))
	for i := range records {
		spins = append(spins, model.ConvertSpinRecord(&records[i]))
	}

	return &model.GetSpinHistoryResponse{Spins: spins}, nil
}

func (d *spinDomain) GetTokens(
	ctx context.Context, req *model.GetTokensRequest,
) (*model.GetTokensResponse, error) {
	tokens, err := d.tokenRepo.GetAllActive(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reward tokens: %v", err)
		return nil, errorx.Unknown
	}

	modelTokens := make([]model.RewardToken, 0, len(tokens))
	for i := range tokens {
		modelTokens = append(modelTokens, model.ConvertRewardToken(&tokens[i]))
	}

	return &model.GetTokensResponse{Tokens: modelTokens}, nil
}
