package domain

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/spinvault/backend/internal/domain/spinengine"
	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/internal/model"
	"github.com/spinvault/backend/internal/repository"
	"github.com/spinvault/backend/mocks"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/testutil"
	"github.com/spinvault/backend/pkg/xcontext"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scriptedSource always draws the same values so tests control the outcome.
type scriptedSource struct {
	drawn  int
	amount int64
}

func (s scriptedSource) Intn(n int) int {
	return s.drawn % n
}

func (s scriptedSource) BigIntRange(a, b *big.Int) *big.Int {
	return big.NewInt(s.amount)
}

// alwaysToken1 lands on token1 with a 25 whole-token reward.
var alwaysToken1 = scriptedSource{drawn: 40, amount: 25}

// alwaysNoWin lands on the no-win segment of the standard table.
var alwaysNoWin = scriptedSource{drawn: 0, amount: 25}

var amount25 = mustBig("25000000000000000000")

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big int " + s)
	}
	return v
}

func newTestSpinDomain(t *testing.T, source spinengine.RandomSource, transferer *mocks.Transferer) SpinDomain {
	cfg := spinengine.DefaultConfig()
	cfg.Beginner.Enabled = false

	engine, err := spinengine.NewEngine(cfg, source)
	require.NoError(t, err)

	return NewSpinDomain(
		repository.NewPlayerRepository(),
		repository.NewBalanceRepository(),
		repository.NewSpinRecordRepository(),
		repository.NewTokenRepository(),
		engine,
		transferer,
		testutil.NewMockPublisher(),
	)
}

func Test_spinDomain_Spin_QuotaExceededOnFourthSpin(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("0xtxhash", nil)

	spinDomain := newTestSpinDomain(t, alwaysToken1, transferer)

	for i := 0; i < 3; i++ {
		resp, err := spinDomain.Spin(ctx, &model.SpinRequest{})
		require.NoError(t, err)
		require.Equal(t, 3-i-1, resp.SpinsRemaining)
	}

	_, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.Error(t, err)

	errx := errorx.Error{}
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.QuotaExceeded, errx.Code)
}

func Test_spinDomain_Spin_QuotaResetsOnNewUTCDay(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	// The player burned all spins yesterday.
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	err := xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=?", "player1").
		Updates(map[string]any{"spins_used_today": 3, "last_spin_at": yesterday}).Error
	require.NoError(t, err)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("0xtxhash", nil)

	spinDomain := newTestSpinDomain(t, alwaysToken1, transferer)

	resp, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, resp.SpinsRemaining)
}

func Test_spinDomain_Spin_WinCreditsAndTransfers(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, amount25).
		Return("0xtxhash", nil)

	spinDomain := newTestSpinDomain(t, alwaysToken1, transferer)

	resp, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.True(t, resp.IsWin)
	require.Equal(t, string(entity.Token1), resp.TokenID)
	require.Equal(t, amount25.String(), resp.Amount)
	require.Equal(t, "0xtxhash", resp.TxHash)

	// The paid-out amount is claimed, nothing stays accumulated.
	balance, err := repository.NewBalanceRepository().Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)
	require.Equal(t, "0", balance.Accumulated)
	require.Equal(t, amount25.String(), balance.Claimed)

	records, err := repository.NewSpinRecordRepository().GetByPlayer(ctx, "player1", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].TransferAttempted)
	require.Equal(t, "0xtxhash", records[0].TxHash)
}

func Test_spinDomain_Spin_TransferFailureKeepsAccumulated(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("execution reverted: insufficient reserve"))

	spinDomain := newTestSpinDomain(t, alwaysToken1, transferer)

	resp, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.True(t, resp.IsWin)
	require.Empty(t, resp.TxHash)

	// The spin still consumed quota and the reward stays claimable.
	require.Equal(t, 2, resp.SpinsRemaining)

	balance, err := repository.NewBalanceRepository().Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)
	require.Equal(t, amount25.String(), balance.Accumulated)
	require.Equal(t, "0", balance.Claimed)

	records, err := repository.NewSpinRecordRepository().GetByPlayer(ctx, "player1", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].TxHash)
}

func Test_spinDomain_Spin_NoWinTouchesNoBalance(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	transferer := &mocks.Transferer{}
	spinDomain := newTestSpinDomain(t, alwaysNoWin, transferer)

	resp, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.False(t, resp.IsWin)
	require.Empty(t, resp.Amount)
	require.Equal(t, 2, resp.SpinsRemaining)

	transferer.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = repository.NewBalanceRepository().Get(ctx, "player1", entity.Token1)
	require.Error(t, err)
}

func Test_spinDomain_Spin_Unauthenticated(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	spinDomain := newTestSpinDomain(t, alwaysNoWin, &mocks.Transferer{})

	_, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.Error(t, err)

	errx := errorx.Error{}
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func Test_spinDomain_GetPlayer(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("0xtxhash", nil)

	spinDomain := newTestSpinDomain(t, alwaysToken1, transferer)

	_, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)

	resp, err := spinDomain.GetPlayer(ctx, &model.GetPlayerRequest{})
	require.NoError(t, err)
	require.Equal(t, "player1", resp.Player.ID)
	require.Equal(t, 2, resp.Player.SpinsRemaining)
	require.Equal(t, 1, resp.Player.TotalSpins)
	require.Equal(t, 1, resp.Player.TotalWins)
	require.Len(t, resp.Player.Balances, 1)
	require.Equal(t, "SPN1", resp.Player.Balances[0].Symbol)
}

func Test_spinDomain_GetSpinHistory(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("0xtxhash", nil)

	spinDomain := newTestSpinDomain(t, alwaysToken1, transferer)

	for i := 0; i < 2; i++ {
		_, err := spinDomain.Spin(ctx, &model.SpinRequest{})
		require.NoError(t, err)
	}

	resp, err := spinDomain.GetSpinHistory(ctx, &model.GetSpinHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Spins, 2)

	_, err = spinDomain.GetSpinHistory(ctx, &model.GetSpinHistoryRequest{Limit: 1000})
	require.Error(t, err)
}

func Test_spinDomain_GetTokens(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	spinDomain := newTestSpinDomain(t, alwaysNoWin, &mocks.Transferer{})

	resp, err := spinDomain.GetTokens(ctx, &model.GetTokensRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tokens, 3)
}

func Test_spinDomain_Spin_BeginnerTableUsesFreshSpinCount(t *testing.T) {
	ctx := testutil.MockContextWithUserID("player1")
	testutil.CreateFixtureDb(ctx)

	// Two lifetime spins already on record; the next one is the third.
	err := xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=?", "player1").
		Update("total_spins", 2).Error
	require.NoError(t, err)

	transferer := &mocks.Transferer{}
	transferer.On("Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("0xtxhash", nil)

	engine, err := spinengine.NewEngine(spinengine.DefaultConfig(), alwaysNoWin)
	require.NoError(t, err)

	spinDomain := NewSpinDomain(
		repository.NewPlayerRepository(),
		repository.NewBalanceRepository(),
		repository.NewSpinRecordRepository(),
		repository.NewTokenRepository(),
		engine,
		transferer,
		testutil.NewMockPublisher(),
	)

	// Draw 0 lands on no-win everywhere except the third beginner table,
	// which has no no-win segment. A win proves the lifetime count is read
	// at spin time, under the per-player lock.
	resp, err := spinDomain.Spin(ctx, &model.SpinRequest{})
	require.NoError(t, err)
	require.True(t, resp.IsWin)
}
