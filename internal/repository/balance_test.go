package repository

import (
	"math/big"
	"testing"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_balanceRepository_CreditAccumulated(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertPlayers(ctx)

	repo := NewBalanceRepository()

	// First credit creates the row.
	require.NoError(t, repo.CreditAccumulated(ctx, "player1", entity.Token1, big.NewInt(100)))

	balance, err := repo.Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)
	require.Equal(t, "100", balance.Accumulated)
	require.Equal(t, "0", balance.Claimed)

	// Further credits add up.
	require.NoError(t, repo.CreditAccumulated(ctx, "player1", entity.Token1, big.NewInt(50)))

	balance, err = repo.Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)
	require.Equal(t, "150", balance.Accumulated)

	// Tokens are tracked independently.
	_, err = repo.Get(ctx, "player1", entity.Token2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_balanceRepository_MoveAccumulatedToClaimed(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertPlayers(ctx)

	repo := NewBalanceRepository()
	require.NoError(t, repo.CreditAccumulated(ctx, "player1", entity.Token1, big.NewInt(100)))

	require.NoError(t, repo.MoveAccumulatedToClaimed(ctx, "player1", entity.Token1, big.NewInt(60)))

	balance, err := repo.Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)
	require.Equal(t, "40", balance.Accumulated)
	require.Equal(t, "60", balance.Claimed)

	// Moving more than accumulated fails and changes nothing.
	err = repo.MoveAccumulatedToClaimed(ctx, "player1", entity.Token1, big.NewInt(50))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	balance, err = repo.Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)
	require.Equal(t, "40", balance.Accumulated)
	require.Equal(t, "60", balance.Claimed)
}

func Test_balanceRepository_HandlesAmountsBeyondUint64(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertPlayers(ctx)

	repo := NewBalanceRepository()

	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	require.NoError(t, repo.CreditAccumulated(ctx, "player1", entity.Token1, huge))
	require.NoError(t, repo.CreditAccumulated(ctx, "player1", entity.Token1, huge))

	balance, err := repo.Get(ctx, "player1", entity.Token1)
	require.NoError(t, err)

	expected := new(big.Int).Add(huge, huge)
	require.Equal(t, expected.String(), balance.Accumulated)
}
