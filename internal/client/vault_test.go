package client

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spinvault/backend/mocks"
	"github.com/spinvault/backend/pkg/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T, ethClient *mocks.EthClient) *vaultCaller {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	vault, err := NewVaultCaller(
		ethClient,
		common.HexToAddress("0x000000000000000000000000000000000000dEaD"),
		1337,
		150000,
		key,
	)
	require.NoError(t, err)
	return vault
}

func Test_VaultCaller_ClaimNonce(t *testing.T) {
	ctx := testutil.MockContext()

	ethClient := &mocks.EthClient{}
	ethClient.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(math.U256Bytes(big.NewInt(41)), nil)

	vault := newTestVault(t, ethClient)

	nonce, err := vault.ClaimNonce(ctx, common.HexToAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"))
	require.NoError(t, err)
	require.EqualValues(t, 41, nonce)
}

func Test_VaultCaller_TransferRewardTxIsSigned(t *testing.T) {
	ctx := testutil.MockContext()

	ethClient := &mocks.EthClient{}
	ethClient.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(5), nil)
	ethClient.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(2_000_000_000), nil)

	vault := newTestVault(t, ethClient)

	tx, err := vault.TransferRewardTx(
		ctx,
		common.HexToAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"),
		common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
		big.NewInt(1000),
	)
	require.NoError(t, err)
	require.EqualValues(t, 5, tx.Nonce())
	require.EqualValues(t, 150000, tx.Gas())
	require.Equal(t, common.HexToAddress("0x000000000000000000000000000000000000dEaD"), *tx.To())
	require.NotEmpty(t, tx.Data())

	v, r, s := tx.RawSignatureValues()
	require.NotZero(t, v.Sign())
	require.NotZero(t, r.Sign())
	require.NotZero(t, s.Sign())
}
