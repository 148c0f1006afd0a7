package client

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ABI of the reward vault contract. The vault holds the reward token
// reserves, pays out operator transfers and verifies player claim
// signatures. Claim nonces live on chain, nonces(user) returns the last
// consumed one.
const rewardVaultABI = `[
	{"type":"function","name":"nonces","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"reserveOf","stateMutability":"view","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transferReward","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// VaultCaller talks to the reward vault contract.
type VaultCaller interface {
	// ClaimNonce returns the last claim nonce the vault consumed for user.
	// The next valid claim must carry this value plus one.
	ClaimNonce(ctx context.Context, user common.Address) (uint64, error)

	Paused(ctx context.Context) (bool, error)
	ReserveOf(ctx context.Context, token common.Address) (*big.Int, error)

	// TransferRewardTx builds and signs an operator transfer but does not
	// send it.
	TransferRewardTx(ctx context.Context, to, token common.Address, amount *big.Int) (*ethtypes.Transaction, error)
}

type vaultCaller struct {
	ethClient EthClient

	address     common.Address
	chainID     *big.Int
	gasLimit    uint64
	operatorKey *ecdsa.PrivateKey
	abi         abi.ABI
}

func NewVaultCaller(
	ethClient EthClient,
	address common.Address,
	chainID int64,
	gasLimit uint64,
	operatorKey *ecdsa.PrivateKey,
) (*vaultCaller, error) {
	parsed, err := abi.JSON(strings.NewReader(rewardVaultABI))
	if err != nil {
		return nil, err
	}

	return &vaultCaller{
		ethClient:   ethClient,
		address:     address,
		chainID:     big.NewInt(chainID),
		gasLimit:    gasLimit,
		operatorKey: operatorKey,
		abi:         parsed,
	}, nil
}

func (c *vaultCaller) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	output, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, err
	}

	return c.abi.Unpack(method, output)
}

func (c *vaultCaller) ClaimNonce(ctx context.Context, user common.Address) (uint64, error) {
	values, err := c.call(ctx, "nonces", user)
	if err != nil {
		return 0, err
	}

	return values[0].(*big.Int).Uint64(), nil
}

func (c *vaultCaller) Paused(ctx context.Context) (bool, error) {
	values, err := c.call(ctx, "paused")
	if err != nil {
		return false, err
	}

	return values[0].(bool), nil
}

func (c *vaultCaller) ReserveOf(ctx context.Context, token common.Address) (*big.Int, error) {
	values, err := c.call(ctx, "reserveOf", token)
	if err != nil {
		return nil, err
	}

	return values[0].(*big.Int), nil
}

func (c *vaultCaller) TransferRewardTx(
	ctx context.Context, to, token common.Address, amount *big.Int,
) (*ethtypes.Transaction, error) {
	data, err := c.abi.Pack("transferReward", to, token, amount)
	if err != nil {
		return nil, err
	}

	operator := ethcrypto.PubkeyToAddress(c.operatorKey.PublicKey)
	nonce, err := c.ethClient.PendingNonceAt(ctx, operator)
	if err != nil {
		return nil, err
	}

	gasPrice, err := c.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	tx := ethtypes.NewTransaction(nonce, c.address, common.Big0, c.gasLimit, gasPrice, data)
	return ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(c.chainID), c.operatorKey)
}
