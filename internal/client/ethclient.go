package client

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spinvault/backend/config"
	"github.com/spinvault/backend/pkg/xcontext"
)

const maxShuffleTimes = 20

// EthClient wraps the parts of ethclient.Client the service uses so tests
// can substitute a mock.
type EthClient interface {
	Start(ctx context.Context)

	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
}

// Default implementation. RPC endpoints are often unstable, so the client
// keeps the configured list, health checks it periodically and picks a
// random healthy endpoint per call.
type defaultEthClient struct {
	cfg config.BlockchainConfigs

	mutex     sync.RWMutex
	clients   []*ethclient.Client
	healthies []bool
	rpcs      []string
}

func NewEthClient(cfg config.BlockchainConfigs) EthClient {
	return &defaultEthClient{cfg: cfg}
}

func (c *defaultEthClient) Start(ctx context.Context) {
	go c.loopCheck(ctx)
}

func (c *defaultEthClient) loopCheck(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.RefreshConnectionFrequency):
			c.updateRpcs(ctx)
		}
	}
}

func (c *defaultEthClient) updateRpcs(ctx context.Context) {
	c.mutex.RLock()
	oldClients := c.clients
	c.mutex.RUnlock()

	rpcs, clients, healthies := c.checkHealthiness(ctx, c.cfg.RPCs)

	c.mutex.Lock()
	for _, client := range oldClients {
		client.Close()
	}

	c.rpcs, c.clients, c.healthies = rpcs, clients, healthies
	c.mutex.Unlock()
}

func (c *defaultEthClient) checkHealthiness(
	ctx context.Context, allRpcs []string,
) ([]string, []*ethclient.Client, []bool) {
	rpcs := make([]string, 0, len(allRpcs))
	clients := make([]*ethclient.Client, 0, len(allRpcs))
	healthies := make([]bool, 0, len(allRpcs))

	for _, rpc := range allRpcs {
		client, err := ethclient.Dial(rpc)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", rpc, err)
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, c.cfg.RPCTimeout)
		_, err = client.BlockNumber(checkCtx)
		cancel()

		if err != nil {
			xcontext.Logger(ctx).Warnf("Unhealthy rpc %s: %v", rpc, err)
			client.Close()
			continue
		}

		rpcs = append(rpcs, rpc)
		clients = append(clients, client)
		healthies = append(healthies, true)
	}

	return rpcs, clients, healthies
}

func (c *defaultEthClient) shuffle() ([]*ethclient.Client, []bool, []string) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	n := len(c.clients)
	if n == 0 {
		return nil, nil, nil
	}

	clients := make([]*ethclient.Client, n)
	healthies := make([]bool, n)
	rpcs := make([]string, n)

	copy(clients, c.clients)
	copy(healthies, c.healthies)
	copy(rpcs, c.rpcs)

	for i := 0; i < maxShuffleTimes; i++ {
		x := rand.Intn(n)
		y := rand.Intn(n)

		clients[x], clients[y] = clients[y], clients[x]
		healthies[x], healthies[y] = healthies[y], healthies[x]
		rpcs[x], rpcs[y] = rpcs[y], rpcs[x]
	}

	return clients, healthies, rpcs
}

func (c *defaultEthClient) getHealthyClient(ctx context.Context) (*ethclient.Client, string) {
	c.mutex.RLock()
	uninitialized := c.clients == nil
	c.mutex.RUnlock()

	if uninitialized {
		c.updateRpcs(ctx)
	}

	clients, healthies, rpcs := c.shuffle()
	for i, healthy := range healthies {
		if healthy {
			return clients[i], rpcs[i]
		}
	}

	return nil, ""
}

func (c *defaultEthClient) execute(
	ctx context.Context, f func(client *ethclient.Client, rpc string) (any, error),
) (any, error) {
	client, rpc := c.getHealthyClient(ctx)
	if client == nil {
		return nil, fmt.Errorf("no healthy rpc for chain %d", c.cfg.ChainID)
	}

	return f(client, rpc)
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	num, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.BlockNumber(ctx)
	})
	if err != nil {
		return 0, err
	}

	return num.(uint64), nil
}

func (c *defaultEthClient) TransactionReceipt(
	ctx context.Context, txHash common.Hash,
) (*ethtypes.Receipt, error) {
	receipt, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.TransactionReceipt(ctx, txHash)
	})
	if err != nil {
		return nil, err
	}

	return receipt.(*ethtypes.Receipt), nil
}

func (c *defaultEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	gas, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.SuggestGasPrice(ctx)
	})
	if err != nil {
		return nil, err
	}

	return gas.(*big.Int), nil
}

func (c *defaultEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.PendingNonceAt(ctx, account)
	})
	if err != nil {
		return 0, err
	}

	return nonce.(uint64), nil
}

func (c *defaultEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	_, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return nil, client.SendTransaction(ctx, tx)
	})

	return err
}

func (c *defaultEthClient) CallContract(
	ctx context.Context, msg ethereum.CallMsg, block *big.Int,
) ([]byte, error) {
	result, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.CallContract(ctx, msg, block)
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
