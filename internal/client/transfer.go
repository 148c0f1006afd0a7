package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spinvault/backend/pkg/enum"
	"github.com/spinvault/backend/pkg/xcontext"
)

// TransferErrorKind classifies why an auto transfer failed. Transient kinds
// are worth retrying, terminal ones are not.
type TransferErrorKind string

var (
	TransferErrRateLimited         = enum.New(TransferErrorKind("rate_limited"))
	TransferErrContractPaused      = enum.New(TransferErrorKind("contract_paused"))
	TransferErrInsufficientReserve = enum.New(TransferErrorKind("insufficient_reserve"))
	TransferErrCooldown            = enum.New(TransferErrorKind("cooldown"))
	TransferErrInvalidAddress      = enum.New(TransferErrorKind("invalid_address"))
	TransferErrReverted            = enum.New(TransferErrorKind("reverted"))
	TransferErrUnknown             = enum.New(TransferErrorKind("unknown"))
)

type TransferError struct {
	Kind TransferErrorKind
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Transient reports whether a retry has any chance of succeeding. Retrying
// an unknown failure is unsafe, the transaction may already be in flight and
// a second attempt would spend a fresh nonce on a duplicate payout.
func (e *TransferError) Transient() bool {
	return e.Kind == TransferErrRateLimited
}

// classifyTransferError maps a provider or contract error onto a kind.
// Ethereum JSON-RPC carries no stable error codes, so this relies on string
// matching the way every client has to.
func classifyTransferError(err error) *TransferError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "429"):
		return &TransferError{Kind: TransferErrRateLimited, Err: err}
	case strings.Contains(msg, "pausable: paused"), strings.Contains(msg, "contract paused"):
		return &TransferError{Kind: TransferErrContractPaused, Err: err}
	case strings.Contains(msg, "insufficient reserve"):
		return &TransferError{Kind: TransferErrInsufficientReserve, Err: err}
	case strings.Contains(msg, "cooldown"):
		return &TransferError{Kind: TransferErrCooldown, Err: err}
	case strings.Contains(msg, "invalid address"):
		return &TransferError{Kind: TransferErrInvalidAddress, Err: err}
	case strings.Contains(msg, "execution reverted"):
		return &TransferError{Kind: TransferErrReverted, Err: err}
	default:
		return &TransferError{Kind: TransferErrUnknown, Err: err}
	}
}

// RetryPolicy controls how the executor reacts to transient failures.
type RetryPolicy struct {
	MaxAttempts int

	// Backoff returns how long to wait before the given attempt, counting
	// from 1.
	Backoff func(attempt int) time.Duration

	// Retryable decides whether a classified error deserves another attempt.
	Retryable func(err *TransferError) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 2 * time.Second
		},
		Retryable: func(err *TransferError) bool {
			return err.Transient()
		},
	}
}

// Transferer pays a reward out of the vault and returns the transaction
// hash. Implemented by TransferExecutor.
type Transferer interface {
	Transfer(ctx context.Context, to, token common.Address, amount *big.Int) (string, error)
}

// TransferExecutor submits vault transfers and waits for their receipts.
type TransferExecutor struct {
	ethClient EthClient
	vault     VaultCaller
	policy    RetryPolicy

	receiptPollInterval time.Duration
	receiptTimeout      time.Duration
}

func NewTransferExecutor(
	ethClient EthClient,
	vault VaultCaller,
	policy RetryPolicy,
	receiptPollInterval time.Duration,
	receiptTimeout time.Duration,
) *TransferExecutor {
	return &TransferExecutor{
		ethClient:           ethClient,
		vault:               vault,
		policy:              policy,
		receiptPollInterval: receiptPollInterval,
		receiptTimeout:      receiptTimeout,
	}
}

// Transfer pays amount of token to the recipient from the vault. It blocks
// until the transaction is mined or the retry budget is spent, and returns
// the transaction hash on success.
func (e *TransferExecutor) Transfer(
	ctx context.Context, to, token common.Address, amount *big.Int,
) (string, error) {
	if err := e.preflight(ctx, token, amount); err != nil {
		return "", err
	}

	var lastErr *TransferError
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, e.policy.Backoff(attempt-1)); err != nil {
				return "", lastErr
			}
		}

		txHash, err := e.transferOnce(ctx, to, token, amount)
		if err == nil {
			return txHash, nil
		}

		lastErr = classifyTransferError(err)
		if !e.policy.Retryable(lastErr) {
			xcontext.Logger(ctx).Warnf("Transfer to %s failed terminally: %v", to, lastErr)
			return "", lastErr
		}

		xcontext.Logger(ctx).Warnf("Transfer to %s failed (attempt %d/%d): %v",
			to, attempt, e.policy.MaxAttempts, lastErr)
	}

	return "", lastErr
}

// preflight rejects transfers that cannot succeed before spending gas on
// them.
func (e *TransferExecutor) preflight(ctx context.Context, token common.Address, amount *big.Int) error {
	paused, err := e.vault.Paused(ctx)
	if err != nil {
		return classifyTransferError(err)
	}
	if paused {
		return &TransferError{Kind: TransferErrContractPaused, Err: fmt.Errorf("vault is paused")}
	}

	reserve, err := e.vault.ReserveOf(ctx, token)
	if err != nil {
		return classifyTransferError(err)
	}
	if reserve.Cmp(amount) < 0 {
		return &TransferError{
			Kind: TransferErrInsufficientReserve,
			Err:  fmt.Errorf("reserve %s below transfer amount %s", reserve, amount),
		}
	}

	return nil
}

func (e *TransferExecutor) transferOnce(
	ctx context.Context, to, token common.Address, amount *big.Int,
) (string, error) {
	tx, err := e.vault.TransferRewardTx(ctx, to, token, amount)
	if err != nil {
		return "", err
	}

	if err := e.ethClient.SendTransaction(ctx, tx); err != nil {
		// Another submission of the same tx already sits in the mempool.
		// Ethereum reports this as an error but the transfer is in flight.
		if !strings.Contains(err.Error(), "already known") {
			return "", err
		}
	}

	receipt, err := e.waitReceipt(ctx, tx.Hash())
	if err != nil {
		return "", err
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return "", fmt.Errorf("execution reverted in tx %s", tx.Hash())
	}

	return tx.Hash().Hex(), nil
}

func (e *TransferExecutor) waitReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	deadline := time.Now().Add(e.receiptTimeout)
	for {
		receipt, err := e.ethClient.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("no receipt for tx %s after %s", txHash, e.receiptTimeout)
		}

		if err := sleepCtx(ctx, e.receiptPollInterval); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
