package client

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spinvault/backend/pkg/ethutil"
)

// ClaimParams is the exact tuple the vault contract hashes when verifying a
// claim signature.
type ClaimParams struct {
	User     common.Address
	Token    common.Address
	Amount   *big.Int
	Nonce    uint64
	Deadline int64
}

// packClaim reproduces solidity's abi.encodePacked(user, token, amount,
// nonce, deadline) with amount, nonce and deadline as uint256.
func packClaim(params ClaimParams) []byte {
	packed := make([]byte, 0, 20+20+32+32+32)
	packed = append(packed, params.User.Bytes()...)
	packed = append(packed, params.Token.Bytes()...)
	packed = append(packed, math.U256Bytes(new(big.Int).Set(params.Amount))...)
	packed = append(packed, math.U256Bytes(new(big.Int).SetUint64(params.Nonce))...)
	packed = append(packed, math.U256Bytes(big.NewInt(params.Deadline))...)
	return packed
}

// ClaimDigest returns the keccak256 hash the claim signature covers, before
// the personal-sign prefix.
func ClaimDigest(params ClaimParams) []byte {
	return ethcrypto.Keccak256(packClaim(params))
}

// SignClaim signs the claim tuple with the backend signer key, using the
// Ethereum personal-sign scheme the vault verifies with ecrecover.
func SignClaim(key *ecdsa.PrivateKey, params ClaimParams) ([]byte, error) {
	return ethutil.SignPersonal(key, ClaimDigest(params))
}

// VerifyClaimSignature recovers the signer address of a claim signature.
func VerifyClaimSignature(params ClaimParams, signature []byte) (common.Address, error) {
	return ethutil.RecoverPersonal(ClaimDigest(params), signature)
}
