package ethutil

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// LoadPrivateKey parses a hex-encoded secp256k1 private key. Custodial keys
// are loaded exactly once at startup and shared process-wide.
func LoadPrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	trimmed := strings.TrimPrefix(hexKey, "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty private key")
	}

	return ethcrypto.HexToECDSA(trimmed)
}

func AddressOf(key *ecdsa.PrivateKey) common.Address {
	return ethcrypto.PubkeyToAddress(key.PublicKey)
}

func ValidateAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("invalid hex address %q", address)
	}

	return common.HexToAddress(address), nil
}

// PersonalSignDigest wraps a 32-byte digest with the Ethereum personal-sign
// prefix. The verifying contract recovers the signer from this exact layout.
func PersonalSignDigest(digest []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(digest))
	return ethcrypto.Keccak256([]byte(prefix), digest)
}

// SignPersonal signs a raw digest as an Ethereum personal-sign message and
// adjusts the recovery id to the 27/28 convention the EVM expects.
func SignPersonal(key *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(PersonalSignDigest(digest), key)
	if err != nil {
		return nil, err
	}

	sig[64] += 27
	return sig, nil
}

// RecoverPersonal recovers the address that produced a personal-sign
// signature over the given digest.
func RecoverPersonal(digest, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := ethcrypto.SigToPub(PersonalSignDigest(digest), normalized)
	if err != nil {
		return common.Address{}, err
	}

	return ethcrypto.PubkeyToAddress(*pub), nil
}
