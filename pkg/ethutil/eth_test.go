package ethutil

import (
	"encoding/hex"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSignPersonalRoundTrip(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	digest := ethcrypto.Keccak256([]byte("spinvault"))
	sig, err := SignPersonal(key, digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.True(t, sig[64] == 27 || sig[64] == 28)

	recovered, err := RecoverPersonal(digest, sig)
	require.NoError(t, err)
	require.Equal(t, AddressOf(key), recovered)
}

func TestValidateAddress(t *testing.T) {
	_, err := ValidateAddress("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)

	_, err = ValidateAddress("not-an-address")
	require.Error(t, err)
}

func TestLoadPrivateKey(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	loaded, err := LoadPrivateKey("0x" + hex.EncodeToString(ethcrypto.FromECDSA(key)))
	require.NoError(t, err)
	require.Equal(t, AddressOf(key), AddressOf(loaded))

	_, err = LoadPrivateKey("")
	require.Error(t, err)
}
