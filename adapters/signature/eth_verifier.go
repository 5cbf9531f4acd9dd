package signature

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// EthereumVerifier verifies EIP-191 personal_sign signatures from EVM
// wallets. The signature is 0x-prefixed hex, 65 bytes, with V in {0,1,27,28}.
type EthereumVerifier struct{}

// Verify implements ports.SignatureVerifier.
func (EthereumVerifier) Verify(walletAddress, message, signature string) bool {
	if !IsEthereumAddress(walletAddress) {
		return false
	}

	decodedSig, err := hexutil.Decode(signature)
	if err != nil || len(decodedSig) != crypto.SignatureLength {
		return false
	}

	sig := make([]byte, len(decodedSig))
	copy(sig, decodedSig)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return false
	}

	return crypto.PubkeyToAddress(*pub) == common.HexToAddress(walletAddress)
}

// IsEthereumAddress reports whether the address is a 0x-prefixed 20-byte hex address.
func IsEthereumAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}
