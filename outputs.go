package gitpaid

import (
	"encoding/binary"

	"github.com/chain/txvm/crypto/ed25519"
	"github.com/chain/txvm/protocol/bc"
	"github.com/chain/txvm/protocol/txvm"
)

// Output descriptor tags. Every descriptor begins with its tag byte, so
// no descriptor is a prefix of another kind's.
const (
	stateOutputTag       = byte('S')
	paymentOutputTag     = byte('P')
	passthroughOutputTag = byte('X')
)

// BuildStateOutput serializes a state-carrying output: the successor
// contract utxo holding value and the unchanged persistent fields.
// Tag, value, and state are all fixed-width, so distinct inputs never
// produce colliding bytes.
func BuildStateOutput(value uint64, state ContractState) []byte {
	b := make([]byte, 0, 1+8+1+2*ed25519.PublicKeySize)
	b = append(b, stateOutputTag)
	b = appendUint64(b, value)
	return append(b, state.bytes()...)
}

// BuildPaymentOutput serializes a payment output: value locked to the
// recipient's one-way commitment (see RecipientCommitment). The raw
// recipient key does not appear in the descriptor.
func BuildPaymentOutput(value uint64, recipient ed25519.PublicKey) []byte {
	b := make([]byte, 0, 1+8+32)
	b = append(b, paymentOutputTag)
	b = appendUint64(b, value)
	commit := RecipientCommitment(recipient)
	return append(b, commit.Bytes()...)
}

// BuildPassthroughOutput reproduces the trailing outputs the spender
// declares for itself (fee change and the like). The contract fixes
// their position in the output set but not their content. The length
// prefix keeps the full concatenation injective even though raw is
// arbitrary.
func BuildPassthroughOutput(raw []byte) []byte {
	b := make([]byte, 0, 1+4+len(raw))
	b = append(b, passthroughOutputTag)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(raw)))
	b = append(b, n[:]...)
	return append(b, raw...)
}

// RecipientCommitment derives the address-style digest that stands in
// for a recipient key inside a payment output.
func RecipientCommitment(recipient ed25519.PublicKey) bc.Hash {
	return bc.NewHash(txvm.VMHash("gp2/recipient", recipient))
}

func appendUint64(b []byte, v uint64) []byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], v)
	return append(b, n[:]...)
}
