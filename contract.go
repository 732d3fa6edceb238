// Package gitpaid implements a covenant-style escrow for paying out
// bounties from a value-bearing contract utxo.
//
// A contract instance is a utxo carrying a ContractState (the owner and
// certifier public keys) and a value. Spending it means proposing a
// transaction whose outputs the contract reconstructs deterministically:
// the proposal declares a 32-byte commitment, the contract rebuilds the
// canonical output set for the requested transition, hashes it, and
// accepts iff the hashes are equal. Any deviation in value, recipient, or
// output order produces a different hash and a rejected spend.
package gitpaid

import (
	"bytes"

	"github.com/chain/txvm/crypto/ed25519"
	"github.com/chain/txvm/errors"
)

// ContractState holds the persistent fields of one escrow contract.
// The fields never change for the life of the contract: every
// non-terminal transition re-emits them verbatim into the successor
// state output.
type ContractState struct {
	OwnerKey     ed25519.PublicKey `json:"owner_key"`
	CertifierKey ed25519.PublicKey `json:"certifier_key"`
}

// stateVersion prefixes serialized contract state so future field
// additions cannot collide with the current layout.
const stateVersion = byte(2)

// NewContractState validates the role keys and returns the state they
// define.
func NewContractState(owner, certifier ed25519.PublicKey) (ContractState, error) {
	if len(owner) != ed25519.PublicKeySize {
		return ContractState{}, errors.Wrapf(ErrBadState, "owner key is %d bytes, want %d", len(owner), ed25519.PublicKeySize)
	}
	if len(certifier) != ed25519.PublicKeySize {
		return ContractState{}, errors.Wrapf(ErrBadState, "certifier key is %d bytes, want %d", len(certifier), ed25519.PublicKeySize)
	}
	return ContractState{OwnerKey: owner, CertifierKey: certifier}, nil
}

// bytes serializes s canonically: a version byte followed by the two
// fixed-width role keys. Fixed widths make the encoding injective.
func (s ContractState) bytes() []byte {
	b := make([]byte, 0, 1+2*ed25519.PublicKeySize)
	b = append(b, stateVersion)
	b = append(b, s.OwnerKey...)
	b = append(b, s.CertifierKey...)
	return b
}

func parseContractState(b []byte) (ContractState, error) {
	if len(b) != 1+2*ed25519.PublicKeySize || b[0] != stateVersion {
		return ContractState{}, errors.Wrapf(ErrBadState, "malformed state (%d bytes)", len(b))
	}
	var s ContractState
	s.OwnerKey = append(ed25519.PublicKey{}, b[1:1+ed25519.PublicKeySize]...)
	s.CertifierKey = append(ed25519.PublicKey{}, b[1+ed25519.PublicKeySize:]...)
	return s, nil
}

// Equal reports whether two states carry the same role keys.
func (s ContractState) Equal(other ContractState) bool {
	return bytes.Equal(s.OwnerKey, other.OwnerKey) && bytes.Equal(s.CertifierKey, other.CertifierKey)
}
