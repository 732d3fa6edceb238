package gitpaid

import (
	"github.com/chain/txvm/protocol/bc"
	"github.com/chain/txvm/protocol/txvm"
)

// contractID derives the utxo id of a brand-new contract instance from
// its state and a creation-time nonce. The nonce keeps two contracts
// with the same role keys distinct.
func contractID(state ContractState, nonceMS int64) bc.Hash {
	b := state.bytes()
	b = appendUint64(b, uint64(nonceMS))
	return bc.NewHash(txvm.VMHash("gp2/contract", b))
}

// successorID derives the utxo id of the contract instance left behind
// by an accepted non-terminal spend. Chaining through the consumed id
// and the spend's commitment gives every instance in a contract's
// lifetime a distinct, deterministic id.
func successorID(prev, commitment bc.Hash) bc.Hash {
	b := make([]byte, 0, 64)
	b = append(b, prev.Bytes()...)
	b = append(b, commitment.Bytes()...)
	return bc.NewHash(txvm.VMHash("gp2/anchor", b))
}
