package gitpaid

import (
	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"
	"github.com/chain/txvm/protocol/txvm"
)

// OutputCommitment hashes an output set in its given order. The hash is
// order-sensitive: swapping two descriptors, even without changing a
// byte of their content, yields a different commitment.
func OutputCommitment(outputs [][]byte) bc.Hash {
	var cat []byte
	for _, out := range outputs {
		cat = append(cat, out...)
	}
	return bc.NewHash(txvm.VMHash("gp2/outputs", cat))
}

// checkCommitment is the single acceptance gate: the reconstructed
// output set must hash to exactly the commitment the spender declared.
// Every transition calls it last, after all other checks, so the
// comparison covers the final constructed byte sequence.
func checkCommitment(outputs [][]byte, declared bc.Hash) error {
	got := OutputCommitment(outputs)
	if got != declared {
		return errors.Wrapf(ErrCommitmentMismatch, "built %x, declared %x", got.Bytes(), declared.Bytes())
	}
	return nil
}
