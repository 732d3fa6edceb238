package gitpaid

import (
	"github.com/chain/txvm/crypto/ed25519"
	"github.com/chain/txvm/protocol/bc"
)

// checkSig reports whether sig is a valid signature by pub over the
// spend's signable digest. It returns false, never an error, on
// malformed input; callers turn false into a role-specific rejection.
func checkSig(sig []byte, sighash bc.Hash, pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, sighash.Bytes(), sig)
}
