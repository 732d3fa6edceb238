package gitpaid

import (
	"github.com/chain/txvm/crypto/ed25519"
	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"
	"github.com/mr-tron/base58"
)

// Address renders a recipient key's payment commitment in base58 for
// display on the API and CLI surface.
func Address(recipient ed25519.PublicKey) string {
	return base58.Encode(RecipientCommitment(recipient).Bytes())
}

// DecodeAddress parses a base58 address back into the 32-byte
// commitment it encodes. The underlying key is not recoverable; the
// commitment is one-way.
func DecodeAddress(addr string) (bc.Hash, error) {
	b, err := base58.Decode(addr)
	if err != nil {
		return bc.Hash{}, errors.Wrapf(err, "decoding address %s", addr)
	}
	if len(b) != 32 {
		return bc.Hash{}, errors.Wrapf(ErrBadProposal, "address decodes to %d bytes, want 32", len(b))
	}
	return bc.HashFromBytes(b), nil
}
