package gitpaid

import "github.com/chain/txvm/errors"

// Spend-rejection reasons. Each failed check surfaces one of these as
// its root cause (see errors.Root); callers can rely on the distinction
// to diagnose which invariant a rejected proposal violated.
var (
	// ErrOwnerSig means the proposal's owner signature does not
	// verify against the contract's owner key.
	ErrOwnerSig = errors.New("owner signature invalid")

	// ErrCertifierSig means the proposal's certifier signature does
	// not verify against the contract's certifier key.
	ErrCertifierSig = errors.New("certifier signature invalid")

	// ErrInsufficientValue means the proposal asks for more value
	// than the contract utxo holds.
	ErrInsufficientValue = errors.New("amount exceeds contract value")

	// ErrCommitmentMismatch means the reconstructed output set hashes
	// to something other than the proposal's declared commitment.
	// This is the final gate: it is only reported when every other
	// check has already passed.
	ErrCommitmentMismatch = errors.New("output commitment mismatch")

	// ErrBadState means a serialized contract state failed to parse
	// or a role key has the wrong length.
	ErrBadState = errors.New("malformed contract state")

	// ErrBadProposal means a proposal names an unknown transition or
	// is missing a required field.
	ErrBadProposal = errors.New("malformed spend proposal")

	// ErrUnknownContract means no unspent contract utxo exists with
	// the requested id.
	ErrUnknownContract = errors.New("unknown or spent contract utxo")
)
