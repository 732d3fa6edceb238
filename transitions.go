package gitpaid

import (
	"github.com/chain/txvm/crypto/ed25519"
	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"
)

// SpendContext is what the transaction being validated supplies to a
// transition: the value of the contract utxo it consumes, the output
// commitment it declares, and the signable digest its signatures cover.
// It is read-only input; transitions never mutate it.
type SpendContext struct {
	Value      uint64
	Commitment bc.Hash
	SigHash    bc.Hash
}

// Spend is the effect of an accepted transition: the canonical output
// set (in commitment order), the successor state if any, and the value
// split. Next is nil exactly when the spend drains the contract, i.e.
// when no state output was emitted and the instance is terminal.
type Spend struct {
	Outputs  [][]byte
	Next     *ContractState
	Paid     uint64
	Residual uint64
}

// Terminal reports whether the spend ends the contract instance.
func (sp *Spend) Terminal() bool { return sp.Next == nil }

// PayRequest carries the parameters of a bounty payout. Both the owner
// and the certifier must have signed the spend digest: the owner
// authorizes releasing contract value, the certifier attests that the
// event identified by EventID was earned.
//
// TODO: have the certifier sign over (EventID, Recipient, Amount) and
// verify that binding here. Today the certifier signature covers only
// the spend digest, so a certifier who has signed any spend of this
// utxo has authorized whatever payout that spend names.
type PayRequest struct {
	OwnerSig     []byte
	CertifierSig []byte
	Recipient    ed25519.PublicKey
	EventID      string
	Amount       uint64
	Passthrough  []byte
}

// WithdrawRequest carries the parameters of an owner withdrawal. Only
// the owner signs; value returns to the owner's own recipient
// commitment.
type WithdrawRequest struct {
	OwnerSig    []byte
	Amount      uint64
	Passthrough []byte
}

// Fund adds value to the contract. No authorization is required: anyone
// may top up a bounty, and the added value is implicit in the spending
// transaction's declared total rather than separately authenticated.
// The full new value is re-locked under the unchanged state.
func (s ContractState) Fund(ctx SpendContext, added uint64, passthrough []byte) (*Spend, error) {
	newValue := ctx.Value + added
	if newValue < ctx.Value {
		return nil, errors.Wrapf(ErrBadProposal, "funding %d overflows value %d", added, ctx.Value)
	}
	outs := [][]byte{
		BuildStateOutput(newValue, s),
		BuildPassthroughOutput(passthrough),
	}
	err := checkCommitment(outs, ctx.Commitment)
	if err != nil {
		return nil, errors.Wrap(err, "funding contract")
	}
	next := s
	return &Spend{Outputs: outs, Next: &next, Residual: newValue}, nil
}

// Pay releases req.Amount to req.Recipient. It requires two independent
// authorizations, each necessary and neither alone sufficient, checked
// owner first so the reported reason is deterministic. Residual value,
// if any, is re-locked under the unchanged state; a payout of the full
// value terminates the contract.
func (s ContractState) Pay(ctx SpendContext, req PayRequest) (*Spend, error) {
	if !checkSig(req.OwnerSig, ctx.SigHash, s.OwnerKey) {
		return nil, ErrOwnerSig
	}
	if !checkSig(req.CertifierSig, ctx.SigHash, s.CertifierKey) {
		return nil, ErrCertifierSig
	}
	return s.disburse(ctx, req.Amount, req.Recipient, req.Passthrough)
}

// Withdraw returns req.Amount of contract value to the owner. Only the
// owner's authorization is required, and the payment output is locked
// to the owner key's own recipient commitment.
func (s ContractState) Withdraw(ctx SpendContext, req WithdrawRequest) (*Spend, error) {
	if !checkSig(req.OwnerSig, ctx.SigHash, s.OwnerKey) {
		return nil, ErrOwnerSig
	}
	return s.disburse(ctx, req.Amount, s.OwnerKey, req.Passthrough)
}

// disburse is the shared tail of Pay and Withdraw: bound the amount,
// build the canonical output set, and gate on the declared commitment.
// Conservation is exact: amount + residual == ctx.Value, with no fee
// taken from contract value (fees live in the spender's passthrough
// outputs).
func (s ContractState) disburse(ctx SpendContext, amount uint64, recipient ed25519.PublicKey, passthrough []byte) (*Spend, error) {
	if amount > ctx.Value {
		return nil, errors.Wrapf(ErrInsufficientValue, "requested %d, available %d", amount, ctx.Value)
	}
	residual := ctx.Value - amount

	var outs [][]byte
	if residual > 0 {
		outs = append(outs, BuildStateOutput(residual, s))
	}
	outs = append(outs, BuildPaymentOutput(amount, recipient))
	outs = append(outs, BuildPassthroughOutput(passthrough))

	err := checkCommitment(outs, ctx.Commitment)
	if err != nil {
		return nil, errors.Wrap(err, "disbursing contract value")
	}

	sp := &Spend{Outputs: outs, Paid: amount, Residual: residual}
	if residual > 0 {
		next := s
		sp.Next = &next
	}
	return sp, nil
}
