package gitpaid

import (
	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"
	"github.com/chain/txvm/protocol/txvm"
)

// Transition kinds, as they appear on the wire and in the db.
const (
	KindFund     = "fund"
	KindPay      = "pay"
	KindWithdraw = "withdraw"
)

// Proposal is a candidate spend of one contract utxo, as submitted over
// the wire. It names the utxo, the transition, the transition's
// parameters, and the commitment to the full output set the spending
// transaction declares. Signatures cover SigHash, which covers every
// field here except the signatures themselves.
type Proposal struct {
	Contract     bc.Hash `json:"contract"`
	Kind         string  `json:"kind"`
	Added        uint64  `json:"added,omitempty"`
	Amount       uint64  `json:"amount,omitempty"`
	Recipient    []byte  `json:"recipient,omitempty"`
	EventID      string  `json:"event_id,omitempty"`
	OwnerSig     []byte  `json:"owner_sig,omitempty"`
	CertifierSig []byte  `json:"certifier_sig,omitempty"`
	Passthrough  []byte  `json:"passthrough,omitempty"`
	Commitment   bc.Hash `json:"commitment"`
}

var kindTags = map[string]byte{
	KindFund:     1,
	KindPay:      2,
	KindWithdraw: 3,
}

// SigHash is the signable digest of the proposed spend. The owner and
// certifier sign these 32 bytes; the contract verifies against them.
// Variable-length fields are length-prefixed so no two distinct
// proposals share a digest.
func (p *Proposal) SigHash() bc.Hash {
	b := make([]byte, 0, 128)
	b = append(b, p.Contract.Bytes()...)
	b = append(b, kindTags[p.Kind])
	b = appendUint64(b, p.Added)
	b = appendUint64(b, p.Amount)
	b = appendUint64(b, uint64(len(p.Recipient)))
	b = append(b, p.Recipient...)
	b = appendUint64(b, uint64(len(p.EventID)))
	b = append(b, p.EventID...)
	b = appendUint64(b, uint64(len(p.Passthrough)))
	b = append(b, p.Passthrough...)
	b = append(b, p.Commitment.Bytes()...)
	return bc.NewHash(txvm.VMHash("gp2/sighash", b))
}

// apply evaluates the proposal against the current state and value of
// the utxo it spends. Pure: it either returns the accepted spend's
// effect or the rejection reason, with nothing recorded either way.
func (p *Proposal) apply(state ContractState, value uint64) (*Spend, error) {
	ctx := SpendContext{Value: value, Commitment: p.Commitment, SigHash: p.SigHash()}
	switch p.Kind {
	case KindFund:
		return state.Fund(ctx, p.Added, p.Passthrough)
	case KindPay:
		return state.Pay(ctx, PayRequest{
			OwnerSig:     p.OwnerSig,
			CertifierSig: p.CertifierSig,
			Recipient:    p.Recipient,
			EventID:      p.EventID,
			Amount:       p.Amount,
			Passthrough:  p.Passthrough,
		})
	case KindWithdraw:
		return state.Withdraw(ctx, WithdrawRequest{
			OwnerSig:    p.OwnerSig,
			Amount:      p.Amount,
			Passthrough: p.Passthrough,
		})
	}
	return nil, errors.Wrapf(ErrBadProposal, "unknown transition kind %q", p.Kind)
}
