package gitpaid

import (
	"testing"

	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"
	"github.com/chain/txvm/protocol/txvm"
)

func TestSigHashBindsEveryField(t *testing.T) {
	recipient, _ := testKey(t)
	base := Proposal{
		Contract:   bc.NewHash(txvm.VMHash("gp2/test", []byte("contract"))),
		Kind:       KindPay,
		Amount:     300,
		Recipient:  recipient,
		EventID:    "pr-42-merged",
		Commitment: bc.NewHash(txvm.VMHash("gp2/test", []byte("commitment"))),
	}

	mutations := map[string]func(*Proposal){
		"contract":    func(p *Proposal) { p.Contract = bc.NewHash(txvm.VMHash("gp2/test", []byte("other"))) },
		"kind":        func(p *Proposal) { p.Kind = KindWithdraw },
		"added":       func(p *Proposal) { p.Added = 1 },
		"amount":      func(p *Proposal) { p.Amount = 301 },
		"recipient":   func(p *Proposal) { p.Recipient = append([]byte{}, p.Recipient[1:]...) },
		"event_id":    func(p *Proposal) { p.EventID = "pr-43-merged" },
		"passthrough": func(p *Proposal) { p.Passthrough = []byte{0x00} },
		"commitment":  func(p *Proposal) { p.Commitment = bc.Hash{} },
	}
	want := base.SigHash()
	for field, mutate := range mutations {
		p := base
		mutate(&p)
		if p.SigHash() == want {
			t.Errorf("mutating %s did not change the sighash", field)
		}
	}

	// Signatures are excluded: attaching them must not move the digest
	// they were computed over.
	p := base
	p.OwnerSig = []byte{1, 2, 3}
	p.CertifierSig = []byte{4, 5, 6}
	if p.SigHash() != want {
		t.Error("attaching signatures changed the sighash")
	}
}

func TestApplyRejectsUnknownKind(t *testing.T) {
	state, _, _ := testState(t)
	p := Proposal{Kind: "retire"}
	_, err := p.apply(state, 1000)
	if errors.Root(err) != ErrBadProposal {
		t.Errorf("got %v, want %v", err, ErrBadProposal)
	}
}
