package gitpaid

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/chain/txvm/crypto/ed25519"
)

func testKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, prv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return pub, prv
}

func testState(t *testing.T) (ContractState, ed25519.PrivateKey, ed25519.PrivateKey) {
	ownerPub, ownerPrv := testKey(t)
	certPub, certPrv := testKey(t)
	state, err := NewContractState(ownerPub, certPub)
	if err != nil {
		t.Fatal(err)
	}
	return state, ownerPrv, certPrv
}

func TestStateOutputInjective(t *testing.T) {
	state1, _, _ := testState(t)
	state2, _, _ := testState(t)

	if !bytes.Equal(BuildStateOutput(100, state1), BuildStateOutput(100, state1)) {
		t.Error("state output not deterministic")
	}
	if bytes.Equal(BuildStateOutput(100, state1), BuildStateOutput(101, state1)) {
		t.Error("distinct values produced colliding state outputs")
	}
	if bytes.Equal(BuildStateOutput(100, state1), BuildStateOutput(100, state2)) {
		t.Error("distinct states produced colliding state outputs")
	}
}

func TestPaymentOutputHidesRecipientKey(t *testing.T) {
	pub, _ := testKey(t)
	out := BuildPaymentOutput(500, pub)
	if bytes.Contains(out, pub) {
		t.Error("payment output contains the raw recipient key")
	}
	if !bytes.Equal(out, BuildPaymentOutput(500, pub)) {
		t.Error("payment output not deterministic")
	}
	commit := RecipientCommitment(pub)
	if !bytes.Contains(out, commit.Bytes()) {
		t.Error("payment output missing recipient commitment")
	}
}

func TestPassthroughFraming(t *testing.T) {
	a := BuildPassthroughOutput([]byte("ab"))
	b := BuildPassthroughOutput([]byte("a"))
	if bytes.Equal(a, b) {
		t.Error("distinct passthrough bytes produced colliding outputs")
	}
	if bytes.HasPrefix(a, b) {
		t.Error("passthrough outputs are prefixes of each other; concatenation is not injective")
	}
	empty := BuildPassthroughOutput(nil)
	if len(empty) != 5 {
		t.Errorf("empty passthrough output is %d bytes, want tag + length prefix", len(empty))
	}
}

func TestOutputCommitmentOrderSensitive(t *testing.T) {
	state, _, _ := testState(t)
	pub, _ := testKey(t)

	stateOut := BuildStateOutput(700, state)
	payOut := BuildPaymentOutput(300, pub)
	passOut := BuildPassthroughOutput(nil)

	canonical := OutputCommitment([][]byte{stateOut, payOut, passOut})
	reordered := OutputCommitment([][]byte{payOut, stateOut, passOut})
	if canonical == reordered {
		t.Error("reordering outputs did not change the commitment")
	}
}

func TestAddressRoundTrip(t *testing.T) {
	pub, _ := testKey(t)
	addr := Address(pub)
	got, err := DecodeAddress(addr)
	if err != nil {
		t.Fatal(err)
	}
	if got != RecipientCommitment(pub) {
		t.Errorf("address %s decodes to %x, want %x", addr, got.Bytes(), RecipientCommitment(pub).Bytes())
	}
	if _, err = DecodeAddress("not-an-address-!!!"); err == nil {
		t.Error("expected error decoding junk address")
	}
}

func TestContractStateRoundTrip(t *testing.T) {
	state, _, _ := testState(t)
	got, err := parseContractState(state.bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(state) {
		t.Error("state did not survive serialization round trip")
	}
	if _, err = parseContractState(state.bytes()[1:]); err == nil {
		t.Error("expected error parsing truncated state")
	}
}
