package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"

	"github.com/chain/txvm/crypto/ed25519"

	gitpaid "github.com/Quaakee/gitpaid-v2"
)

// gitpaid-spend is the wallet side of the protocol: it builds the
// canonical output set for a transition, commits to it, signs the spend
// digest, and submits the proposal to a gitpaidd daemon. The daemon
// reconstructs the same outputs and accepts only if its hash matches
// the one computed here.

var args []string

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	subcommand := os.Args[1]
	args = os.Args[2:]
	switch subcommand {
	case "create":
		var (
			fs        flag.FlagSet
			daemon    = fs.String("daemon", "http://localhost:2423", "gitpaidd base url")
			owner     = fs.String("owner", "", "hex owner public key")
			certifier = fs.String("certifier", "", "hex certifier public key")
			value     = fs.Uint64("value", 0, "initial contract value")
		)
		err := fs.Parse(args)
		if err != nil {
			log.Fatal(err)
		}
		cr := gitpaid.CreateRequest{
			OwnerKey:     mustHex(*owner),
			CertifierKey: mustHex(*certifier),
			Value:        *value,
		}
		var info gitpaid.ContractInfo
		post(*daemon+"/create", cr, &info)
		log.Printf("created contract utxo %x", info.UTXO.Bytes())

	case "fund":
		var (
			fs       flag.FlagSet
			daemon   = fs.String("daemon", "http://localhost:2423", "gitpaidd base url")
			contract = fs.String("contract", "", "hex contract utxo id")
			added    = fs.Uint64("added", 0, "value to add")
		)
		err := fs.Parse(args)
		if err != nil {
			log.Fatal(err)
		}
		info := getContract(*daemon, *contract)
		state := mustState(info)
		outs := [][]byte{
			gitpaid.BuildStateOutput(info.Value+*added, state),
			gitpaid.BuildPassthroughOutput(nil),
		}
		p := gitpaid.Proposal{
			Contract:   info.UTXO,
			Kind:       gitpaid.KindFund,
			Added:      *added,
			Commitment: gitpaid.OutputCommitment(outs),
		}
		submit(*daemon, &p)

	case "pay":
		var (
			fs        flag.FlagSet
			daemon    = fs.String("daemon", "http://localhost:2423", "gitpaidd base url")
			contract  = fs.String("contract", "", "hex contract utxo id")
			amount    = fs.Uint64("amount", 0, "bounty amount to pay")
			recipient = fs.String("recipient", "", "hex recipient public key")
			event     = fs.String("event", "", "certified event id")
			ownerPrv  = fs.String("ownerprv", "", "hex owner private key")
			certPrv   = fs.String("certifierprv", "", "hex certifier private key")
		)
		err := fs.Parse(args)
		if err != nil {
			log.Fatal(err)
		}
		info := getContract(*daemon, *contract)
		state := mustState(info)
		if *amount > info.Value {
			log.Fatalf("cannot pay %d from contract holding %d", *amount, info.Value)
		}
		recip := ed25519.PublicKey(mustHex(*recipient))
		var outs [][]byte
		if residual := info.Value - *amount; residual > 0 {
			outs = append(outs, gitpaid.BuildStateOutput(residual, state))
		}
		outs = append(outs, gitpaid.BuildPaymentOutput(*amount, recip))
		outs = append(outs, gitpaid.BuildPassthroughOutput(nil))
		p := gitpaid.Proposal{
			Contract:   info.UTXO,
			Kind:       gitpaid.KindPay,
			Amount:     *amount,
			Recipient:  recip,
			EventID:    *event,
			Commitment: gitpaid.OutputCommitment(outs),
		}
		sighash := p.SigHash()
		p.OwnerSig = ed25519.Sign(mustPrv(*ownerPrv), sighash.Bytes())
		p.CertifierSig = ed25519.Sign(mustPrv(*certPrv), sighash.Bytes())
		log.Printf("paying %d to %s for event %q", *amount, gitpaid.Address(recip), *event)
		submit(*daemon, &p)

	case "withdraw":
		var (
			fs       flag.FlagSet
			daemon   = fs.String("daemon", "http://localhost:2423", "gitpaidd base url")
			contract = fs.String("contract", "", "hex contract utxo id")
			amount   = fs.Uint64("amount", 0, "value to withdraw")
			ownerPrv = fs.String("ownerprv", "", "hex owner private key")
		)
		err := fs.Parse(args)
		if err != nil {
			log.Fatal(err)
		}
		info := getContract(*daemon, *contract)
		state := mustState(info)
		if *amount > info.Value {
			log.Fatalf("cannot withdraw %d from contract holding %d", *amount, info.Value)
		}
		var outs [][]byte
		if residual := info.Value - *amount; residual > 0 {
			outs = append(outs, gitpaid.BuildStateOutput(residual, state))
		}
		outs = append(outs, gitpaid.BuildPaymentOutput(*amount, state.OwnerKey))
		outs = append(outs, gitpaid.BuildPassthroughOutput(nil))
		p := gitpaid.Proposal{
			Contract:   info.UTXO,
			Kind:       gitpaid.KindWithdraw,
			Amount:     *amount,
			Commitment: gitpaid.OutputCommitment(outs),
		}
		p.OwnerSig = ed25519.Sign(mustPrv(*ownerPrv), p.SigHash().Bytes())
		submit(*daemon, &p)

	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gitpaid-spend {create|fund|pay|withdraw} [flags]")
	os.Exit(1)
}

func getContract(daemon, id string) *gitpaid.ContractInfo {
	resp, err := http.Get(daemon + "/contract?id=" + id)
	if err != nil {
		log.Fatalf("getting contract %s: %s", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := ioutil.ReadAll(resp.Body)
		log.Fatalf("getting contract %s: %s", id, body)
	}
	var info gitpaid.ContractInfo
	err = json.NewDecoder(resp.Body).Decode(&info)
	if err != nil {
		log.Fatalf("parsing contract %s: %s", id, err)
	}
	return &info
}

func mustState(info *gitpaid.ContractInfo) gitpaid.ContractState {
	state, err := gitpaid.NewContractState(info.OwnerKey, info.CertifierKey)
	if err != nil {
		log.Fatal(err)
	}
	return state
}

func submit(daemon string, p *gitpaid.Proposal) {
	var rec gitpaid.TransitionRecord
	post(daemon+"/propose", p, &rec)
	if rec.Successor != nil {
		log.Printf("spend accepted: transition %d, successor utxo %x holds %d", rec.Seq, rec.Successor.Bytes(), rec.Residual)
	} else {
		log.Printf("spend accepted: transition %d, contract terminal", rec.Seq)
	}
}

func post(url string, body, result interface{}) {
	bits, err := json.Marshal(body)
	if err != nil {
		log.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(bits))
	if err != nil {
		log.Fatalf("posting to %s: %s", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		text, _ := ioutil.ReadAll(resp.Body)
		log.Fatalf("%s: status %d: %s", url, resp.StatusCode, text)
	}
	err = json.NewDecoder(resp.Body).Decode(result)
	if err != nil {
		log.Fatalf("parsing response from %s: %s", url, err)
	}
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("decoding hex %q: %s", s, err)
	}
	return b
}

func mustPrv(s string) ed25519.PrivateKey {
	b := mustHex(s)
	if len(b) != ed25519.PrivateKeySize {
		log.Fatalf("private key is %d bytes, want %d", len(b), ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(b)
}
