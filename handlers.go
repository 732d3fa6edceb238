package gitpaid

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"

	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"

	"github.com/Quaakee/gitpaid-v2/net"
)

// CreateRequest contains the fields for creating a new contract
// instance.
type CreateRequest struct {
	OwnerKey     []byte `json:"owner_key"`
	CertifierKey []byte `json:"certifier_key"`
	Value        uint64 `json:"value"`
}

// ContractInfo describes one contract utxo on the query surface.
type ContractInfo struct {
	UTXO         bc.Hash `json:"utxo"`
	OwnerKey     []byte  `json:"owner_key"`
	CertifierKey []byte  `json:"certifier_key"`
	Value        uint64  `json:"value"`
}

// Handler returns the HTTP surface of the escrow: contract creation,
// spend proposal, and queries over contracts and the transition log.
func (e *Escrow) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/create", e.Create)
	mux.HandleFunc("/propose", e.Propose)
	mux.HandleFunc("/contract", e.GetContract)
	mux.HandleFunc("/history", e.History)
	return mux
}

// Create records a new contract instance and replies with its utxo id.
func (e *Escrow) Create(w http.ResponseWriter, req *http.Request) {
	data, err := ioutil.ReadAll(req.Body)
	if err != nil {
		net.Errorf(w, http.StatusInternalServerError, "reading request body: %s", err)
		return
	}
	var cr CreateRequest
	err = json.Unmarshal(data, &cr)
	if err != nil {
		net.Errorf(w, http.StatusBadRequest, "parsing request body: %s", err)
		return
	}
	state, err := NewContractState(cr.OwnerKey, cr.CertifierKey)
	if err != nil {
		net.Errorf(w, http.StatusBadRequest, "bad contract keys: %s", err)
		return
	}
	ctx := req.Context()
	id, err := e.CreateContract(ctx, state, cr.Value)
	if err != nil {
		net.Errorf(w, http.StatusInternalServerError, "creating contract: %s", err)
		return
	}
	log.Printf("created contract utxo %x with value %d", id.Bytes(), cr.Value)
	net.JSON(w, ContractInfo{UTXO: id, OwnerKey: cr.OwnerKey, CertifierKey: cr.CertifierKey, Value: cr.Value})
}

// Propose evaluates a proposed spend. An accepted spend replies with
// its transition record; a rejected one replies 400 with the stable
// rejection reason in the body.
func (e *Escrow) Propose(w http.ResponseWriter, req *http.Request) {
	data, err := ioutil.ReadAll(req.Body)
	if err != nil {
		net.Errorf(w, http.StatusInternalServerError, "reading request body: %s", err)
		return
	}
	var p Proposal
	err = json.Unmarshal(data, &p)
	if err != nil {
		net.Errorf(w, http.StatusBadRequest, "parsing request body: %s", err)
		return
	}
	ctx := req.Context()
	rec, err := e.ApplySpend(ctx, &p)
	if err != nil {
		switch errors.Root(err) {
		case ErrUnknownContract:
			net.Errorf(w, http.StatusNotFound, "proposal rejected: %s", err)
		case ErrOwnerSig, ErrCertifierSig, ErrInsufficientValue, ErrCommitmentMismatch, ErrBadProposal, ErrBadState:
			net.Errorf(w, http.StatusBadRequest, "proposal rejected: %s", err)
		default:
			net.Errorf(w, http.StatusInternalServerError, "applying spend: %s", err)
		}
		return
	}
	log.Printf("accepted %s spend of utxo %x (paid %d, residual %d)", rec.Kind, rec.UTXO.Bytes(), rec.Amount, rec.Residual)
	net.JSON(w, rec)
}

// GetContract replies with the named unspent contract utxo.
func (e *Escrow) GetContract(w http.ResponseWriter, req *http.Request) {
	var id bc.Hash
	err := id.UnmarshalText([]byte(req.FormValue("id")))
	if err != nil {
		net.Errorf(w, http.StatusBadRequest, "parsing contract id: %s", err)
		return
	}
	ctx := req.Context()
	state, value, err := e.LookupContract(ctx, id)
	if err != nil {
		if errors.Root(err) == ErrUnknownContract {
			net.Errorf(w, http.StatusNotFound, "%s", err)
		} else {
			net.Errorf(w, http.StatusInternalServerError, "looking up contract: %s", err)
		}
		return
	}
	net.JSON(w, ContractInfo{UTXO: id, OwnerKey: state.OwnerKey, CertifierKey: state.CertifierKey, Value: value})
}

// History replies with transition log entries after the optional
// ?since= sequence number.
func (e *Escrow) History(w http.ResponseWriter, req *http.Request) {
	var since int64
	if s := req.FormValue("since"); s != "" {
		var err error
		since, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			net.Errorf(w, http.StatusBadRequest, "parsing since: %s", err)
			return
		}
	}
	ctx := req.Context()
	recs, err := e.TransitionsSince(ctx, since)
	if err != nil {
		net.Errorf(w, http.StatusInternalServerError, "reading history: %s", err)
		return
	}
	net.JSON(w, recs)
}
