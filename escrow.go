package gitpaid

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/bobg/multichan"
	"github.com/bobg/sqlutil"
	"github.com/chain/txvm/errors"
	"github.com/chain/txvm/protocol/bc"
)

// Escrow tracks contract utxos in a sqlite db and evaluates proposed
// spends against them. Evaluation itself is pure (see Proposal.apply);
// Escrow supplies the current utxo being spent, records the effect of
// accepted spends, and feeds them to watchers.
type Escrow struct {
	DB *sql.DB

	// w is the multichan by which accepted transitions are broadcast
	// to RunPin watchers.
	w *multichan.W

	// mu serializes spend application so two proposals cannot both
	// consume the same utxo.
	mu sync.Mutex
}

// TransitionRecord is one accepted spend as recorded in the db and
// delivered to watchers. Successor is nil for terminal spends.
type TransitionRecord struct {
	Seq        int64    `json:"seq"`
	UTXO       bc.Hash  `json:"utxo"`
	Successor  *bc.Hash `json:"successor,omitempty"`
	Kind       string   `json:"kind"`
	Amount     uint64   `json:"amount"`
	Residual   uint64   `json:"residual"`
	Recipient  []byte   `json:"recipient,omitempty"`
	EventID    string   `json:"event_id,omitempty"`
	Commitment bc.Hash  `json:"commitment"`
}

// GetEscrow creates the db schema if needed and returns an Escrow
// ready to track contracts.
func GetEscrow(ctx context.Context, db *sql.DB) (*Escrow, error) {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return nil, errors.Wrap(err, "creating db schema")
	}
	return &Escrow{
		DB: db,
		w:  multichan.New((*TransitionRecord)(nil)),
	}, nil
}

// CreateContract records a new contract instance funded with value and
// returns its utxo id.
func (e *Escrow) CreateContract(ctx context.Context, state ContractState, value uint64) (bc.Hash, error) {
	nowMS := int64(bc.Millis(time.Now()))
	id := contractID(state, nowMS)
	const q = `INSERT INTO contracts (utxo_id, owner_key, certifier_key, value, created_ms)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := e.DB.ExecContext(ctx, q, id.Bytes(), []byte(state.OwnerKey), []byte(state.CertifierKey), int64(value), nowMS)
	if err != nil {
		return bc.Hash{}, errors.Wrap(err, "inserting contract in db")
	}
	return id, nil
}

// LookupContract returns the state and value of an unspent contract
// utxo.
func (e *Escrow) LookupContract(ctx context.Context, id bc.Hash) (ContractState, uint64, error) {
	const q = `SELECT owner_key, certifier_key, value FROM contracts WHERE utxo_id = $1 AND spent = 0`
	var (
		owner, certifier []byte
		value            int64
	)
	err := e.DB.QueryRowContext(ctx, q, id.Bytes()).Scan(&owner, &certifier, &value)
	if err == sql.ErrNoRows {
		return ContractState{}, 0, errors.Wrapf(ErrUnknownContract, "utxo %x", id.Bytes())
	}
	if err != nil {
		return ContractState{}, 0, errors.Wrapf(err, "reading contract %x from db", id.Bytes())
	}
	state, err := NewContractState(owner, certifier)
	if err != nil {
		return ContractState{}, 0, errors.Wrapf(err, "contract %x has bad stored keys", id.Bytes())
	}
	return state, uint64(value), nil
}

// ApplySpend evaluates p against the utxo it names and, if the covenant
// accepts, records the effect: the consumed utxo is marked spent, the
// successor (if any) is inserted with its residual value, and the
// transition is appended to the log and broadcast to watchers. A
// rejected proposal records nothing.
func (e *Escrow) ApplySpend(ctx context.Context, p *Proposal) (*TransitionRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, value, err := e.LookupContract(ctx, p.Contract)
	if err != nil {
		return nil, err
	}

	sp, err := p.apply(state, value)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s spend of %x", p.Kind, p.Contract.Bytes())
	}

	rec := &TransitionRecord{
		UTXO:       p.Contract,
		Kind:       p.Kind,
		Amount:     sp.Paid,
		Residual:   sp.Residual,
		EventID:    p.EventID,
		Commitment: p.Commitment,
	}
	switch p.Kind {
	case KindPay:
		rec.Recipient = RecipientCommitment(p.Recipient).Bytes()
	case KindWithdraw:
		rec.Recipient = RecipientCommitment(state.OwnerKey).Bytes()
	}

	dbtx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning db transaction")
	}
	defer dbtx.Rollback()

	_, err = dbtx.ExecContext(ctx, `UPDATE contracts SET spent = 1 WHERE utxo_id = $1`, p.Contract.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "marking utxo %x spent", p.Contract.Bytes())
	}

	var succBytes []byte
	if !sp.Terminal() {
		succ := successorID(p.Contract, p.Commitment)
		rec.Successor = &succ
		succBytes = succ.Bytes()
		const q = `INSERT INTO contracts (utxo_id, owner_key, certifier_key, value, created_ms)
			VALUES ($1, $2, $3, $4, $5)`
		_, err = dbtx.ExecContext(ctx, q, succBytes, []byte(sp.Next.OwnerKey), []byte(sp.Next.CertifierKey), int64(sp.Residual), int64(bc.Millis(time.Now())))
		if err != nil {
			return nil, errors.Wrapf(err, "inserting successor utxo %x", succBytes)
		}
	}

	const q = `INSERT INTO transitions (utxo_id, successor_id, kind, amount, residual, recipient, event_id, commitment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	res, err := dbtx.ExecContext(ctx, q, p.Contract.Bytes(), succBytes, rec.Kind, int64(rec.Amount), int64(rec.Residual), rec.Recipient, rec.EventID, rec.Commitment.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "appending transition to log")
	}
	rec.Seq, err = res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "getting transition seq")
	}

	err = dbtx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "committing spend")
	}

	e.w.Write(rec)
	return rec, nil
}

// TransitionsSince returns transition log entries with seq > since, in
// log order.
func (e *Escrow) TransitionsSince(ctx context.Context, since int64) ([]*TransitionRecord, error) {
	const q = `SELECT seq, utxo_id, successor_id, kind, amount, residual, recipient, event_id, commitment
		FROM transitions WHERE seq > $1 ORDER BY seq`
	var recs []*TransitionRecord
	err := sqlutil.ForQueryRows(ctx, e.DB, q, since, func(seq int64, utxoID, succID []byte, kind string, amount, residual int64, recipient []byte, eventID string, commitment []byte) {
		rec := &TransitionRecord{
			Seq:        seq,
			UTXO:       bc.HashFromBytes(utxoID),
			Kind:       kind,
			Amount:     uint64(amount),
			Residual:   uint64(residual),
			Recipient:  recipient,
			EventID:    eventID,
			Commitment: bc.HashFromBytes(commitment),
		}
		if len(succID) > 0 {
			succ := bc.HashFromBytes(succID)
			rec.Successor = &succ
		}
		recs = append(recs, rec)
	})
	return recs, errors.Wrap(err, "reading transition log")
}
