package gitpaid

import (
	"context"
	"log"

	"github.com/chain/txvm/errors"
)

// RunPin runs as a goroutine. It delivers every transition record to f
// exactly once, in log order, persisting its position under name so a
// restarted pin resumes where it left off. It first replays the
// unprocessed backlog from the db, then follows the live broadcast
// feed.
func (e *Escrow) RunPin(ctx context.Context, name string, f func(context.Context, *TransitionRecord) error) {
	defer log.Printf("RunPin(%s) exiting", name)

	r := e.w.Reader()

	_, err := e.DB.ExecContext(ctx, `INSERT OR IGNORE INTO pins (name, seq) VALUES ($1, 0)`, name)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Fatalf("creating pin %s: %s", name, err)
	}

	var lastSeq int64
	err = e.DB.QueryRowContext(ctx, `SELECT seq FROM pins WHERE name = $1`, name).Scan(&lastSeq)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Fatalf("getting position of pin %s: %s", name, err)
	}

	processRec := func(rec *TransitionRecord) error {
		err := f(ctx, rec)
		if err != nil {
			return errors.Wrapf(err, "running pin %s on transition %d", name, rec.Seq)
		}
		_, err = e.DB.Exec(`UPDATE pins SET seq = $1 WHERE name = $2`, rec.Seq, name) // n.b. not ExecContext
		if err != nil {
			return errors.Wrapf(err, "updating pin %s after transition %d", name, rec.Seq)
		}
		lastSeq = rec.Seq
		return nil
	}

	backlog, err := e.TransitionsSince(ctx, lastSeq)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Fatalf("reading backlog for pin %s: %s", name, err)
	}
	for _, rec := range backlog {
		err = processRec(rec)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Fatalf("processing backlog transition %d: %s", rec.Seq, err)
		}
	}

	for {
		x, ok := r.Read(ctx)
		if !ok {
			if ctx.Err() != nil {
				return
			}
			log.Fatalf("error waiting for transition %d", lastSeq+1)
		}
		rec := x.(*TransitionRecord)
		if rec.Seq <= lastSeq {
			continue
		}
		err = processRec(rec)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Fatalf("processing live transition %d: %s", rec.Seq, err)
		}
	}
}
