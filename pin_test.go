package gitpaid

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPins(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	withTestEscrow(ctx, t, func(ctx context.Context, e *Escrow, _ *httptest.Server) {
		state, ownerPrv, _ := testState(t)

		id, err := e.CreateContract(ctx, state, 1000)
		if err != nil {
			t.Fatal(err)
		}

		pin1ctx, pin1cancel := context.WithCancel(ctx)
		defer pin1cancel()

		pin1ch := make(chan *TransitionRecord)
		pin1done := make(chan struct{})
		go func() {
			e.RunPin(pin1ctx, "pin1", func(_ context.Context, rec *TransitionRecord) error {
				pin1ch <- rec
				return nil
			})
			close(pin1done)
		}()

		rec1, err := e.ApplySpend(ctx, fundProposal(state, id, 1000, 500))
		if err != nil {
			t.Fatal(err)
		}

		select {
		case <-ctx.Done():
			t.Fatal(ctx.Err())

		case got := <-pin1ch:
			if got.Seq != rec1.Seq {
				t.Fatalf("pin1 got transition %d, want %d", got.Seq, rec1.Seq)
			}
			t.Logf("pin1: transition %d", got.Seq)
		}

		pin1cancel()
		<-pin1done

		// Transitions applied while the pin is down land in its backlog.
		rec2, err := e.ApplySpend(ctx, withdrawProposal(state, *rec1.Successor, 1500, 400, ownerPrv))
		if err != nil {
			t.Fatal(err)
		}

		pin1ach := make(chan *TransitionRecord)
		go e.RunPin(ctx, "pin1", func(_ context.Context, rec *TransitionRecord) error {
			pin1ach <- rec
			return nil
		})

		select {
		case <-ctx.Done():
			t.Fatal(ctx.Err())

		case got := <-pin1ach:
			if got.Seq != rec2.Seq {
				t.Fatalf("restarted pin1 got transition %d, want %d", got.Seq, rec2.Seq)
			}
			t.Logf("pin1 (restarted): transition %d", got.Seq)
		}

		// A brand-new pin replays the whole log from the start.
		pin2ch := make(chan *TransitionRecord)
		go e.RunPin(ctx, "pin2", func(_ context.Context, rec *TransitionRecord) error {
			pin2ch <- rec
			return nil
		})

		for _, want := range []int64{rec1.Seq, rec2.Seq} {
			select {
			case <-ctx.Done():
				t.Fatal(ctx.Err())

			case got := <-pin2ch:
				if got.Seq != want {
					t.Fatalf("pin2 got transition %d, want %d", got.Seq, want)
				}
				t.Logf("pin2: transition %d", got.Seq)
			}
		}

		// Live delivery continues after the backlog.
		rec3, err := e.ApplySpend(ctx, withdrawProposal(state, *rec2.Successor, 1100, 1100, ownerPrv))
		if err != nil {
			t.Fatal(err)
		}
		for name, ch := range map[string]chan *TransitionRecord{"pin1": pin1ach, "pin2": pin2ch} {
			select {
			case <-ctx.Done():
				t.Fatal(ctx.Err())

			case got := <-ch:
				if got.Seq != rec3.Seq {
					t.Fatalf("%s got transition %d, want %d", name, got.Seq, rec3.Seq)
				}
				t.Logf("%s: transition %d", name, got.Seq)
			}
		}
	})
}
