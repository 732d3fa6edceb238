package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/dogeorg/governor"
	_ "github.com/mattn/go-sqlite3"

	gitpaid "github.com/Quaakee/gitpaid-v2"
)

func main() {
	ctx := context.Background()

	var (
		addr   = flag.String("addr", "localhost:2423", "server listen address")
		dbfile = flag.String("db", "gitpaid.db", "path to db")
	)

	flag.Parse()

	db, err := sql.Open("sqlite3", *dbfile)
	if err != nil {
		log.Fatalf("error opening db: %s", err)
	}
	defer db.Close()

	e, err := gitpaid.GetEscrow(ctx, db)
	if err != nil {
		log.Fatal(err)
	}

	gov := governor.New().CatchSignals().Restart(time.Second)
	gov.Add("api", &apiService{
		srv: &http.Server{Addr: *addr, Handler: e.Handler()},
	})
	gov.Add("payoutlog", &pinService{escrow: e})
	gov.Start()
	gov.WaitForShutdown()
	log.Print("finished.")
}

type apiService struct {
	governor.ServiceCtx
	srv *http.Server
}

// goroutine
func (a *apiService) Run() {
	log.Printf("listening on %s", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != http.ErrServerClosed { // blocking call
		log.Printf("HTTP server: %s", err)
	}
}

// called on any goroutine
func (a *apiService) Stop() {
	// new goroutine because Shutdown() blocks
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		a.srv.Shutdown(ctx)
		cancel()
	}()
}

type pinService struct {
	governor.ServiceCtx
	escrow *gitpaid.Escrow
}

// goroutine
func (p *pinService) Run() {
	// RunPin exits when the service context is cancelled.
	p.escrow.RunPin(p.Context, "payoutlog", func(_ context.Context, rec *gitpaid.TransitionRecord) error {
		if rec.Kind == gitpaid.KindFund {
			log.Printf("payoutlog: utxo %x funded to %d", rec.UTXO.Bytes(), rec.Residual)
			return nil
		}
		log.Printf("payoutlog: %s of %d from utxo %x to %x (event %q, residual %d)",
			rec.Kind, rec.Amount, rec.UTXO.Bytes(), rec.Recipient, rec.EventID, rec.Residual)
		return nil
	})
}
