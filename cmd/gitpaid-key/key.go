package main

import (
	"crypto/rand"
	"log"

	"github.com/chain/txvm/crypto/ed25519"

	gitpaid "github.com/Quaakee/gitpaid-v2"
)

func main() {
	pub, prv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("prv: %x", prv)
	log.Printf("pub: %x", pub)
	log.Printf("address: %s", gitpaid.Address(pub))
}
