// Command hashpw prints the bcrypt hash for the shared admin password
// so it can be provisioned as ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpw -cost 12 's3cret'
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/aghpoints/loyalty-server/internal/utils"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost (4..31)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-cost N] <password>\n", os.Args[0])
		os.Exit(2)
	}

	hash, err := utils.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
