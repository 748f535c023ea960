// Command hashkey prints the bcrypt hash of an admin API key for ADMIN_API_KEY_HASH.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/helpdesk-labs/support-bot/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <api-key>", os.Args[0])
	}
	hash, err := auth.HashPassword(os.Args[1], auth.DefaultCost)
	if err != nil {
		log.Fatalf("hash api key: %v", err)
	}
	fmt.Println(hash)
}
