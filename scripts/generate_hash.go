//go:build ignore

// generate_hash.go prints the argon2id hash of a gateway token.
// Usage: go run scripts/generate_hash.go <token>
//
// Put the result into .env as GATEWAY_TOKEN_HASH.
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"bahth.org/engagement/internal/access"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: go run scripts/generate_hash.go <token>")
		os.Exit(1)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		fmt.Printf("failed to generate salt: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Gateway token hash (put into .env as GATEWAY_TOKEN_HASH):")
	fmt.Println(access.HashToken(os.Args[1], salt))
}
