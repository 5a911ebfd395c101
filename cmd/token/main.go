// Command token mints caller JWTs for operators and test setups.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"reliefd/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	identity := flag.String("identity", "", "caller identity to embed as the token subject")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *identity == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "token: -identity and a signing secret are required")
		os.Exit(1)
	}

	token, err := middleware.SignToken(*secret, middleware.TokenClaims{
		Sub:    *identity,
		Exp:    time.Now().Add(*ttl).Unix(),
		Issuer: "reliefd",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
