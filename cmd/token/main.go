// Command token mints a bearer token for local development.
//
//	JWT_SECRET=... go run ./cmd/token -user alice -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"pdfvault/internal/config"
	"pdfvault/internal/http/middleware"
)

func main() {
	user := flag.String("user", "", "user id to put in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if len(cfg.Auth.JWTSecret) < 16 {
		fmt.Fprintln(os.Stderr, "JWT_SECRET must be set to at least 16 characters")
		os.Exit(2)
	}
	if *user == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	token, err := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(*user, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
