// Command generate-api-key mints a new API key, appends its hash to the
// config document, and prints the raw secret to stdout. The raw secret is
// shown exactly once and never stored.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/slogger-dev/slogger/internal/auth"
	"github.com/slogger-dev/slogger/internal/configfile"
)

func main() {
	name := flag.String("name", "default", "display name for the key")
	path := flag.String("config", "config.json", "path to the config document")
	flag.Parse()

	cfg, err := configfile.Read(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read config: %v\n", err)
		os.Exit(1)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		os.Exit(1)
	}
	rawKey := hex.EncodeToString(secret)

	cfg.ApiKeys = append(cfg.ApiKeys, configfile.ApiKey{
		Name: *name,
		Hash: auth.HashKey(rawKey),
	})

	if err := configfile.Write(*path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(rawKey)
}
